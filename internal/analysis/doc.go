// Package analysis estimates the empirical order of accuracy of the
// fixed-step integrators.
//
// [ConvergenceStudy] integrates a model with a closed-form solution at a
// sequence of halving step sizes and fits the observed error ratio:
//
//	rows, _ := analysis.ConvergenceStudy(ctx, integrators.Defaults(), exp, 1, 0, 1, 0.1, 5)
//	for _, r := range rows {
//	    fmt.Println(r.Method, r.Observed)
//	}
//
// A method of order p should show err(h)/err(h/2) close to 2^p until
// rounding error dominates.
package analysis
