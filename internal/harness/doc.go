// Package harness runs a set of integrators over one problem under two
// execution policies and reports comparative wall-clock timing.
//
// The concurrent policy starts one goroutine per integrator, all sharing a
// single [ode.Func], and measures from dispatch until the last worker joins.
// The serial policy runs the integrators back-to-back on the calling
// goroutine and sums their individual durations.
//
//	h := harness.New(integrators.Defaults(), logger)
//	cmp, err := h.Compare(ctx, problem, problem)
//	fmt.Println(cmp.Benefit())
//
// A worker that panics is reported as an [*ode.WorkerError] for its method
// under either policy, and the remaining methods still report their
// results. A concurrent worker that calls runtime.Goexit is reported the
// same way. Under the serial policy runtime.Goexit ends the calling
// goroutine, so RunSerial does not return.
package harness
