package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/odebench/internal/analysis"
	"github.com/san-kum/odebench/internal/harness"
	"github.com/san-kum/odebench/internal/ode"
)

const policyWidth = 44

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	methodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Width(8)
	numStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Width(20).Align(lipgloss.Right)
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12).Align(lipgloss.Right)
)

// FormatValue prints a final state with full precision and marks non-finite
// results.
func FormatValue(v float64) string {
	if !ode.IsFinite(v) {
		return fmt.Sprintf("%v (non-finite)", v)
	}
	return fmt.Sprintf("%.12f", v)
}

// FormatDuration prints d in milliseconds with microsecond resolution.
func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
}

// RenderPolicy draws one policy's outcomes, in method order, and its total.
func RenderPolicy(p *harness.Policy) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(p.Name))
	b.WriteString("\n")

	for _, o := range p.Outcomes {
		b.WriteString(methodStyle.Render(o.Method))
		switch {
		case !o.OK():
			b.WriteString(StatusFail.Render(" failed"))
		case !ode.IsFinite(o.Result.Value):
			b.WriteString(StatusWarn.Render(numStyle.Render(FormatValue(o.Result.Value))))
			b.WriteString(timeStyle.Render(FormatDuration(o.Result.Elapsed)))
		default:
			b.WriteString(numStyle.Render(FormatValue(o.Result.Value)))
			b.WriteString(timeStyle.Render(FormatDuration(o.Result.Elapsed)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(MetricLabel.Render("total "))
	b.WriteString(MetricValue.Render(FormatDuration(p.Total)))
	return Panel.Width(policyWidth).Render(b.String())
}

// RenderReport draws both policies side by side followed by the aggregate
// timings, failures and any value mismatches.
func RenderReport(title string, cmp *harness.Comparison) string {
	var b strings.Builder
	b.WriteString(Title.Render(title))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, RenderPolicy(cmp.Concurrent), " ", RenderPolicy(cmp.Serial)))
	b.WriteString("\n")

	b.WriteString(summaryLine("concurrent total", FormatDuration(cmp.Concurrent.Total)))
	b.WriteString(summaryLine("serial total", FormatDuration(cmp.Serial.Total)))

	benefit := FormatDuration(cmp.Benefit())
	if cmp.Benefit() < 0 {
		b.WriteString(MetricLabel.Render(fmt.Sprintf("%-18s", "benefit")) + StatusWarn.Render(benefit) + "\n")
	} else {
		b.WriteString(summaryLine("benefit", benefit))
	}
	if s := cmp.Speedup(); s > 0 {
		b.WriteString(summaryLine("speedup", fmt.Sprintf("%.2fx", s)))
	}

	for _, pol := range []*harness.Policy{cmp.Concurrent, cmp.Serial} {
		for _, o := range pol.Outcomes {
			if o.Err != nil {
				b.WriteString(StatusFail.Render("✗ ") + o.Err.Error() + "\n")
			}
		}
	}
	if mm := cmp.Mismatches(); len(mm) > 0 {
		b.WriteString(StatusWarn.Render("policies disagree: " + strings.Join(mm, ", ")))
		b.WriteString("\n")
	}
	return b.String()
}

func summaryLine(label, value string) string {
	return MetricLabel.Render(fmt.Sprintf("%-18s", label)) + MetricValue.Render(value) + "\n"
}

// RenderConvergence draws the per-level errors and observed order of each
// method.
func RenderConvergence(results []analysis.Convergence) string {
	var b strings.Builder
	for _, c := range results {
		b.WriteString(headerStyle.Render(fmt.Sprintf("%s (order %d)", c.Method, c.Order)))
		b.WriteString("\n")
		b.WriteString(Subtle.Render(fmt.Sprintf("%-12s %-10s %-14s %s", "h", "steps", "error", "rate")))
		b.WriteString("\n")
		for _, l := range c.Levels {
			rate := "-"
			if l.Rate != 0 {
				rate = fmt.Sprintf("%.3f", l.Rate)
			}
			fmt.Fprintf(&b, "%-12.4g %-10d %-14.4e %s\n", l.H, l.Steps, l.Error, rate)
		}
		status := StatusOK
		if math.IsNaN(c.Observed) || math.Abs(c.Observed-float64(c.Order)) > 0.5 {
			status = StatusWarn
		}
		b.WriteString(MetricLabel.Render("observed order "))
		b.WriteString(status.Render(fmt.Sprintf("%.3f", c.Observed)))
		b.WriteString("\n\n")
	}
	return b.String()
}
