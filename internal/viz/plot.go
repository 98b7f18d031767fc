package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/odebench/internal/ode"
)

const (
	PlotHeight = 10
	PlotWidth  = 80
)

// PlotTrajectory draws one sampled trajectory. Non-finite samples are
// dropped since asciigraph cannot scale around them.
func PlotTrajectory(caption string, values []float64) string {
	data := finite(values)
	if len(data) == 0 {
		return fmt.Sprintf("%s: no finite samples", caption)
	}
	return asciigraph.Plot(data,
		asciigraph.Height(PlotHeight),
		asciigraph.Width(PlotWidth),
		asciigraph.Caption(caption),
	)
}

// PlotDeviation draws values minus ref sample by sample. Both series must
// come from the same sampling of the same span.
func PlotDeviation(caption string, values, ref []float64) (string, error) {
	if len(values) != len(ref) {
		return "", fmt.Errorf("deviation needs equal sample counts, got %d and %d", len(values), len(ref))
	}
	diff := make([]float64, len(values))
	for i := range values {
		diff[i] = values[i] - ref[i]
	}
	return PlotTrajectory(caption, diff), nil
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if ode.IsFinite(v) {
			out = append(out, v)
		}
	}
	return out
}
