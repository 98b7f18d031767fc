package export

import (
	"fmt"
	"html"
	"math"
	"os"
	"strings"

	"github.com/san-kum/odebench/internal/ode"
)

// Palette cycles through stroke colors for successive series.
var Palette = []string{"#00ff88", "#00ccff", "#ff00ff", "#ffaa00", "#ff4444"}

// Series is one sampled trajectory, y against t.
type Series struct {
	Name   string
	Times  []float64
	Values []float64
}

// TrajectoriesToSVG draws every series on shared axes with a legend.
// Non-finite samples break the line instead of stretching the bounds.
func TrajectoriesToSVG(series []Series, width, height int) (string, error) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		if len(s.Times) != len(s.Values) {
			return "", fmt.Errorf("series %s: %d times but %d values", s.Name, len(s.Times), len(s.Values))
		}
		for i := range s.Times {
			if !ode.IsFinite(s.Values[i]) {
				continue
			}
			minX = math.Min(minX, s.Times[i])
			maxX = math.Max(maxX, s.Times[i])
			minY = math.Min(minY, s.Values[i])
			maxY = math.Max(maxY, s.Values[i])
		}
	}
	if math.IsInf(minX, 1) {
		return "", fmt.Errorf("no finite samples to draw")
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.05
	maxX += rangeX * 0.05
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for n, s := range series {
		color := Palette[n%len(Palette)]
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="`, color))

		pen := false
		for i := range s.Times {
			if !ode.IsFinite(s.Values[i]) {
				pen = false
				continue
			}
			x := (s.Times[i] - minX) / rangeX * float64(width)
			y := float64(height) - (s.Values[i]-minY)/rangeY*float64(height)
			if pen {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" M%.1f,%.1f", x, y))
				pen = true
			}
		}
		sb.WriteString("\"/>\n")
		sb.WriteString(fmt.Sprintf(`<text x="10" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 20+16*n, color, html.EscapeString(s.Name)))
	}

	sb.WriteString("</svg>\n")
	return sb.String(), nil
}

// WriteSVG renders series and writes the document to path.
func WriteSVG(path string, series []Series, width, height int) error {
	svg, err := TrajectoriesToSVG(series, width, height)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
