package harness

import (
	"errors"
	"math"
	"time"
)

// Comparison pairs the two policies run over the same methods.
type Comparison struct {
	Concurrent *Policy
	Serial     *Policy
}

// Benefit is the serial total minus the concurrent total.
func (c *Comparison) Benefit() time.Duration {
	return c.Serial.Total - c.Concurrent.Total
}

// Speedup is the serial total over the concurrent total, or 0 when the
// concurrent total is zero.
func (c *Comparison) Speedup() float64 {
	if c.Concurrent.Total <= 0 {
		return 0
	}
	return float64(c.Serial.Total) / float64(c.Concurrent.Total)
}

func (c *Comparison) Err() error {
	return errors.Join(c.Concurrent.Err(), c.Serial.Err())
}

// Mismatches lists methods that succeeded under both policies but did not
// produce bit-identical values.
func (c *Comparison) Mismatches() []string {
	var out []string
	for _, co := range c.Concurrent.Outcomes {
		so, ok := c.Serial.Outcome(co.Method)
		if !ok || !co.OK() || !so.OK() {
			continue
		}
		if math.Float64bits(co.Result.Value) != math.Float64bits(so.Result.Value) {
			out = append(out, co.Method)
		}
	}
	return out
}
