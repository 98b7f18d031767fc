package storage

import (
	"encoding/json"
	"io"
	"math"
)

type ExportData struct {
	Report   *RunMetadata    `json:"report"`
	Outcomes []ExportOutcome `json:"outcomes"`
}

type ExportOutcome struct {
	Policy    string   `json:"policy"`
	Method    string   `json:"method"`
	Value     *float64 `json:"value"`
	ElapsedNs int64    `json:"elapsed_ns"`
	Seconds   float64  `json:"seconds"`
	Steps     int      `json:"steps"`
	Error     string   `json:"error,omitempty"`
}

// ExportJSON writes a report and its outcomes as one JSON document.
// Non-finite values are written as null.
func ExportJSON(w io.Writer, meta *RunMetadata, outcomes []OutcomeRecord) error {
	data := ExportData{
		Report:   meta,
		Outcomes: make([]ExportOutcome, len(outcomes)),
	}
	for i, o := range outcomes {
		var value *float64
		if !math.IsNaN(o.Value) && !math.IsInf(o.Value, 0) {
			v := o.Value
			value = &v
		}
		data.Outcomes[i] = ExportOutcome{
			Policy:    o.Policy,
			Method:    o.Method,
			Value:     value,
			ElapsedNs: int64(o.Elapsed),
			Seconds:   o.Elapsed.Seconds(),
			Steps:     o.Steps,
			Error:     o.Error,
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
