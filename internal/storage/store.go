package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rs/xid"

	"github.com/san-kum/odebench/internal/config"
	"github.com/san-kum/odebench/internal/harness"
)

const (
	metadataFile = "report.json"
	outcomesFile = "outcomes.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID              string             `json:"id"`
	Timestamp       time.Time          `json:"timestamp"`
	Model           string             `json:"model"`
	Params          map[string]float64 `json:"params,omitempty"`
	Y0              float64            `json:"y0"`
	T0              float64            `json:"t0"`
	TEnd            float64            `json:"t_end"`
	H               float64            `json:"h"`
	Steps           int                `json:"steps"`
	Methods         []string           `json:"methods"`
	Host            Host               `json:"host"`
	ConcurrentTotal time.Duration      `json:"concurrent_total_ns"`
	SerialTotal     time.Duration      `json:"serial_total_ns"`
	Benefit         time.Duration      `json:"benefit_ns"`
	Failures        int                `json:"failures"`
}

// OutcomeRecord is one row of outcomes.csv.
type OutcomeRecord struct {
	Policy  string
	Method  string
	Value   float64
	Elapsed time.Duration
	Steps   int
	Error   string
}

func (s *Store) Save(cfg *config.Config, cmp *harness.Comparison, host Host) (string, error) {
	runID := xid.New().String()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:              runID,
		Timestamp:       time.Now(),
		Model:           cfg.Model,
		Params:          cfg.Params,
		Y0:              cfg.Y0,
		T0:              cfg.T0,
		TEnd:            cfg.EndTime(),
		H:               cfg.H,
		Methods:         cfg.Methods,
		Host:            host,
		ConcurrentTotal: cmp.Concurrent.Total,
		SerialTotal:     cmp.Serial.Total,
		Benefit:         cmp.Benefit(),
	}

	records := make([]OutcomeRecord, 0, len(cmp.Concurrent.Outcomes)+len(cmp.Serial.Outcomes))
	for _, pol := range []*harness.Policy{cmp.Concurrent, cmp.Serial} {
		for _, o := range pol.Outcomes {
			rec := OutcomeRecord{
				Policy:  pol.Name,
				Method:  o.Method,
				Value:   o.Result.Value,
				Elapsed: o.Result.Elapsed,
				Steps:   o.Result.Steps,
			}
			if o.Err != nil {
				rec.Error = o.Err.Error()
				meta.Failures++
			}
			if o.Result.Steps > meta.Steps {
				meta.Steps = o.Result.Steps
			}
			records = append(records, rec)
		}
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeOutcomes(filepath.Join(runDir, outcomesFile), records); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeOutcomes(path string, records []OutcomeRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"policy", "method", "value", "elapsed_ns", "steps", "error"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Policy,
			r.Method,
			strconv.FormatFloat(r.Value, 'g', -1, 64),
			strconv.FormatInt(int64(r.Elapsed), 10),
			strconv.Itoa(r.Steps),
			r.Error,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every stored report, newest first. Unreadable entries are
// skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("report %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadOutcomes(runID string) ([]OutcomeRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, outcomesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 6

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", runID, err)
	}
	if len(records) < 2 {
		return []OutcomeRecord{}, nil
	}

	out := make([]OutcomeRecord, 0, len(records)-1)
	for i, rec := range records[1:] {
		value, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("report %s row %d: %w", runID, i+1, err)
		}
		elapsed, err := strconv.ParseInt(rec[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("report %s row %d: %w", runID, i+1, err)
		}
		steps, err := strconv.Atoi(rec[4])
		if err != nil {
			return nil, fmt.Errorf("report %s row %d: %w", runID, i+1, err)
		}
		out = append(out, OutcomeRecord{
			Policy:  rec[0],
			Method:  rec[1],
			Value:   value,
			Elapsed: time.Duration(elapsed),
			Steps:   steps,
			Error:   rec[5],
		})
	}
	return out, nil
}
