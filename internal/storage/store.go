package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/fkviz/internal/field"
)

var (
	ErrRunNotFound = errors.New("storage: run not found")
	ErrCorruptRun  = errors.New("storage: corrupt run")
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
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

// RunInfo describes how a run was produced.
type RunInfo struct {
	Model       string
	ParamSet    string
	Integrator  string
	Dt          float64
	Duration    float64
	SampleEvery int
	Params      map[string]float64
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Model       string             `json:"model"`
	ParamSet    string             `json:"param_set,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	SampleEvery int                `json:"sample_every"`
	Integrator  string             `json:"integrator"`
	Rows        int                `json:"rows"`
	Cols        int                `json:"cols"`
	Fields      []string           `json:"fields"`
	Frames      int                `json:"frames"`
	Params      map[string]float64 `json:"params,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding metadata.json and frames.csv and
// returns the run ID. frames.csv has one line per field per frame:
// time, field name, then the grid values in row-major order.
func (s *Store) Save(info RunInfo, seq field.Sequence, times []float64, metrics map[string]float64) (string, error) {
	if len(times) != len(seq) {
		return "", fmt.Errorf("storage: %d times for %d frames", len(times), len(seq))
	}
	if err := seq.Validate(); err != nil {
		return "", err
	}

	now := time.Now()
	runID, runDir, err := s.newRunDir(fmt.Sprintf("%s_%d", info.Model, now.Unix()))
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Model:       info.Model,
		ParamSet:    info.ParamSet,
		Timestamp:   now,
		Dt:          info.Dt,
		Duration:    info.Duration,
		SampleEvery: info.SampleEvery,
		Integrator:  info.Integrator,
		Frames:      len(seq),
		Params:      info.Params,
		Metrics:     metrics,
	}
	if len(seq) > 0 {
		meta.Rows, meta.Cols = seq[0].Shape()
		meta.Fields = seq[0].Names()
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), meta, seq, times); err != nil {
		return "", err
	}
	return runID, nil
}

// newRunDir creates a fresh directory for base, adding a counter when a run
// with the same ID already exists.
func (s *Store) newRunDir(base string) (string, string, error) {
	runID := base
	for i := 2; ; i++ {
		dir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return runID, dir, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			if err := s.Init(); err != nil {
				return "", "", err
			}
			continue
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, i)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeFrames(path string, meta RunMetadata, seq field.Sequence, times []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"time", "field"}
	for i := 0; i < meta.Rows*meta.Cols; i++ {
		header = append(header, fmt.Sprintf("v%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, 0, len(header))
	for i, st := range seq {
		ts := strconv.FormatFloat(times[i], 'g', -1, 64)
		for j := 0; j < st.Len(); j++ {
			row = append(row[:0], ts, st.Name(j))
			for _, v := range st.Field(j).Data {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// List returns the metadata of every run, oldest first. Directories without
// readable metadata are skipped.
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
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRun, runID, err)
	}
	return &meta, nil
}

// LoadSequence reads the frames of a run back as a sequence with its time
// labels.
func (s *Store) LoadSequence(runID string) (field.Sequence, []float64, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrCorruptRun, runID, err)
	}
	if len(records) < 2 {
		return field.Sequence{}, []float64{}, nil
	}
	records = records[1:]

	nf := len(meta.Fields)
	if nf == 0 || len(records)%nf != 0 {
		return nil, nil, fmt.Errorf("%w: %s: %d rows for %d fields", ErrCorruptRun, runID, len(records), nf)
	}

	seq := make(field.Sequence, 0, len(records)/nf)
	times := make([]float64, 0, len(records)/nf)
	for i := 0; i < len(records); i += nf {
		t, err := strconv.ParseFloat(records[i][0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: time %q", ErrCorruptRun, runID, records[i][0])
		}
		grids := make([]*field.Grid, nf)
		for j := range grids {
			if grids[j], err = parseGrid(records[i+j], meta); err != nil {
				return nil, nil, fmt.Errorf("%w: %s: frame %d: %v", ErrCorruptRun, runID, len(seq), err)
			}
		}
		st, err := field.NewState(meta.Fields, grids...)
		if err != nil {
			return nil, nil, err
		}
		seq = append(seq, st)
		times = append(times, t)
	}
	return seq, times, nil
}

func parseGrid(record []string, meta *RunMetadata) (*field.Grid, error) {
	n := meta.Rows * meta.Cols
	if len(record) != n+2 {
		return nil, fmt.Errorf("%d values, want %d", len(record)-2, n)
	}
	g := field.NewGrid(meta.Rows, meta.Cols)
	for k, s := range record[2:] {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		g.Data[k] = v
	}
	return g, nil
}
