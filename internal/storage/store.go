// Package storage persists training runs under a data directory: one
// subdirectory per run holding metadata.json, the trained weight vector, and
// the loss history. Weights and history are flat numeric CSVs, the only
// artifacts a run needs to be reloaded.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/san-kum/qfit/internal/train"
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
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Qubits      int       `json:"qubits"`
	Variant     int       `json:"variant"`
	Grid        int       `json:"grid"`
	A           float64   `json:"a"`
	B           float64   `json:"b"`
	C           float64   `json:"c"`
	U0          float64   `json:"u0"`
	DU0         float64   `json:"du0"`
	Seed        int64     `json:"seed"`
	Optimizer   string    `json:"optimizer"`
	Status      string    `json:"status"`
	BestLoss    float64   `json:"best_loss"`
	Evaluations int       `json:"evaluations"`
}

var runSeq atomic.Int64

// Save writes one completed run and returns its ID.
func (s *Store) Save(cfg train.Config, result *train.Result) (string, error) {
	runID := fmt.Sprintf("run_%d_%d", time.Now().Unix(), runSeq.Add(1))
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Timestamp:   time.Now(),
		Qubits:      cfg.Qubits,
		Variant:     int(cfg.Variant),
		Grid:        cfg.GridSize,
		A:           cfg.A,
		B:           cfg.B,
		C:           cfg.C,
		U0:          cfg.U0,
		DU0:         cfg.DU0,
		Seed:        cfg.Seed,
		Optimizer:   cfg.Optimizer,
		Status:      result.Status.String(),
		BestLoss:    result.BestLoss,
		Evaluations: result.Evaluations,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeColumn(filepath.Join(runDir, "weights.csv"), "weight", result.BestX); err != nil {
		return "", err
	}
	if err := writeColumn(filepath.Join(runDir, "history.csv"), "loss", result.History); err != nil {
		return "", err
	}

	return runID, nil
}

func writeColumn(path, name string, values []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"index", name}); err != nil {
		return err
	}
	for i, v := range values {
		row := []string{strconv.Itoa(i), strconv.FormatFloat(v, 'g', 17, 64)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

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
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadWeights(runID string) ([]float64, error) {
	return readColumn(filepath.Join(s.baseDir, runID, "weights.csv"))
}

func (s *Store) LoadHistory(runID string) ([]float64, error) {
	return readColumn(filepath.Join(s.baseDir, runID, "history.csv"))
}

func readColumn(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, len(records))
	for i, record := range records {
		if i == 0 || len(record) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: bad value at row %d of %s: %w", i, path, err)
		}
		values = append(values, v)
	}
	return values, nil
}
