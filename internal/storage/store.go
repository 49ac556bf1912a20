package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/projmo/internal/config"
	"github.com/san-kum/projmo/internal/dynamo"
	"github.com/san-kum/projmo/internal/sim"
	"github.com/san-kum/projmo/internal/trajectory"
)

const (
	metadataFile = "metadata.json"
	pointsFile   = "points.csv"
)

var pointsHeader = []string{"time", "trajectory", "x", "y"}

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
	ID         string                     `json:"id"`
	Name       string                     `json:"name"`
	Timestamp  time.Time                  `json:"timestamp"`
	Integrator string                     `json:"integrator"`
	Dt         float64                    `json:"dt"`
	Duration   float64                    `json:"duration"`
	Gravity    float64                    `json:"gravity"`
	Launch     trajectory.Launch          `json:"launch"`
	Drag       config.DragConfig          `json:"drag"`
	StepsTaken int                        `json:"steps_taken"`
	Summaries  []trajectory.Summary       `json:"summaries"`
	Metrics    map[int]map[string]float64 `json:"metrics"`
}

// Save writes the run under a fresh directory named after name and the
// current time, and returns its id.
func (s *Store) Save(name string, cfg *config.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Name:       name,
		Timestamp:  now,
		Integrator: cfg.Integrator,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Gravity:    cfg.Gravity,
		Launch:     cfg.Launch,
		Drag:       cfg.Drag,
		StepsTaken: result.StepsTaken,
		Summaries:  result.Summaries,
		Metrics:    result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, pointsFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WritePointsCSV(csvFile, result.Paths); err != nil {
		return "", err
	}
	return runID, nil
}

// List returns every readable run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
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
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadPoints reads the recorded paths of a run keyed by trajectory id.
func (s *Store) LoadPoints(runID string) (map[int][]trajectory.Point, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, pointsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadPointsCSV(file)
}

// WritePointsCSV writes one row per recorded point, ordered by trajectory
// id and then time.
func WritePointsCSV(w io.Writer, paths map[int][]trajectory.Point) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(pointsHeader); err != nil {
		return err
	}

	ids := make([]int, 0, len(paths))
	for id := range paths {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		for _, p := range paths[id] {
			row := []string{
				strconv.FormatFloat(p.Time, 'f', 6, 64),
				strconv.Itoa(id),
				strconv.FormatFloat(p.Position.X, 'f', 6, 64),
				strconv.FormatFloat(p.Position.Y, 'f', 6, 64),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func ReadPointsCSV(r io.Reader) (map[int][]trajectory.Point, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(pointsHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	paths := make(map[int][]trajectory.Point)
	if len(records) < 2 {
		return paths, nil
	}

	for i, record := range records[1:] {
		id, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		var vals [3]float64
		for j, field := range []string{record[0], record[2], record[3]} {
			vals[j], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+2, err)
			}
		}
		paths[id] = append(paths[id], trajectory.Point{
			Time:     vals[0],
			Position: dynamo.Vec2{X: vals[1], Y: vals[2]},
		})
	}
	return paths, nil
}

// ExportData is the JSON document produced for a run.
type ExportData struct {
	RunMetadata
	Paths map[int][]trajectory.Point `json:"paths"`
}

// ExportJSON writes the metadata and paths of a stored run to w.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	paths, err := s.LoadPoints(runID)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{RunMetadata: *meta, Paths: paths})
}
