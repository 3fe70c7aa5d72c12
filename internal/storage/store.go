package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/shapesim/internal/simulation"
)

const (
	metadataFile = "metadata.json"
	contactsFile = "contacts.csv"
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
	ID        string             `json:"id"`
	Scene     string             `json:"scene"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	Steps     int                `json:"steps"`
	Entities  []string           `json:"entities"`
	Contacts  int                `json:"contacts"`
	Metrics   map[string]float64 `json:"metrics"`
}

// ContactRow is one stored contact. Synthetic sides have an empty name.
type ContactRow struct {
	Step    int        `json:"step"`
	Time    float64    `json:"time"`
	EntityA string     `json:"entity_a"`
	EntityB string     `json:"entity_b"`
	ShapeA  string     `json:"shape_a"`
	ShapeB  string     `json:"shape_b"`
	Depth   float64    `json:"depth"`
	Point   [3]float64 `json:"point"`
}

var contactHeader = []string{"step", "time", "entity_a", "entity_b", "shape_a", "shape_b", "depth", "px", "py", "pz"}

func (s *Store) Save(scene string, dt float64, entities []string, result *simulation.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", scene, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	rows := Rows(result)
	meta := RunMetadata{
		ID:        runID,
		Scene:     scene,
		Timestamp: time.Now(),
		Dt:        dt,
		Steps:     result.StepsTaken,
		Entities:  entities,
		Contacts:  len(rows),
		Metrics:   result.Metrics,
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

	csvFile, err := os.Create(filepath.Join(runDir, contactsFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(contactHeader); err != nil {
		return "", err
	}
	for _, r := range rows {
		if err := w.Write(r.record()); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

// Rows flattens a result into contact rows in step order.
func Rows(result *simulation.Result) []ContactRow {
	rows := make([]ContactRow, 0)
	for _, rec := range result.Records {
		for _, c := range rec.Contacts {
			row := ContactRow{
				Step:   rec.Step,
				Time:   rec.Time,
				ShapeA: c.Info.ShapeA.String(),
				ShapeB: c.Info.ShapeB.String(),
				Depth:  c.Depth,
				Point:  c.Info.ContactPoint,
			}
			if c.A != nil {
				row.EntityA = c.A.Name()
			}
			if c.B != nil {
				row.EntityB = c.B.Name()
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func (r ContactRow) record() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	return []string{
		strconv.Itoa(r.Step), f(r.Time),
		r.EntityA, r.EntityB, r.ShapeA, r.ShapeB,
		f(r.Depth), f(r.Point[0]), f(r.Point[1]), f(r.Point[2]),
	}
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
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadContacts(runID string) ([]ContactRow, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, contactsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(contactHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	rows := make([]ContactRow, 0, len(records))
	for i, rec := range records {
		if i == 0 {
			continue
		}
		row, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", contactsFile, i+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(rec []string) (ContactRow, error) {
	var (
		row  ContactRow
		err  error
		nums [5]float64
	)
	if row.Step, err = strconv.Atoi(rec[0]); err != nil {
		return row, err
	}
	for i, idx := range []int{1, 6, 7, 8, 9} {
		if nums[i], err = strconv.ParseFloat(rec[idx], 64); err != nil {
			return row, err
		}
	}
	row.Time = nums[0]
	row.EntityA, row.EntityB = rec[2], rec[3]
	row.ShapeA, row.ShapeB = rec[4], rec[5]
	row.Depth = nums[1]
	row.Point = [3]float64{nums[2], nums[3], nums[4]}
	return row, nil
}

// StepCounts returns the number of contacts for each step of a run.
func (s *Store) StepCounts(runID string) ([]float64, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	rows, err := s.LoadContacts(runID)
	if err != nil {
		return nil, err
	}

	counts := make([]float64, meta.Steps)
	for _, r := range rows {
		if i := r.Step - 1; i >= 0 && i < len(counts) {
			counts[i]++
		}
	}
	return counts, nil
}
