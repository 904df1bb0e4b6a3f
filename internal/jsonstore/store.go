// Package jsonstore keeps tracker state in plain JSON files: one state file
// for the project registry and the current project, and one records file per
// ISO week.
package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"timecard/internal/project"
	"timecard/internal/timelog"
	"timecard/internal/timer"
)

const (
	stateFile  = "state.json"
	recordsDir = "records"
)

type projectEntry struct {
	Name     string          `json:"name"`
	Total    timer.Breakdown `json:"total"`
	Checkout *time.Time      `json:"checkout"`
}

type state struct {
	Current  string         `json:"current"`
	Projects []projectEntry `json:"projects"`
}

// Store is a directory of JSON files. Every call reads from disk, so several
// processes see each other's writes between commands.
type Store struct {
	dir string
}

func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, recordsDir), 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) load() (*state, error) {
	path := filepath.Join(s.dir, stateFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &state{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &st, nil
}

func (s *Store) save(st *state) error {
	return writeJSON(filepath.Join(s.dir, stateFile), st)
}

func (st *state) find(name string) int {
	for i := range st.Projects {
		if st.Projects[i].Name == name {
			return i
		}
	}
	return -1
}

func (s *Store) CurrentProject() (string, error) {
	st, err := s.load()
	if err != nil {
		return "", err
	}
	return st.Current, nil
}

func (s *Store) SetCurrentProject(name string) error {
	st, err := s.load()
	if err != nil {
		return err
	}
	st.Current = name
	return s.save(st)
}

func (s *Store) GetProject(name string) (*project.Project, error) {
	st, err := s.load()
	if err != nil {
		return nil, err
	}
	i := st.find(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", project.ErrNotFound, name)
	}
	return toProject(st.Projects[i]), nil
}

func (s *Store) ListProjects() ([]project.Project, error) {
	st, err := s.load()
	if err != nil {
		return nil, err
	}
	projects := make([]project.Project, 0, len(st.Projects))
	for _, e := range st.Projects {
		projects = append(projects, *toProject(e))
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].Name < projects[j].Name
	})
	return projects, nil
}

func (s *Store) CreateProject(p *project.Project) error {
	st, err := s.load()
	if err != nil {
		return err
	}
	if st.find(p.Name) >= 0 {
		return fmt.Errorf("project %s already stored", p.Name)
	}
	st.Projects = append(st.Projects, fromProject(p))
	return s.save(st)
}

func (s *Store) UpdateProject(p *project.Project) error {
	st, err := s.load()
	if err != nil {
		return err
	}
	i := st.find(p.Name)
	if i < 0 {
		return fmt.Errorf("%w: %s", project.ErrNotFound, p.Name)
	}
	st.Projects[i] = fromProject(p)
	return s.save(st)
}

func (s *Store) DeleteProject(name string) error {
	st, err := s.load()
	if err != nil {
		return err
	}
	i := st.find(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", project.ErrNotFound, name)
	}
	st.Projects = append(st.Projects[:i], st.Projects[i+1:]...)
	return s.save(st)
}

// WeekFile names the records file holding sessions checked in at t.
func WeekFile(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d.json", year, week)
}

func (s *Store) AppendRecord(rec *timelog.Record) error {
	path := filepath.Join(s.dir, recordsDir, WeekFile(rec.CheckinAt))
	records, err := readRecords(path)
	if err != nil {
		return err
	}
	records = append(records, *rec)
	return writeJSON(path, records)
}

// ListRecords returns records newest first. An empty project name returns
// records of every project.
func (s *Store) ListRecords(projectName string) ([]timelog.Record, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, recordsDir, "*.json"))
	if err != nil {
		return nil, err
	}

	var all []timelog.Record
	for _, path := range paths {
		records, err := readRecords(path)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if projectName == "" || rec.Project == projectName {
				all = append(all, rec)
			}
		}
	}

	// Files and their contents are in append order; reversing first makes
	// later appends win ties on checkin time.
	slices.Reverse(all)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CheckinAt.After(all[j].CheckinAt)
	})
	return all, nil
}

func (s *Store) Close() error {
	return nil
}

func readRecords(path string) ([]timelog.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var records []timelog.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}

// writeJSON replaces path through a temp file and rename.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func toProject(e projectEntry) *project.Project {
	p := project.NewProject(e.Name)
	p.Total = e.Total.Duration()
	if e.Checkout != nil {
		t := *e.Checkout
		p.CheckoutAt = &t
	}
	return p
}

func fromProject(p *project.Project) projectEntry {
	return projectEntry{
		Name:     p.Name,
		Total:    p.Breakdown(),
		Checkout: p.CheckoutAt,
	}
}
