// Package tracker implements the checkout/checkin state machine and the
// project registry on top of any Store.
package tracker

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"timecard/internal/logger"
	"timecard/internal/project"
	"timecard/internal/timelog"
	"timecard/internal/timer"
)

var (
	ErrNoCurrentProject  = errors.New("you do not have a current project")
	ErrAlreadyCheckedOut = errors.New("project is already checked out")
	ErrNotCheckedOut     = errors.New("project is not checked out")
	ErrProjectExists     = errors.New("project already exists")
	ErrProjectNotFound   = project.ErrNotFound
	ErrProjectCheckedOut = errors.New("project is checked out")
	ErrInvalidName       = errors.New("project name must not be empty")
)

// Store persists projects, the current project pointer and session records.
type Store interface {
	CurrentProject() (string, error)
	SetCurrentProject(name string) error

	GetProject(name string) (*project.Project, error)
	ListProjects() ([]project.Project, error)
	CreateProject(p *project.Project) error
	UpdateProject(p *project.Project) error
	DeleteProject(name string) error

	AppendRecord(rec *timelog.Record) error
	ListRecords(projectName string) ([]timelog.Record, error)

	Close() error
}

type Tracker struct {
	store Store
	now   timer.Clock
}

type Option func(*Tracker)

func WithClock(c timer.Clock) Option {
	return func(t *Tracker) {
		t.now = c
	}
}

func New(store Store, opts ...Option) *Tracker {
	t := &Tracker{store: store, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) Close() error {
	return t.store.Close()
}

// Now is the tracker's clock reading.
func (t *Tracker) Now() time.Time {
	return t.now()
}

// resolve loads the named project, or the current one when name is empty.
func (t *Tracker) resolve(name string) (*project.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		current, err := t.store.CurrentProject()
		if err != nil {
			return nil, fmt.Errorf("failed to load current project: %w", err)
		}
		if current == "" {
			return nil, ErrNoCurrentProject
		}
		name = current
	}
	return t.store.GetProject(name)
}

// Checkout starts a session on the named project, or the current one.
func (t *Tracker) Checkout(name string) (*project.Project, error) {
	p, err := t.resolve(name)
	if err != nil {
		return nil, err
	}
	if p.CheckedOut() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyCheckedOut, p.Name)
	}

	now := t.now()
	p.CheckoutAt = &now
	if err := t.store.UpdateProject(p); err != nil {
		return nil, fmt.Errorf("failed to save project %s: %w", p.Name, err)
	}

	logger.Info("checked out", "project", p.Name, "at", now)
	return p, nil
}

// Checkin ends the open session, appends its record and adds the elapsed
// time to the project's total.
func (t *Tracker) Checkin(name string) (*timelog.Record, error) {
	p, err := t.resolve(name)
	if err != nil {
		return nil, err
	}
	if !p.CheckedOut() {
		return nil, fmt.Errorf("%w: %s", ErrNotCheckedOut, p.Name)
	}

	now := t.now()
	if now.Before(*p.CheckoutAt) {
		logger.Warn("clock is behind checkout, recording zero time", "project", p.Name, "checkout", *p.CheckoutAt, "now", now)
	}
	rec := timelog.New(p.Name, *p.CheckoutAt, now)
	if err := t.store.AppendRecord(rec); err != nil {
		return nil, fmt.Errorf("failed to append record for %s: %w", p.Name, err)
	}

	p.CheckoutAt = nil
	p.Total += rec.Duration()
	if err := t.store.UpdateProject(p); err != nil {
		return nil, fmt.Errorf("failed to save project %s: %w", p.Name, err)
	}

	logger.Info("checked in", "project", p.Name, "elapsed", rec.Breakdown.String(), "total", timer.Format(p.Total))
	return rec, nil
}

// Create registers a new project. It becomes current when nothing else is.
func (t *Tracker) Create(name string) (*project.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	_, err := t.store.GetProject(name)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", ErrProjectExists, name)
	case !errors.Is(err, project.ErrNotFound):
		return nil, err
	}

	p := project.NewProject(name)
	if err := t.store.CreateProject(p); err != nil {
		return nil, fmt.Errorf("failed to create project %s: %w", name, err)
	}

	current, err := t.store.CurrentProject()
	if err != nil {
		return nil, err
	}
	if current == "" {
		if err := t.store.SetCurrentProject(name); err != nil {
			return nil, err
		}
	}

	logger.Info("created project", "project", name)
	return p, nil
}

// Delete removes a project from the registry. Its records stay.
func (t *Tracker) Delete(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}

	p, err := t.store.GetProject(name)
	if err != nil {
		return err
	}
	if p.CheckedOut() {
		return fmt.Errorf("%w: check in %s before deleting it", ErrProjectCheckedOut, name)
	}

	if err := t.store.DeleteProject(name); err != nil {
		return err
	}

	current, err := t.store.CurrentProject()
	if err != nil {
		return err
	}
	if current == name {
		if err := t.store.SetCurrentProject(""); err != nil {
			return err
		}
	}

	logger.Info("deleted project", "project", name)
	return nil
}

// Switch makes name the current project.
func (t *Tracker) Switch(name string) (*project.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	p, err := t.store.GetProject(name)
	if err != nil {
		return nil, err
	}
	if err := t.store.SetCurrentProject(name); err != nil {
		return nil, err
	}

	logger.Info("switched project", "project", name)
	return p, nil
}

// Entry is a project as shown by List.
type Entry struct {
	project.Project
	Current bool
}

func (t *Tracker) List() ([]Entry, error) {
	projects, err := t.store.ListProjects()
	if err != nil {
		return nil, err
	}
	current, err := t.store.CurrentProject()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(projects))
	for i, p := range projects {
		entries[i] = Entry{Project: p, Current: p.Name == current}
	}
	return entries, nil
}

// Status describes the current project. Project is nil when none is set.
type Status struct {
	Project *project.Project
	Running time.Duration
}

func (t *Tracker) Status() (Status, error) {
	p, err := t.resolve("")
	if errors.Is(err, ErrNoCurrentProject) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, err
	}
	return Status{Project: p, Running: p.Running(t.now())}, nil
}

// Records lists sessions newest first, for one project or all of them.
func (t *Tracker) Records(name string) ([]timelog.Record, error) {
	return t.store.ListRecords(strings.TrimSpace(name))
}

// Get loads the named project, or the current one when name is empty.
func (t *Tracker) Get(name string) (*project.Project, error) {
	return t.resolve(name)
}
