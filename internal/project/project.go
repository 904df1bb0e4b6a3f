package project

import (
	"errors"
	"time"

	"timecard/internal/timer"
)

// ErrNotFound is returned by every store when a project name is unknown.
var ErrNotFound = errors.New("project not found")

type Project struct {
	ID         int64
	Name       string
	Total      time.Duration
	CheckoutAt *time.Time
}

func NewProject(name string) *Project {
	return &Project{Name: name}
}

func (p *Project) CheckedOut() bool {
	return p.CheckoutAt != nil
}

// Running is the time since checkout, or zero when checked in.
func (p *Project) Running(now time.Time) time.Duration {
	if p.CheckoutAt == nil {
		return 0
	}
	return timer.Elapsed(*p.CheckoutAt, now)
}

func (p *Project) Breakdown() timer.Breakdown {
	return timer.Split(p.Total)
}
