package timelog

import (
	"time"

	"timecard/internal/timer"
)

// Record is a completed work session on a project. Records are only ever
// appended.
type Record struct {
	ID         int64           `json:"-"`
	Project    string          `json:"project"`
	CheckoutAt time.Time       `json:"checkout"`
	CheckinAt  time.Time       `json:"checkin"`
	Breakdown  timer.Breakdown `json:"duration"`
}

func New(project string, checkoutAt, checkinAt time.Time) *Record {
	return &Record{
		Project:    project,
		CheckoutAt: checkoutAt,
		CheckinAt:  checkinAt,
		Breakdown:  timer.Split(timer.Elapsed(checkoutAt, checkinAt)),
	}
}

func (r Record) Duration() time.Duration {
	return r.Breakdown.Duration()
}
