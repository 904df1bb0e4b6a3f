package timer

import (
	"fmt"
	"time"
)

// Clock returns the current time. Tests swap it for a fixed one.
type Clock func() time.Time

// Breakdown is a duration split into whole hours, minutes and seconds.
type Breakdown struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// Split floors d to whole seconds and carries into minutes and hours.
func Split(d time.Duration) Breakdown {
	if d < 0 {
		d = 0
	}
	seconds := int(d / time.Second)

	minutes := seconds / 60
	seconds -= minutes * 60

	hours := minutes / 60
	minutes -= hours * 60

	return Breakdown{Hours: hours, Minutes: minutes, Seconds: seconds}
}

func (b Breakdown) Duration() time.Duration {
	return time.Duration(b.Hours)*time.Hour +
		time.Duration(b.Minutes)*time.Minute +
		time.Duration(b.Seconds)*time.Second
}

func (b Breakdown) String() string {
	return fmt.Sprintf("%d:%02d:%02d", b.Hours, b.Minutes, b.Seconds)
}

// Elapsed is the whole-second time between since and now, never negative.
func Elapsed(since, now time.Time) time.Duration {
	d := now.Sub(since)
	if d < 0 {
		return 0
	}
	return d.Truncate(time.Second)
}

func Format(d time.Duration) string {
	return Split(d).String()
}

// Short drops the hour field when it is zero, for compact list columns.
func Short(d time.Duration) string {
	b := Split(d)
	if b.Hours > 0 {
		return b.String()
	}
	return fmt.Sprintf("%02d:%02d", b.Minutes, b.Seconds)
}
