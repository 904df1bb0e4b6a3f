package tracker

import (
	"path/filepath"
	"testing"
	"time"

	"timecard/internal/config"
	"timecard/internal/jsonstore"
	"timecard/internal/project"
	"timecard/internal/timer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

var backends = []struct {
	name string
	open func(t *testing.T) Store
}{
	{
		name: "sqlite",
		open: func(t *testing.T) Store {
			repo, err := project.NewRepository(filepath.Join(t.TempDir(), "timecard.db"))
			require.NoError(t, err)
			return repo
		},
	},
	{
		name: "json",
		open: func(t *testing.T) Store {
			s, err := jsonstore.Open(t.TempDir())
			require.NoError(t, err)
			return s
		},
	},
}

// forEachBackend runs fn against a fresh tracker on every store.
func forEachBackend(t *testing.T, fn func(t *testing.T, tr *Tracker, clock *fakeClock)) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			clock := &fakeClock{now: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)}
			tr := New(b.open(t), WithClock(clock.Now))
			t.Cleanup(func() { tr.Close() })
			fn(t, tr, clock)
		})
	}
}

func TestCheckoutThenImmediateCheckin(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tr *Tracker, clock *fakeClock) {
		_, err := tr.Create("alpha")
		require.NoError(t, err)

		p, err := tr.Checkout("")
		require.NoError(t, err)
		assert.True(t, p.CheckedOut())

		clock.Advance(300 * time.Millisecond)
		rec, err := tr.Checkin("")
		require.NoError(t, err)
		assert.Equal(t, timer.Breakdown{}, rec.Breakdown)
		assert.Equal(t, "alpha", rec.Project)

		got, err := tr.store.GetProject("alpha")
		require.NoError(t, err)
		assert.False(t, got.CheckedOut())
		assert.Equal(t, time.Duration(0), got.Total)
	})
}

func TestCheckinAccumulatesTotals(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tr *Tracker, clock *fakeClock) {
		_, err := tr.Create("alpha")
		require.NoError(t, err)

		_, err = tr.Checkout("alpha")
		require.NoError(t, err)
		clock.Advance(59*time.Minute + 59*time.Second + 900*time.Millisecond)
		rec, err := tr.Checkin("alpha")
		require.NoError(t, err)
		assert.Equal(t, timer.Breakdown{Minutes: 59, Seconds: 59}, rec.Breakdown)

		clock.Advance(time.Hour)
		_, err = tr.Checkout("alpha")
		require.NoError(t, err)
		clock.Advance(2 * time.Second)
		_, err = tr.Checkin("alpha")
		require.NoError(t, err)

		p, err := tr.store.GetProject("alpha")
		require.NoError(t, err)
		assert.Equal(t, timer.Breakdown{Hours: 1, Seconds: 1}, p.Breakdown())

		records, err := tr.Records("alpha")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, 2*time.Second, records[0].Duration())
	})
}

func TestCheckoutPreconditions(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tr *Tracker, clock *fakeClock) {
		_, err := tr.Checkout("")
		assert.ErrorIs(t, err, ErrNoCurrentProject)

		_, err = tr.Checkout("ghost")
		assert.ErrorIs(t, err, ErrProjectNotFound)

		_, err = tr.Create("alpha")
		require.NoError(t, err)
		_, err = tr.Checkout("")
		require.NoError(t, err)

		_, err = tr.Checkout("alpha")
		assert.ErrorIs(t, err, ErrAlreadyCheckedOut)
	})
}

func TestCheckinWithoutCheckoutIsRejected(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tr *Tracker, clock *fakeClock) {
		_, err := tr.Checkin("")
		assert.ErrorIs(t, err, ErrNoCurrentProject)

		_, err = tr.Create("alpha")
		require.NoError(t, err)

		_, err = tr.Checkin("")
		assert.ErrorIs(t, err, ErrNotCheckedOut)

		records, err := tr.Records("")
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestCreate(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tr *Tracker, clock *fakeClock) {
		_, err := tr.Create("  ")
		assert.ErrorIs(t, err, ErrInvalidName)

		_, err = tr.Create(" alpha ")
		require.NoError(t, err)
		_, err = tr.Create("alpha")
		assert.ErrorIs(t, err, ErrProjectExists)

		_, err = tr.Create("beta")
		require.NoError(t, err)

		entries, err := tr.List()
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "alpha", entries[0].Name)
		assert.True(t, entries[0].Current, "first project becomes current")
		assert.Equal(t, "beta", entries[1].Name)
		assert.False(t, entries[1].Current)
	})
}

func TestDelete(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tr *Tracker, clock *fakeClock) {
		err := tr.Delete("ghost")
		assert.ErrorIs(t, err, ErrProjectNotFound)

		_, err = tr.Create("alpha")
		require.NoError(t, err)
		_, err = tr.Checkout("")
		require.NoError(t, err)

		err = tr.Delete("alpha")
		assert.ErrorIs(t, err, ErrProjectCheckedOut)

		clock.Advance(time.Minute)
		_, err = tr.Checkin("")
		require.NoError(t, err)
		require.NoError(t, tr.Delete("alpha"))

		status, err := tr.Status()
		require.NoError(t, err)
		assert.Nil(t, status.Project, "deleting the current project clears it")

		records, err := tr.Records("alpha")
		require.NoError(t, err)
		assert.Len(t, records, 1, "records outlive their project")
	})
}

func TestSwitch(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tr *Tracker, clock *fakeClock) {
		_, err := tr.Switch("ghost")
		assert.ErrorIs(t, err, ErrProjectNotFound)

		_, err = tr.Create("alpha")
		require.NoError(t, err)
		_, err = tr.Create("beta")
		require.NoError(t, err)

		_, err = tr.Switch("beta")
		require.NoError(t, err)
		_, err = tr.Switch("beta")
		require.NoError(t, err)

		_, err = tr.Checkout("")
		require.NoError(t, err)
		clock.Advance(90 * time.Second)

		status, err := tr.Status()
		require.NoError(t, err)
		require.NotNil(t, status.Project)
		assert.Equal(t, "beta", status.Project.Name)
		assert.Equal(t, 90*time.Second, status.Running)
	})
}

func TestOpenSelectsBackend(t *testing.T) {
	for _, backend := range []string{config.BackendSQLite, config.BackendJSON} {
		t.Run(backend, func(t *testing.T) {
			cfg := config.Config{Backend: backend, DataDir: filepath.Join(t.TempDir(), "data")}
			tr, err := Open(cfg)
			require.NoError(t, err)
			defer tr.Close()

			_, err = tr.Create("alpha")
			require.NoError(t, err)
		})
	}

	_, err := Open(config.Config{Backend: "postgres", DataDir: t.TempDir()})
	assert.Error(t, err)
}

func TestCheckinWithClockBehindCheckoutRecordsZero(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tr *Tracker, clock *fakeClock) {
		_, err := tr.Create("alpha")
		require.NoError(t, err)
		_, err = tr.Checkout("")
		require.NoError(t, err)

		clock.Advance(-10 * time.Minute)
		rec, err := tr.Checkin("")
		require.NoError(t, err)
		assert.Equal(t, timer.Breakdown{}, rec.Breakdown)

		p, err := tr.Get("alpha")
		require.NoError(t, err)
		assert.Equal(t, time.Duration(0), p.Total)
	})
}
