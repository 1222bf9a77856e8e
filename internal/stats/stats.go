// internal/stats/stats.go
package stats

import (
	"time"

	"github.com/groundctl/groundcontrol/internal/feed"
)

// Cycle holds counters recomputed on every poll.
type Cycle struct {
	Total       int // entities in the snapshot
	WithLabel   int // entities carrying a display label
	Emergencies int // watchlist hits
}

// Daily holds counters that reset at local midnight.
type Daily struct {
	Date            string
	Unique          int // distinct ids observed today
	MaxSimultaneous int // most entities in one snapshot today
}

// AllTime holds high-water marks for the life of the process.
type AllTime struct {
	MaxSimultaneous int
	BestDayUnique   int
	BestDayDate     string
}

// Tracker accumulates traffic statistics across poll cycles.
// In-memory only; state dies with the process. Not safe for concurrent
// use — it is owned by the control loop like everything else.
type Tracker struct {
	Cycle   Cycle
	Daily   Daily
	AllTime AllTime

	uniqueToday map[string]bool
}

const dayFormat = "2006-01-02"

func New(now time.Time) *Tracker {
	day := now.Format(dayFormat)
	return &Tracker{
		Daily:       Daily{Date: day},
		AllTime:     AllTime{BestDayDate: day},
		uniqueToday: make(map[string]bool),
	}
}

// Record folds one snapshot into the counters, handling the midnight
// cutover first so a snapshot never counts against the wrong day.
func (t *Tracker) Record(now time.Time, snap feed.Snapshot) {
	t.cutover(now)

	c := Cycle{Total: len(snap.Entities)}
	for _, e := range snap.Entities {
		if e.Label != "" {
			c.WithLabel++
		}
		if e.Emergency {
			c.Emergencies++
		}
		t.uniqueToday[e.ID] = true
	}
	t.Cycle = c

	t.Daily.Unique = len(t.uniqueToday)
	if c.Total > t.Daily.MaxSimultaneous {
		t.Daily.MaxSimultaneous = c.Total
	}
	if t.Daily.MaxSimultaneous > t.AllTime.MaxSimultaneous {
		t.AllTime.MaxSimultaneous = t.Daily.MaxSimultaneous
	}
	if t.Daily.Unique > t.AllTime.BestDayUnique {
		t.AllTime.BestDayUnique = t.Daily.Unique
		t.AllTime.BestDayDate = t.Daily.Date
	}
}

// cutover resets the daily counters when the date changes.
func (t *Tracker) cutover(now time.Time) {
	day := now.Format(dayFormat)
	if day == t.Daily.Date {
		return
	}
	t.Daily = Daily{Date: day}
	t.uniqueToday = make(map[string]bool)
	t.Cycle = Cycle{}
}
