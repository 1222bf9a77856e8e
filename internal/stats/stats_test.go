// internal/stats/stats_test.go
package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/groundctl/groundcontrol/internal/feed"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRecord_Counters(t *testing.T) {
	now := day("2021-08-07 10:00")
	tr := New(now)

	tr.Record(now, feed.Snapshot{Entities: []feed.Entity{
		{ID: "aaa", Label: "BAW1"},
		{ID: "bbb"},
		{ID: "ccc", Label: "RYR2", Emergency: true},
	}})

	assert.Equal(t, 3, tr.Cycle.Total)
	assert.Equal(t, 2, tr.Cycle.WithLabel)
	assert.Equal(t, 1, tr.Cycle.Emergencies)
	assert.Equal(t, 3, tr.Daily.Unique)
	assert.Equal(t, 3, tr.Daily.MaxSimultaneous)
}

func TestRecord_UniqueAccumulatesAcrossCycles(t *testing.T) {
	now := day("2021-08-07 10:00")
	tr := New(now)

	tr.Record(now, feed.Snapshot{Entities: []feed.Entity{{ID: "aaa"}, {ID: "bbb"}}})
	tr.Record(now.Add(time.Minute), feed.Snapshot{Entities: []feed.Entity{{ID: "bbb"}, {ID: "ccc"}}})

	assert.Equal(t, 3, tr.Daily.Unique)
	assert.Equal(t, 2, tr.Daily.MaxSimultaneous)
}

func TestRecord_MidnightCutover(t *testing.T) {
	tr := New(day("2021-08-07 23:55"))

	tr.Record(day("2021-08-07 23:55"), feed.Snapshot{Entities: []feed.Entity{
		{ID: "aaa"}, {ID: "bbb"}, {ID: "ccc"},
	}})
	tr.Record(day("2021-08-08 00:05"), feed.Snapshot{Entities: []feed.Entity{{ID: "ddd"}}})

	assert.Equal(t, "2021-08-08", tr.Daily.Date)
	assert.Equal(t, 1, tr.Daily.Unique)
	assert.Equal(t, 1, tr.Daily.MaxSimultaneous)

	// All-time marks survive the cutover.
	assert.Equal(t, 3, tr.AllTime.MaxSimultaneous)
	assert.Equal(t, 3, tr.AllTime.BestDayUnique)
	assert.Equal(t, "2021-08-07", tr.AllTime.BestDayDate)
}

func TestRecord_BestDayOvertaken(t *testing.T) {
	tr := New(day("2021-08-07 10:00"))

	tr.Record(day("2021-08-07 10:00"), feed.Snapshot{Entities: []feed.Entity{{ID: "a"}}})
	tr.Record(day("2021-08-08 10:00"), feed.Snapshot{Entities: []feed.Entity{
		{ID: "b"}, {ID: "c"},
	}})

	assert.Equal(t, 2, tr.AllTime.BestDayUnique)
	assert.Equal(t, "2021-08-08", tr.AllTime.BestDayDate)
}
