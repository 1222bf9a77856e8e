// internal/loop/loop_test.go
package loop

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundctl/groundcontrol/internal/display"
	"github.com/groundctl/groundcontrol/internal/feed"
	"github.com/groundctl/groundcontrol/internal/reconcile"
	"github.com/groundctl/groundcontrol/internal/stats"
	"github.com/groundctl/groundcontrol/internal/status"
)

// scriptedClient returns each queued result once, then repeats the last.
type scriptedClient struct {
	results []fetchResult
	calls   int
}

type fetchResult struct {
	snap feed.Snapshot
	err  error
}

func (c *scriptedClient) Fetch(ctx context.Context) (feed.Snapshot, error) {
	i := c.calls
	if i >= len(c.results) {
		i = len(c.results) - 1
	}
	c.calls++
	r := c.results[i]
	return r.snap, r.err
}

// recordingDriver applies commands in memory and records health reports.
type recordingDriver struct {
	batches [][]reconcile.Command
	health  []status.Snapshot
	faults  map[int]bool // slots that fail every write
}

func (d *recordingDriver) Apply(state reconcile.DisplayState, cmds []reconcile.Command) (reconcile.DisplayState, []display.SlotFault) {
	d.batches = append(d.batches, cmds)

	out := state.Clone()
	var faults []display.SlotFault
	for _, c := range cmds {
		if d.faults[c.Slot] {
			faults = append(faults, display.SlotFault{Slot: c.Slot, Op: c.Op.String(), Err: fmt.Errorf("nak")})
			continue
		}
		switch c.Op {
		case reconcile.OpSet, reconcile.OpRefresh:
			out.Slots[c.Slot] = reconcile.Slot{Occupied: true, Entity: c.Entity}
		case reconcile.OpClear:
			out.Slots[c.Slot] = reconcile.Slot{}
		}
	}
	return out, faults
}

func (d *recordingDriver) ReportHealth(s status.Snapshot) {
	d.health = append(d.health, s)
}

func (d *recordingDriver) lastHealth() status.Snapshot {
	return d.health[len(d.health)-1]
}

func newTestLoop(t *testing.T, client feed.Client, driver Applier, slots int) *Loop {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	l, err := New(Config{Interval: time.Second, Slots: slots}, client, driver, stats.New(time.Now()), log.WithField("component", "loop"))
	require.NoError(t, err)
	return l
}

func okSnap(ids ...string) fetchResult {
	var entities []feed.Entity
	for i, id := range ids {
		entities = append(entities, feed.Entity{ID: id, Priority: float64(i)})
	}
	return fetchResult{snap: feed.Snapshot{At: time.Now(), Entities: entities}}
}

func unavailable() fetchResult {
	return fetchResult{err: fmt.Errorf("%w: connection refused", feed.ErrUnavailable)}
}

func malformed() fetchResult {
	return fetchResult{err: fmt.Errorf("%w: truncated body", feed.ErrMalformed)}
}

func TestCycle_PopulatesDisplay(t *testing.T) {
	client := &scriptedClient{results: []fetchResult{okSnap("aaa", "bbb")}}
	driver := &recordingDriver{}
	l := newTestLoop(t, client, driver, 4)

	l.cycle(context.Background())

	require.Len(t, driver.batches, 1)
	assert.Len(t, driver.batches[0], 2)
	assert.True(t, l.state.Slots[0].Occupied)
	assert.True(t, l.state.Slots[1].Occupied)
	assert.Equal(t, status.HealthOK, driver.lastHealth().Health)
}

func TestCycle_FeedUnavailableKeepsDisplayStale(t *testing.T) {
	client := &scriptedClient{results: []fetchResult{okSnap("aaa"), unavailable()}}
	driver := &recordingDriver{}
	l := newTestLoop(t, client, driver, 2)

	l.cycle(context.Background())
	l.cycle(context.Background())

	// No second apply batch: the cycle was skipped, state untouched.
	require.Len(t, driver.batches, 1)
	assert.True(t, l.state.Slots[0].Occupied, "display must stay stale-but-valid")
	assert.Equal(t, status.HealthStale, driver.lastHealth().Health)
	assert.Equal(t, uint16(1), driver.lastHealth().FeedFailures)
}

func TestCycle_FailSafeAfterThreeFailures(t *testing.T) {
	client := &scriptedClient{results: []fetchResult{
		okSnap("aaa", "bbb"),
		unavailable(),
	}}
	driver := &recordingDriver{}
	l := newTestLoop(t, client, driver, 2)

	l.cycle(context.Background()) // populate
	l.cycle(context.Background()) // failure 1
	l.cycle(context.Background()) // failure 2
	assert.True(t, l.state.Slots[0].Occupied, "still stale before threshold")

	l.cycle(context.Background()) // failure 3 -> fail-safe

	for i, slot := range l.state.Slots {
		assert.False(t, slot.Occupied, "slot %d must be cleared", i)
	}
	assert.Equal(t, status.HealthDegraded, driver.lastHealth().Health)

	// Fourth failure must not re-clear an already cleared display.
	batches := len(driver.batches)
	l.cycle(context.Background())
	assert.Len(t, driver.batches, batches)
}

func TestCycle_RecoveryAfterDegraded(t *testing.T) {
	client := &scriptedClient{results: []fetchResult{
		unavailable(), unavailable(), unavailable(),
		okSnap("ccc"),
	}}
	driver := &recordingDriver{}
	l := newTestLoop(t, client, driver, 2)

	for i := 0; i < 3; i++ {
		l.cycle(context.Background())
	}
	require.True(t, l.degraded)

	l.cycle(context.Background())

	assert.False(t, l.degraded)
	assert.True(t, l.state.Slots[0].Occupied)
	assert.Equal(t, "ccc", l.state.Slots[0].Entity.ID)
	assert.Equal(t, status.HealthOK, driver.lastHealth().Health)
}

func TestCycle_MalformedTreatedAsEmptySnapshot(t *testing.T) {
	client := &scriptedClient{results: []fetchResult{okSnap("aaa"), malformed()}}
	driver := &recordingDriver{}
	l := newTestLoop(t, client, driver, 2)

	l.cycle(context.Background())
	l.cycle(context.Background())

	// Reconciled against empty: the occupied slot is cleared.
	assert.False(t, l.state.Slots[0].Occupied)
	require.Len(t, driver.batches, 2)
	require.Len(t, driver.batches[1], 1)
	assert.Equal(t, reconcile.OpClear, driver.batches[1][0].Op)
}

func TestCycle_PartialFaultKeepsOtherSlots(t *testing.T) {
	client := &scriptedClient{results: []fetchResult{okSnap("a", "b", "c", "d", "e")}}
	driver := &recordingDriver{faults: map[int]bool{2: true}}
	l := newTestLoop(t, client, driver, 5)

	l.cycle(context.Background())

	occupied := 0
	for _, slot := range l.state.Slots {
		if slot.Occupied {
			occupied++
		}
	}
	assert.Equal(t, 4, occupied)
	assert.False(t, l.state.Slots[2].Occupied)
}

func TestRun_GracefulShutdown(t *testing.T) {
	client := &scriptedClient{results: []fetchResult{okSnap("aaa")}}
	driver := &recordingDriver{}
	l := newTestLoop(t, client, driver, 2)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	// Let the immediate first cycle happen, then cancel.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRun_NoNewPollAfterCancel(t *testing.T) {
	client := &scriptedClient{results: []fetchResult{okSnap("aaa")}}
	driver := &recordingDriver{}
	l := newTestLoop(t, client, driver, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l.cycle(ctx)
	assert.Zero(t, client.calls, "cancelled context must not start a poll")
}

func TestNew_Validation(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	entry := log.WithField("component", "loop")

	_, err := New(Config{Interval: 0, Slots: 1}, &scriptedClient{}, &recordingDriver{}, stats.New(time.Now()), entry)
	assert.Error(t, err)

	_, err = New(Config{Interval: time.Second, Slots: 0}, &scriptedClient{}, &recordingDriver{}, stats.New(time.Now()), entry)
	assert.Error(t, err)
}
