// internal/loop/loop.go
package loop

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/groundctl/groundcontrol/internal/display"
	"github.com/groundctl/groundcontrol/internal/feed"
	"github.com/groundctl/groundcontrol/internal/reconcile"
	"github.com/groundctl/groundcontrol/internal/stats"
	"github.com/groundctl/groundcontrol/internal/status"
)

// failSafeThreshold is the number of consecutive feed failures after
// which the display is cleared rather than left stale forever.
const failSafeThreshold = 3

type phase uint8

const (
	phaseIdle phase = iota
	phasePolling
	phaseReconciling
	phaseApplying
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phasePolling:
		return "polling"
	case phaseReconciling:
		return "reconciling"
	case phaseApplying:
		return "applying"
	default:
		return "unknown"
	}
}

// Applier is the slice of the display driver the loop needs.
type Applier interface {
	Apply(state reconcile.DisplayState, cmds []reconcile.Command) (reconcile.DisplayState, []display.SlotFault)
	ReportHealth(s status.Snapshot)
}

// Config is the minimal runtime config the loop needs.
type Config struct {
	Interval time.Duration
	Slots    int
}

// Loop owns the DisplayState and sequences poll, reconcile and apply.
// All recoverable errors terminate here; nothing propagates out of Run
// while the process is meant to run unattended.
type Loop struct {
	cfg     Config
	client  feed.Client
	driver  Applier
	tracker *stats.Tracker
	log     *logrus.Entry

	state    reconcile.DisplayState
	phase    phase
	failures int
	degraded bool
	lastGood time.Time
	now      func() time.Time
}

func New(cfg Config, client feed.Client, driver Applier, tracker *stats.Tracker, log *logrus.Entry) (*Loop, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("loop: interval must be > 0")
	}
	if cfg.Slots <= 0 {
		return nil, errors.New("loop: at least one slot required")
	}
	return &Loop{
		cfg:     cfg,
		client:  client,
		driver:  driver,
		tracker: tracker,
		log:     log,
		state:   reconcile.NewDisplayState(cfg.Slots),
		now:     time.Now,
	}, nil
}

// Run executes cycles on the configured interval until ctx is cancelled.
// The first cycle runs immediately so the display is not blank for a
// whole interval after boot. Cancellation is only observed between
// phases: an in-flight apply always completes, and no new poll starts.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	l.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			l.log.Info("shutdown requested, loop stopping")
			return nil
		case <-ticker.C:
			l.cycle(ctx)
		}
	}
}

// cycle walks IDLE -> POLLING -> RECONCILING -> APPLYING -> IDLE once.
func (l *Loop) cycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	l.setPhase(phasePolling)
	defer l.setPhase(phaseIdle)

	snap, err := l.client.Fetch(ctx)
	switch {
	case err == nil:
		l.recover()

	case errors.Is(err, feed.ErrMalformed):
		// The feed answered but the payload is garbage: show the truth
		// we have, which is nothing, and let the fail-safe counter run.
		l.log.WithError(err).Warn("malformed feed data, reconciling empty snapshot")
		l.failures++
		snap = feed.Snapshot{At: l.now()}

	default:
		// Unavailable (or cancelled mid-fetch): leave the display
		// stale-but-valid and skip straight back to idle.
		l.failures++
		l.log.WithError(err).WithField("failures", l.failures).Warn("feed unavailable, skipping cycle")
		if l.failures >= failSafeThreshold && !l.degraded {
			l.engageFailSafe()
		}
		l.driver.ReportHealth(l.health())
		return
	}

	l.tracker.Record(l.now(), snap)

	l.setPhase(phaseReconciling)
	cmds := reconcile.Reconcile(l.state, snap)

	l.setPhase(phaseApplying)
	next, faults := l.driver.Apply(l.state, cmds)
	l.state = next

	for _, f := range faults {
		l.log.WithError(f.Err).WithFields(logrus.Fields{
			"slot": f.Slot,
			"op":   f.Op,
		}).Warn("slot write failed, keeping prior state")
	}

	l.driver.ReportHealth(l.health())

	l.log.WithFields(logrus.Fields{
		"entities":    l.tracker.Cycle.Total,
		"with_label":  l.tracker.Cycle.WithLabel,
		"emergencies": l.tracker.Cycle.Emergencies,
		"daily":       l.tracker.Daily.Unique,
		"commands":    len(cmds),
		"faults":      len(faults),
	}).Debug("cycle complete")
}

func (l *Loop) setPhase(p phase) {
	l.phase = p
	l.log.WithField("phase", p.String()).Trace("phase transition")
}

// recover resets the failure bookkeeping after a successful poll.
func (l *Loop) recover() {
	if l.degraded {
		l.log.Info("feed recovered, leaving degraded mode")
	}
	l.failures = 0
	l.degraded = false
	l.lastGood = l.now()
}

// engageFailSafe clears every occupied slot. A blank display is an
// honest display: after repeated feed failures the stale picture stops
// being information and starts being a lie.
func (l *Loop) engageFailSafe() {
	l.log.WithField("failures", l.failures).Warn("feed failure threshold reached, clearing display")

	var clears []reconcile.Command
	for i, slot := range l.state.Slots {
		if slot.Occupied {
			clears = append(clears, reconcile.Command{Op: reconcile.OpClear, Slot: i})
		}
	}

	l.setPhase(phaseApplying)
	next, faults := l.driver.Apply(l.state, clears)
	l.state = next
	l.degraded = true

	for _, f := range faults {
		l.log.WithError(f.Err).WithField("slot", f.Slot).Warn("fail-safe clear failed for slot")
	}
}

// health derives the reportable snapshot from loop state.
func (l *Loop) health() status.Snapshot {
	s := status.Snapshot{
		FeedFailures: clamp16(l.failures),
	}

	switch {
	case l.degraded:
		s.Health = status.HealthDegraded
	case l.failures > 0 && l.lastGood.IsZero():
		s.Health = status.HealthUnknown
	case l.failures > 0:
		s.Health = status.HealthStale
	case l.lastGood.IsZero():
		s.Health = status.HealthUnknown
	default:
		s.Health = status.HealthOK
	}

	if !l.lastGood.IsZero() && l.failures > 0 {
		s.SecondsStale = clamp16(int(l.now().Sub(l.lastGood) / time.Second))
	}

	return s
}

func clamp16(v int) uint16 {
	if v < 0 {
		return 0
	}
	if v > 65535 {
		return 65535
	}
	return uint16(v)
}
