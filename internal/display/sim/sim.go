// internal/display/sim/sim.go
package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/groundctl/groundcontrol/internal/feed"
	"github.com/groundctl/groundcontrol/internal/status"
)

// Backend is a log-only indicator bank for desktop runs and tests.
// It never fails and keeps no hardware state beyond the log.
type Backend struct {
	slots int
	log   *logrus.Entry
}

func New(slots int, log *logrus.Entry) *Backend {
	return &Backend{slots: slots, log: log}
}

func (b *Backend) SetSlot(slot int, e feed.Entity) error {
	b.log.WithFields(logrus.Fields{
		"slot":      slot,
		"id":        e.ID,
		"label":     e.Label,
		"emergency": e.Emergency,
	}).Info("slot set")
	return nil
}

func (b *Backend) ClearSlot(slot int) error {
	b.log.WithField("slot", slot).Info("slot cleared")
	return nil
}

func (b *Backend) WriteHealth(s status.Snapshot) error {
	b.log.WithFields(logrus.Fields{
		"health":        s.Health,
		"feed_failures": s.FeedFailures,
		"seconds_stale": s.SecondsStale,
	}).Debug("loop health")
	return nil
}

func (b *Backend) Close() error { return nil }
