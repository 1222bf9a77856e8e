// internal/display/driver.go
package display

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/groundctl/groundcontrol/internal/reconcile"
	"github.com/groundctl/groundcontrol/internal/status"
)

// Driver applies reconcile commands to a backend and maintains the
// resulting DisplayState. All hardware access is serialized here; no
// other code may touch the backend while the process runs.
type Driver struct {
	mu      sync.Mutex
	backend Backend
	log     *logrus.Entry
}

func New(backend Backend, log *logrus.Entry) *Driver {
	return &Driver{backend: backend, log: log}
}

// Apply executes the batch in order, best-effort. A failed write is
// recorded as a SlotFault and that slot keeps its previous state entry;
// the remaining commands still run. The input state is not mutated.
func (d *Driver) Apply(state reconcile.DisplayState, cmds []reconcile.Command) (reconcile.DisplayState, []SlotFault) {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := state.Clone()
	var faults []SlotFault

	for _, c := range cmds {
		if c.Slot < 0 || c.Slot >= len(out.Slots) {
			d.log.WithField("slot", c.Slot).Warn("command for slot outside configured range dropped")
			continue
		}

		var err error
		switch c.Op {
		case reconcile.OpSet, reconcile.OpRefresh:
			err = d.backend.SetSlot(c.Slot, c.Entity)
		case reconcile.OpClear:
			err = d.backend.ClearSlot(c.Slot)
		}

		if err != nil {
			faults = append(faults, SlotFault{Slot: c.Slot, Op: c.Op.String(), Err: err})
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

// ReportHealth forwards loop health to backends that can show it.
// Backends without a health surface ignore it silently.
func (d *Driver) ReportHealth(s status.Snapshot) {
	sink, ok := d.backend.(HealthSink)
	if !ok {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := sink.WriteHealth(s); err != nil {
		d.log.WithError(err).Warn("health write failed")
	}
}

// Close releases the backend.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.backend.Close()
}
