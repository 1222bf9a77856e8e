// internal/display/types.go
package display

import (
	"fmt"

	"github.com/groundctl/groundcontrol/internal/feed"
	"github.com/groundctl/groundcontrol/internal/status"
)

// Backend is a bank of physical indicator slots.
// Implementations enforce their own write timeout; a write that does not
// acknowledge in time returns an error and the driver records a fault.
// Backends are not safe for concurrent use; the driver serializes access.
type Backend interface {
	SetSlot(slot int, e feed.Entity) error
	ClearSlot(slot int) error
	Close() error
}

// HealthSink is implemented by backends that can surface loop health on
// the hardware itself (e.g. the modbus panel's status block).
type HealthSink interface {
	WriteHealth(s status.Snapshot) error
}

// SlotFault records one failed slot write within a batch.
// A fault on one slot never blocks the rest of the batch.
type SlotFault struct {
	Slot int
	Op   string
	Err  error
}

func (f SlotFault) Error() string {
	return fmt.Sprintf("display: slot %d %s failed: %v", f.Slot, f.Op, f.Err)
}

func (f SlotFault) Unwrap() error { return f.Err }
