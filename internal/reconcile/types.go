// internal/reconcile/types.go
package reconcile

import "github.com/groundctl/groundcontrol/internal/feed"

// Op is the kind of slot update.
type Op uint8

const (
	// OpSet writes an entity to a slot, overwriting whatever was there.
	OpSet Op = iota
	// OpClear empties a slot.
	OpClear
	// OpRefresh re-writes a slot whose occupant is unchanged but whose
	// display content (label, emergency flag) changed.
	OpRefresh
)

func (op Op) String() string {
	switch op {
	case OpSet:
		return "set"
	case OpClear:
		return "clear"
	case OpRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// Command targets exactly one slot. Within one reconcile cycle all
// commands target disjoint slots, so the driver may apply them in any
// order without ambiguity (it still applies them in the order given).
type Command struct {
	Op     Op
	Slot   int
	Entity feed.Entity // zero value for OpClear
}

// Slot is one physical indicator position.
type Slot struct {
	Occupied bool
	Entity   feed.Entity
}

// DisplayState is the set of indicator slots currently showing content.
// It is owned by the control loop and mutated only via the display
// driver; the reconciler treats it as read-only input.
type DisplayState struct {
	Slots []Slot
}

// NewDisplayState returns an all-clear state with n slots.
func NewDisplayState(n int) DisplayState {
	return DisplayState{Slots: make([]Slot, n)}
}

// Clone returns an independent copy.
func (s DisplayState) Clone() DisplayState {
	out := DisplayState{Slots: make([]Slot, len(s.Slots))}
	copy(out.Slots, s.Slots)
	return out
}

// Occupants returns the slot index for each displayed entity id.
func (s DisplayState) Occupants() map[string]int {
	m := make(map[string]int)
	for i, slot := range s.Slots {
		if slot.Occupied {
			m[slot.Entity.ID] = i
		}
	}
	return m
}
