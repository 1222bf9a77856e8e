// internal/reconcile/reconcile.go
package reconcile

import (
	"sort"

	"github.com/groundctl/groundcontrol/internal/feed"
)

// Reconcile compares the displayed state against a fresh snapshot and
// returns the minimal command batch that brings the display up to date.
// Pure function: no IO, no mutation of either input.
//
// Ranking: priority descending, ties broken by id ascending. The top
// len(prev.Slots) entities win slots; the rest are dropped silently
// (capacity overflow is steady state, not an error). Entities that
// already hold a slot keep it. New winners take the lowest free slot;
// a slot whose occupant departed may be handed straight to a new winner
// as a single SET, so every slot receives at most one command per cycle.
// An unchanged world yields zero commands.
func Reconcile(prev DisplayState, snap feed.Snapshot) []Command {
	capacity := len(prev.Slots)
	if capacity == 0 {
		return nil
	}

	winners := rank(snap.Entities, capacity)

	winnerByID := make(map[string]feed.Entity, len(winners))
	for _, e := range winners {
		winnerByID[e.ID] = e
	}

	var clears, refreshes []Command

	// Slots whose occupant survived keep their slot; slots whose
	// occupant lost (or vanished) become available for new winners.
	held := make(map[string]bool, capacity)
	var available []int

	for i, slot := range prev.Slots {
		if !slot.Occupied {
			available = append(available, i)
			continue
		}
		cur, stillIn := winnerByID[slot.Entity.ID]
		if !stillIn {
			available = append(available, i)
			continue
		}
		held[slot.Entity.ID] = true
		if cur.Label != slot.Entity.Label || cur.Emergency != slot.Entity.Emergency {
			refreshes = append(refreshes, Command{Op: OpRefresh, Slot: i, Entity: cur})
		}
	}

	// Hand out available slots to new winners, best priority first,
	// lowest slot index first. Slot order in `available` is already
	// ascending because prev.Slots was scanned in index order.
	var sets []Command
	next := 0
	for _, e := range winners {
		if held[e.ID] {
			continue
		}
		if next >= len(available) {
			break
		}
		sets = append(sets, Command{Op: OpSet, Slot: available[next], Entity: e})
		next++
	}

	// Whatever available slots were not reassigned must be emptied,
	// unless they were already empty.
	assigned := make(map[int]bool, len(sets))
	for _, c := range sets {
		assigned[c.Slot] = true
	}
	for _, i := range available {
		if !assigned[i] && prev.Slots[i].Occupied {
			clears = append(clears, Command{Op: OpClear, Slot: i})
		}
	}

	// CLEAR first, then REFRESH, then SET. Slots are disjoint so this
	// ordering is cosmetic, but it keeps logs and tests predictable.
	out := make([]Command, 0, len(clears)+len(refreshes)+len(sets))
	out = append(out, clears...)
	out = append(out, refreshes...)
	out = append(out, sets...)
	return out
}

// rank returns the top n entities by (priority desc, id asc).
// Duplicate ids keep their first occurrence only.
func rank(entities []feed.Entity, n int) []feed.Entity {
	seen := make(map[string]bool, len(entities))
	ranked := make([]feed.Entity, 0, len(entities))
	for _, e := range entities {
		if e.ID == "" || seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		ranked = append(ranked, e)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Priority != ranked[j].Priority {
			return ranked[i].Priority > ranked[j].Priority
		}
		return ranked[i].ID < ranked[j].ID
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
