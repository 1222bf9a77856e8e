// internal/feed/types.go
package feed

import "time"

// Entity is one observed aircraft (or other overhead object) in a snapshot.
type Entity struct {
	ID       string  // stable identifier, e.g. ICAO hex address
	Priority float64 // ranking value; higher wins a display slot
	Label    string  // optional display text, e.g. callsign
	Squawk   string  // transponder code, may be empty

	// Emergency marks a watchlist squawk. Emergency entities carry a
	// priority boost so they always outrank normal traffic.
	Emergency bool
}

// Snapshot is a point-in-time view of the sky.
// Immutable once fetched; superseded wholesale by the next poll.
type Snapshot struct {
	At       time.Time
	Entities []Entity
}
