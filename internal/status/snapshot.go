// internal/status/snapshot.go
package status

// Snapshot represents exactly what the loop is allowed to report.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health       uint16
	FeedFailures uint16
	SecondsStale uint16
}
