package alarm

import "time"

// Snapshot is a read-only copy of the controller status, safe to hand to other goroutines.
type Snapshot struct {
	// Timestamp is when the snapshot was taken.
	Timestamp time.Time
	// ChangedAt is when the alarm flag last changed.
	ChangedAt   time.Time
	Active      bool
	BeepActive  bool
	Listening   bool
	Phase       Phase
	Connections int
	Display     DisplayText
}

// Snapshot copies the state into a Snapshot.
func (s *State) Snapshot(now time.Time, connections int, display DisplayText) *Snapshot {
	return &Snapshot{
		Timestamp:   now,
		ChangedAt:   s.ChangedAt,
		Active:      s.Active,
		BeepActive:  s.BeepActive,
		Listening:   s.Listening,
		Phase:       s.Phase,
		Connections: connections,
		Display:     display,
	}
}
