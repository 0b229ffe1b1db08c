package alarm

import "time"

// Phase is the position of the actuator cadence.
type Phase uint8

const (
	// PhaseDisabled forces every output off.
	PhaseDisabled Phase = iota
	// PhaseArmedWait is armed with outputs off, waiting for the first flip.
	PhaseArmedWait
	// PhasePulseOn has the visual output on; the audible pulse may still be sounding.
	PhasePulseOn
	// PhasePulseOff has both outputs off until the next flip.
	PhasePulseOff
)

// String returns the phase name used in logs and status output.
func (p Phase) String() string {
	switch p {
	case PhaseDisabled:
		return "disabled"
	case PhaseArmedWait:
		return "armed_wait"
	case PhasePulseOn:
		return "pulse_on"
	case PhasePulseOff:
		return "pulse_off"
	default:
		return "unknown"
	}
}

// Armed reports whether the phase belongs to the armed cadence.
func (p Phase) Armed() bool {
	return p != PhaseDisabled
}

// State is the device-wide alarm state. It is owned by the coordinator and
// passed by reference to the content generator and the actuator machine.
//
// Invariant: BeepActive implies Active.
type State struct {
	// Gateway is the address used to build redirect URLs.
	Gateway string
	// Listening reports whether the control page accepts connections.
	Listening bool
	// Active is the authoritative alarm on/off flag.
	Active bool
	// Phase is where the actuator cadence currently is.
	Phase Phase
	// NextToggle is when the cadence flips next.
	NextToggle time.Time
	// BeepActive reports whether the audible pulse is sounding.
	BeepActive bool
	// BeepEnd is when the current audible pulse stops.
	BeepEnd time.Time
	// ChangedAt is when Active last changed.
	ChangedAt time.Time
	// OffPending is set when the alarm was disabled and the actuator has not
	// yet forced the outputs off. It survives a re-arm before the next tick.
	OffPending bool
}

// NewState returns a disabled state for the given gateway.
func NewState(gateway string, now time.Time) *State {
	return &State{
		Gateway:    gateway,
		Phase:      PhaseDisabled,
		NextToggle: now,
		ChangedAt:  now,
	}
}

// SetActive switches the alarm flag and reports whether it changed.
// Disabling clears the audible pulse at once and marks the outputs for a
// forced off on the next actuator tick, even if the alarm is armed again first.
func (s *State) SetActive(active bool, now time.Time) bool {
	if !active {
		s.BeepActive = false
	}

	if s.Active == active {
		return false
	}

	s.Active = active
	s.ChangedAt = now

	if !active {
		s.OffPending = true
	}

	return true
}
