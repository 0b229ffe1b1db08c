package actuator

import (
	"time"

	domain "github.com/oshokin/alarm-ap/internal/domain/alarm"
)

// Config holds the cadence timings.
type Config struct {
	// ToggleInterval is the period between visual flips.
	ToggleInterval time.Duration
	// PulseDuration is how long the buzzer sounds after a flip on.
	// It must be shorter than ToggleInterval.
	PulseDuration time.Duration
	// Tone is sent with every audible on command.
	Tone domain.Tone
}

// Result is the outcome of one Advance call.
type Result struct {
	// Commands are the output changes to apply, in order. Usually empty.
	Commands []domain.Command
	// Display is the text for this tick.
	Display domain.DisplayText
}

// Machine advances the actuator cadence.
type Machine struct {
	cfg Config
}

// NewMachine creates a machine with the provided timings.
func NewMachine(cfg Config) *Machine {
	return &Machine{cfg: cfg}
}

// Off returns the commands that force every output off.
func Off() []domain.Command {
	return []domain.Command{
		{Output: domain.OutputVisual, On: false},
		{Output: domain.OutputAudible, On: false},
	}
}

// Advance moves the cadence to now.
func (m *Machine) Advance(now time.Time, st *domain.State) Result {
	var commands []domain.Command

	if st.OffPending || !st.Active {
		commands = m.disable(st)
	}

	if !st.Active {
		return Result{
			Commands: commands,
			Display:  domain.DisplayIdle,
		}
	}

	if st.Phase == domain.PhaseDisabled {
		st.Phase = domain.PhaseArmedWait
		st.NextToggle = now
	}

	if !now.Before(st.NextToggle) {
		commands = m.flip(now, st, commands)
	}

	if st.BeepActive && !now.Before(st.BeepEnd) {
		st.BeepActive = false
		commands = append(commands, domain.Command{Output: domain.OutputAudible, On: false})
	}

	return Result{
		Commands: commands,
		Display:  domain.DisplayAlarm,
	}
}

// disable forces the outputs off once after the alarm flag dropped.
func (m *Machine) disable(st *domain.State) []domain.Command {
	var commands []domain.Command

	if st.Phase.Armed() {
		commands = Off()
	}

	st.Phase = domain.PhaseDisabled
	st.BeepActive = false
	st.OffPending = false

	return commands
}

// flip toggles the visual output and starts or stops the audible pulse.
func (m *Machine) flip(now time.Time, st *domain.State, commands []domain.Command) []domain.Command {
	switch st.Phase {
	case domain.PhasePulseOn:
		st.Phase = domain.PhasePulseOff
		commands = append(commands, domain.Command{Output: domain.OutputVisual, On: false})

		if st.BeepActive {
			st.BeepActive = false
			commands = append(commands, domain.Command{Output: domain.OutputAudible, On: false})
		}
	default:
		st.Phase = domain.PhasePulseOn
		st.BeepActive = true
		st.BeepEnd = now.Add(m.cfg.PulseDuration)
		commands = append(commands,
			domain.Command{Output: domain.OutputVisual, On: true},
			domain.Command{Output: domain.OutputAudible, On: true, Tone: m.cfg.Tone},
		)
	}

	st.NextToggle = now.Add(m.cfg.ToggleInterval)

	return commands
}
