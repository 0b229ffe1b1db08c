package alarm

// Output names a discrete actuator.
type Output uint8

const (
	// OutputVisual is the blinking indicator light.
	OutputVisual Output = iota + 1
	// OutputAudible is the buzzer.
	OutputAudible
)

// String returns the output name used in logs and on the serial bridge.
func (o Output) String() string {
	switch o {
	case OutputVisual:
		return "led"
	case OutputAudible:
		return "buzzer"
	default:
		return "unknown"
	}
}

// Tone is the period and duty of the audible output.
type Tone struct {
	// FrequencyHz is the tone frequency.
	FrequencyHz uint32
	// DutyPercent is the PWM duty.
	DutyPercent uint8
}

// Command switches one output on or off.
type Command struct {
	Output Output
	On     bool
	// Tone is set for audible on commands only.
	Tone Tone
}

// DisplayText is the two-line message shown on the device display.
type DisplayText struct {
	Line1 string
	Line2 string
}

var (
	// DisplayBooting is shown while the controller starts.
	DisplayBooting = DisplayText{Line1: "Iniciando", Line2: "sistema..."}
	// DisplayIdle is shown while the alarm is disabled.
	DisplayIdle = DisplayText{Line1: "Sistema", Line2: "em repouso"}
	// DisplayAlarm is shown while the alarm is armed.
	DisplayAlarm = DisplayText{Line1: "ALARME", Line2: "EVACUAR"}
	// DisplayStopped is shown after the controller shut down.
	DisplayStopped = DisplayText{Line1: "Sistema", Line2: "desligado"}
)
