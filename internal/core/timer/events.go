package timer

// State represents the current Timer phase.
type State int

const (
	StateIdle State = iota
	StateWork
	StateShortBreak
	StateLongBreak
	StatePaused
)

// String returns the wire name of the state, as exposed over D-Bus.
func (state State) String() string {
	switch state {
	case StateIdle:
		return "IDLE"
	case StateWork:
		return "WORK"
	case StateShortBreak:
		return "SHORT_BREAK"
	case StateLongBreak:
		return "LONG_BREAK"
	case StatePaused:
		return "PAUSED"
	default:
		return "UNKNOWN"
	}
}

// Running reports whether the state counts down.
func (state State) Running() bool {
	switch state {
	case StateWork, StateShortBreak, StateLongBreak:
		return true
	default:
		return false
	}
}

// IsBreak reports whether the state is a short or long break.
func (state State) IsBreak() bool {
	return state == StateShortBreak || state == StateLongBreak
}

// Callbacks are the Timer observers. Every field is optional.
type Callbacks struct {
	// OnState fires once per state transition, including into and out of PAUSED.
	OnState func(State)
	// OnTick fires every running second and whenever the remaining time changes
	// outside the regular cadence.
	OnTick func(minutes, seconds int)
	// OnSessionComplete fires when a phase runs out, or when work is skipped.
	OnSessionComplete func(completed State)
}
