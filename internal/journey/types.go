package journey

// Screen is the journey-wide position of the state machine.
type Screen int

const (
	ScreenWelcome Screen = iota
	ScreenViewing
	ScreenAwaitingRiddle
	ScreenCelebration
)

func (s Screen) String() string {
	switch s {
	case ScreenWelcome:
		return "welcome"
	case ScreenViewing:
		return "viewing"
	case ScreenAwaitingRiddle:
		return "riddle"
	case ScreenCelebration:
		return "celebration"
	default:
		return "unknown"
	}
}

// State is a point-in-time copy of the controller's progression state.
// Chapter is only meaningful on the Viewing and AwaitingRiddle screens.
type State struct {
	Screen   Screen
	Chapter  int
	Unlocked []bool
	// Degraded is set once persistence has failed; unlocks made after
	// that live only in memory for the rest of the session.
	Degraded bool
}

// Outcome describes an accepted answer.
type Outcome struct {
	// Unlocked is the chapter opened by the answer, or -1 when the last
	// chapter was solved.
	Unlocked int
	Screen   Screen
	Chapter  int
}
