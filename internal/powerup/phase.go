// Package powerup implements the timed bonus lifecycle as an explicit
// finite-state machine: a power-up spawns after a random delay, flies across
// the play field, and on a successful catch grants a temporary click
// multiplier.
package powerup

// Phase is a finite-state machine phase of the power-up lifecycle.
type Phase string

const (
	// PhaseDormant means nothing is on screen; a spawn timer may be armed.
	PhaseDormant Phase = "dormant"
	// PhaseVisible means the power-up is in flight and catchable.
	PhaseVisible Phase = "visible"
	// PhaseCaught means the player grabbed it and the machine is paused on
	// the rewarded-ad gate. Further catches are no-ops.
	PhaseCaught Phase = "caught"
	// PhaseActive means the click multiplier is running its countdown.
	PhaseActive Phase = "active"
	// PhaseExpired means the flight ended uncaught; the machine immediately
	// returns to dormant and reschedules.
	PhaseExpired Phase = "expired"
)

// validTransitions contains the permitted forward transitions of the
// lifecycle. Dormant is additionally reachable from anywhere for teardown.
var validTransitions = map[Phase][]Phase{
	PhaseDormant: {PhaseVisible},
	PhaseVisible: {PhaseCaught, PhaseExpired},
	PhaseCaught:  {PhaseActive},
	PhaseActive:  {PhaseDormant},
	PhaseExpired: {PhaseDormant},
}

// IsTransitionAllowed reports whether moving from one phase to another is valid.
func IsTransitionAllowed(from, to Phase) bool {
	if to == PhaseDormant {
		return true
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, phase := range allowed {
		if phase == to {
			return true
		}
	}

	return false
}

var transitionRecorder = func(from, to string) {}

// RegisterTransitionRecorder allows external packages to observe lifecycle
// transitions, e.g. for metrics.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}
