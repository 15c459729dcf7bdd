package powerup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransitionAllowed(t *testing.T) {
	tests := []struct {
		from    Phase
		to      Phase
		allowed bool
	}{
		{PhaseDormant, PhaseVisible, true},
		{PhaseVisible, PhaseCaught, true},
		{PhaseVisible, PhaseExpired, true},
		{PhaseCaught, PhaseActive, true},
		{PhaseActive, PhaseDormant, true},
		{PhaseExpired, PhaseDormant, true},

		{PhaseDormant, PhaseCaught, false},
		{PhaseDormant, PhaseActive, false},
		{PhaseExpired, PhaseCaught, false},
		{PhaseActive, PhaseVisible, false},
		{PhaseCaught, PhaseVisible, false},

		// teardown is always allowed
		{PhaseVisible, PhaseDormant, true},
		{PhaseCaught, PhaseDormant, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, IsTransitionAllowed(tt.from, tt.to))
		})
	}
}

func TestTransitionRecorder(t *testing.T) {
	var recorded [][2]string
	RegisterTransitionRecorder(func(from, to string) {
		recorded = append(recorded, [2]string{from, to})
	})
	t.Cleanup(func() { RegisterTransitionRecorder(nil) })

	transitionRecorder("dormant", "visible")
	assert.Equal(t, [][2]string{{"dormant", "visible"}}, recorded)
}
