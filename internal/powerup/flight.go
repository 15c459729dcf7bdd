package powerup

import (
	"math"
	"time"
)

// Flight geometry in normalized screen coordinates. The power-up enters
// just below the bottom edge, ascends linearly past the top, and wobbles
// horizontally on a sine wave around its spawn column.
const (
	flightStartY    = 1.1
	flightEndY      = -0.1
	wobbleAmplitude = 0.08
	wobbleCycles    = 3.0
)

// Appearance fixes the random parameters of one flight so its position is a
// pure function of elapsed time.
type Appearance struct {
	StartX         float64
	SpawnedAt      time.Time
	FlightDuration time.Duration
}

// PositionAt returns the normalized (x, y) position at the given instant.
// ok is false once the flight duration has elapsed.
func (a Appearance) PositionAt(now time.Time) (x, y float64, ok bool) {
	if a.FlightDuration <= 0 {
		return 0, 0, false
	}

	elapsed := now.Sub(a.SpawnedAt)
	if elapsed < 0 || elapsed > a.FlightDuration {
		return 0, 0, false
	}

	progress := float64(elapsed) / float64(a.FlightDuration)
	y = flightStartY + (flightEndY-flightStartY)*progress
	x = a.StartX + wobbleAmplitude*math.Sin(2*math.Pi*wobbleCycles*progress)

	return x, y, true
}
