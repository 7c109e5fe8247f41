package domain

// SpinState represents where the spin engine is in its cycle
type SpinState string

const (
	SpinIdle     SpinState = "IDLE"     // Ready to accept a spin
	SpinSpinning SpinState = "SPINNING" // Renderer is animating toward the target angle
	SpinResolved SpinState = "RESOLVED" // Result computed, about to return to idle
)

// String returns the string representation of the state
func (s SpinState) String() string {
	return string(s)
}

// CanTransitionTo checks if a transition from current state to target state is valid
func (s SpinState) CanTransitionTo(target SpinState) bool {
	validTransitions := map[SpinState][]SpinState{
		SpinIdle:     {SpinSpinning},
		SpinSpinning: {SpinResolved, SpinIdle}, // Idle directly on cancellation
		SpinResolved: {SpinIdle},
	}

	allowed, ok := validTransitions[s]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == target {
			return true
		}
	}
	return false
}
