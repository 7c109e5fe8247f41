package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"secretwheel/internal/domain"
)

func TestSpinState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from domain.SpinState
		to   domain.SpinState
		want bool
	}{
		{domain.SpinIdle, domain.SpinSpinning, true},
		{domain.SpinIdle, domain.SpinResolved, false},
		{domain.SpinSpinning, domain.SpinResolved, true},
		{domain.SpinSpinning, domain.SpinIdle, true},
		{domain.SpinSpinning, domain.SpinSpinning, false},
		{domain.SpinResolved, domain.SpinIdle, true},
		{domain.SpinResolved, domain.SpinSpinning, false},
		{domain.SpinState("BOGUS"), domain.SpinIdle, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}
