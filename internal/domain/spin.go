package domain

import (
	"time"

	"github.com/google/uuid"
)

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// SpinSettings holds the cosmetic parameters of a spin
type SpinSettings struct {
	MinRotations int           `json:"minRotations"`
	MaxRotations int           `json:"maxRotations"`
	Duration     time.Duration `json:"duration"`
}

// DefaultSpinSettings returns the default spin settings
func DefaultSpinSettings() SpinSettings {
	return SpinSettings{
		MinRotations: 2,
		MaxRotations: 4,
		Duration:     4 * time.Second,
	}
}

// SpinRequest is the frozen state of one spin, captured when it starts.
type SpinRequest struct {
	ID                 string        `json:"id"`
	WinningIndex       int           `json:"-"`
	Label              string        `json:"-"`
	SegmentCount       int           `json:"segmentCount"`
	FullRotations      int           `json:"fullRotations"`
	AnglePerSegment    float64       `json:"anglePerSegment"`
	TargetAngleDegrees float64       `json:"targetAngleDegrees"`
	Duration           time.Duration `json:"-"`
	StartedAt          time.Time     `json:"startedAt"`
}

// Directive returns the animation instructions for the renderer
func (r *SpinRequest) Directive() *SpinStartedPayload {
	return &SpinStartedPayload{
		SpinID:             r.ID,
		TargetAngleDegrees: r.TargetAngleDegrees,
		DurationMs:         r.Duration.Milliseconds(),
		SegmentCount:       r.SegmentCount,
	}
}

// SpinResult is the outcome of a completed spin
type SpinResult struct {
	SpinID        string    `json:"spinId"`
	ResolvedIndex int       `json:"resolvedIndex"`
	Label         string    `json:"label"`
	ResolvedAt    time.Time `json:"resolvedAt"`
}

// SpinEngine runs at most one spin at a time over a borrowed segment view.
//
// The winning index, segment count and label are frozen in the SpinRequest
// at StartSpin. Resolution only reads that request, so segments appended
// while the wheel is spinning cannot change the result.
type SpinEngine struct {
	segments SegmentReader
	rng      RNG
	settings SpinSettings
	state    SpinState
	current  *SpinRequest
}

// NewSpinEngine creates an idle engine
func NewSpinEngine(segments SegmentReader, rng RNG, settings SpinSettings) *SpinEngine {
	if settings.MaxRotations < settings.MinRotations {
		settings.MaxRotations = settings.MinRotations
	}

	return &SpinEngine{
		segments: segments,
		rng:      rng,
		settings: settings,
		state:    SpinIdle,
	}
}

// State returns the current engine state
func (e *SpinEngine) State() SpinState {
	return e.state
}

// Settings returns the engine's spin settings
func (e *SpinEngine) Settings() SpinSettings {
	return e.settings
}

// Current returns a copy of the in-flight spin, or nil when idle
func (e *SpinEngine) Current() *SpinRequest {
	if e.current == nil {
		return nil
	}
	req := *e.current
	return &req
}

// StartSpin samples a winner and computes the rotation that lands on it
func (e *SpinEngine) StartSpin() (*SpinRequest, error) {
	if e.state == SpinSpinning {
		return nil, ErrSpinInProgress
	}

	n := e.segments.Size()
	if n == 0 {
		return nil, ErrEmptySegmentSet
	}

	winningIndex := e.rng.Intn(n)
	fullRotations := e.settings.MinRotations + e.rng.Intn(e.settings.MaxRotations-e.settings.MinRotations+1)

	label, err := e.segments.LabelAt(winningIndex)
	if err != nil {
		return nil, err
	}

	req := &SpinRequest{
		ID:                 uuid.NewString(),
		WinningIndex:       winningIndex,
		Label:              label,
		SegmentCount:       n,
		FullRotations:      fullRotations,
		AnglePerSegment:    AnglePerSegment(n),
		TargetAngleDegrees: TargetAngle(n, winningIndex, fullRotations),
		Duration:           e.settings.Duration,
		StartedAt:          time.Now(),
	}

	if err := e.transition(SpinSpinning); err != nil {
		return nil, err
	}
	e.current = req

	return e.Current(), nil
}

// CompleteSpin resolves the in-flight spin once the animation has finished.
// An empty spinID matches whatever spin is in flight.
func (e *SpinEngine) CompleteSpin(spinID string) (*SpinResult, error) {
	req, err := e.inFlight(spinID)
	if err != nil {
		return nil, err
	}

	if err := e.transition(SpinResolved); err != nil {
		return nil, err
	}

	result := &SpinResult{
		SpinID:        req.ID,
		ResolvedIndex: ResolveIndex(req.TargetAngleDegrees, req.SegmentCount),
		Label:         req.Label,
		ResolvedAt:    time.Now(),
	}

	e.current = nil
	e.state = SpinIdle

	return result, nil
}

// CancelSpin abandons the in-flight spin without producing a result
func (e *SpinEngine) CancelSpin(spinID string) (*SpinRequest, error) {
	req, err := e.inFlight(spinID)
	if err != nil {
		return nil, err
	}

	if err := e.transition(SpinIdle); err != nil {
		return nil, err
	}
	e.current = nil

	return req, nil
}

// inFlight returns the current spin if spinID refers to it
func (e *SpinEngine) inFlight(spinID string) (*SpinRequest, error) {
	if e.state != SpinSpinning || e.current == nil {
		return nil, ErrNoSpinInProgress
	}
	if spinID != "" && spinID != e.current.ID {
		return nil, ErrStaleSpin
	}
	return e.current, nil
}

func (e *SpinEngine) transition(to SpinState) error {
	if !e.state.CanTransitionTo(to) {
		return ErrInvalidTransition
	}
	e.state = to
	return nil
}
