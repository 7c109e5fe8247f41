package domain

import (
	"time"
	"unicode/utf8"
)

// WheelSettings holds configurable wheel parameters
type WheelSettings struct {
	Spin           SpinSettings `json:"spin"`
	MaxSegments    int          `json:"maxSegments"`
	MaxLabelLength int          `json:"maxLabelLength"`
	HistorySize    int          `json:"historySize"`
}

// DefaultWheelSettings returns the default wheel settings
func DefaultWheelSettings() WheelSettings {
	return WheelSettings{
		Spin:           DefaultSpinSettings(),
		MaxSegments:    64,
		MaxLabelLength: 80,
		HistorySize:    20,
	}
}

// Wheel is a room's wheel: its segments, its spin engine and recent results
type Wheel struct {
	ID        string        `json:"id"`
	Segments  *SegmentSet   `json:"-"`
	Engine    *SpinEngine   `json:"-"`
	History   []*SpinResult `json:"history"`
	Settings  WheelSettings `json:"settings"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// NewWheel creates an empty wheel with the given ID
func NewWheel(id string, settings WheelSettings, rng RNG) *Wheel {
	segments := NewSegmentSet()
	now := time.Now()

	return &Wheel{
		ID:        id,
		Segments:  segments,
		Engine:    NewSpinEngine(segments, rng, settings.Spin),
		History:   make([]*SpinResult, 0),
		Settings:  settings,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddLabel appends a secret to the wheel. Limits apply to the normalized label.
func (w *Wheel) AddLabel(label string) (Segment, error) {
	label = NormalizeLabel(label)
	if label == "" {
		return Segment{}, ErrInvalidLabel
	}

	if w.Settings.MaxLabelLength > 0 && utf8.RuneCountInString(label) > w.Settings.MaxLabelLength {
		return Segment{}, ErrLabelTooLong
	}

	if w.Settings.MaxSegments > 0 && w.Segments.Size() >= w.Settings.MaxSegments {
		return Segment{}, ErrWheelFull
	}

	segment := w.Segments.push(label)

	w.touch()
	return segment, nil
}

// Reset clears all segments. Not allowed while the wheel is spinning.
func (w *Wheel) Reset() error {
	if w.Engine.State() == SpinSpinning {
		return ErrSpinInProgress
	}

	w.Segments.Reset()
	w.touch()
	return nil
}

// StartSpin starts a spin on the current segments
func (w *Wheel) StartSpin() (*SpinRequest, error) {
	req, err := w.Engine.StartSpin()
	if err != nil {
		return nil, err
	}

	w.touch()
	return req, nil
}

// CompleteSpin resolves the current spin and records the result
func (w *Wheel) CompleteSpin(spinID string) (*SpinResult, error) {
	result, err := w.Engine.CompleteSpin(spinID)
	if err != nil {
		return nil, err
	}

	w.History = append(w.History, result)
	if w.Settings.HistorySize > 0 && len(w.History) > w.Settings.HistorySize {
		w.History = w.History[len(w.History)-w.Settings.HistorySize:]
	}

	w.touch()
	return result, nil
}

// CancelSpin abandons the current spin
func (w *Wheel) CancelSpin(spinID string) (*SpinRequest, error) {
	req, err := w.Engine.CancelSpin(spinID)
	if err != nil {
		return nil, err
	}

	w.touch()
	return req, nil
}

// IsSpinning returns true while a spin is in flight
func (w *Wheel) IsSpinning() bool {
	return w.Engine.State() == SpinSpinning
}

// LastResult returns the most recent spin result, or nil
func (w *Wheel) LastResult() *SpinResult {
	if len(w.History) == 0 {
		return nil
	}
	return w.History[len(w.History)-1]
}

// GetState returns the wheel state for broadcasting
func (w *Wheel) GetState() *WheelStatePayload {
	state := &WheelStatePayload{
		Segments:  w.Segments.Segments(),
		SpinState: w.Engine.State(),
		History:   make([]*SpinResult, len(w.History)),
	}
	copy(state.History, w.History)

	if req := w.Engine.Current(); req != nil {
		state.CurrentSpin = req.Directive()
	}

	return state
}

func (w *Wheel) touch() {
	w.UpdatedAt = time.Now()
}
