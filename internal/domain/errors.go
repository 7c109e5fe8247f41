package domain

import "errors"

// Domain errors
var (
	ErrWheelNotFound     = errors.New("wheel not found")
	ErrWheelFull         = errors.New("wheel has reached its segment limit")
	ErrInvalidLabel      = errors.New("label cannot be blank")
	ErrLabelTooLong      = errors.New("label is too long")
	ErrSegmentOutOfRange = errors.New("segment index out of range")
	ErrEmptySegmentSet   = errors.New("wheel has no segments to spin")
	ErrSpinInProgress    = errors.New("a spin is already in progress")
	ErrNoSpinInProgress  = errors.New("no spin in progress")
	ErrStaleSpin         = errors.New("spin id does not match the current spin")
	ErrInvalidTransition = errors.New("invalid spin state transition")
)

// RejectReason is the wire reason attached to a SPIN_REJECTED event.
type RejectReason string

const (
	RejectEmptySegmentSet RejectReason = "EMPTY_SEGMENT_SET"
	RejectSpinInProgress  RejectReason = "SPIN_IN_PROGRESS"
)

// RejectionReason maps a StartSpin error to its rejection reason. The second
// return value is false for errors that are not spin rejections.
func RejectionReason(err error) (RejectReason, bool) {
	switch {
	case errors.Is(err, ErrEmptySegmentSet):
		return RejectEmptySegmentSet, true
	case errors.Is(err, ErrSpinInProgress):
		return RejectSpinInProgress, true
	default:
		return "", false
	}
}
