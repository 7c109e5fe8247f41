package domain

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Segment is one slice of the wheel. Index is positional, not an identity.
type Segment struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// SegmentReader is the read-only view of the segments the spin engine borrows.
type SegmentReader interface {
	Size() int
	LabelAt(index int) (string, error)
}

// SegmentSet is the ordered, append-only list of submitted labels
type SegmentSet struct {
	labels []string
}

// NewSegmentSet creates an empty segment set
func NewSegmentSet() *SegmentSet {
	return &SegmentSet{
		labels: make([]string, 0),
	}
}

// NormalizeLabel trims surrounding whitespace and puts the label in NFC form
func NormalizeLabel(label string) string {
	return norm.NFC.String(strings.TrimSpace(label))
}

// Append adds a label as the last segment. Blank labels return ErrInvalidLabel
// and leave the set unchanged.
func (s *SegmentSet) Append(label string) (Segment, error) {
	label = NormalizeLabel(label)
	if label == "" {
		return Segment{}, ErrInvalidLabel
	}

	return s.push(label), nil
}

// push stores a label that is already normalized and non-blank
func (s *SegmentSet) push(label string) Segment {
	s.labels = append(s.labels, label)
	return Segment{Index: len(s.labels) - 1, Label: label}
}

// Size returns the number of segments
func (s *SegmentSet) Size() int {
	return len(s.labels)
}

// LabelAt returns the label of the segment at index
func (s *SegmentSet) LabelAt(index int) (string, error) {
	if index < 0 || index >= len(s.labels) {
		return "", ErrSegmentOutOfRange
	}
	return s.labels[index], nil
}

// All returns a snapshot of the labels in order
func (s *SegmentSet) All() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// Segments returns a snapshot of the segments in order
func (s *SegmentSet) Segments() []Segment {
	out := make([]Segment, len(s.labels))
	for i, label := range s.labels {
		out[i] = Segment{Index: i, Label: label}
	}
	return out
}

// Reset removes every segment
func (s *SegmentSet) Reset() {
	s.labels = make([]string, 0)
}
