package domain_test

import (
	"math/rand/v2"

	"secretwheel/internal/domain"
)

// sequenceRNG returns values from a pre-set sequence.
type sequenceRNG struct {
	values []int
	idx    int
}

func (r *sequenceRNG) Intn(n int) int {
	v := r.values[r.idx%len(r.values)] % n
	r.idx++
	return v
}

// seededRNG is a reproducible uniform source.
type seededRNG struct {
	r *rand.Rand
}

func newSeededRNG(seed uint64) *seededRNG {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededRNG) Intn(n int) int {
	return s.r.IntN(n)
}

func segmentSetOf(labels ...string) *domain.SegmentSet {
	set := domain.NewSegmentSet()
	for _, l := range labels {
		set.Append(l)
	}
	return set
}
