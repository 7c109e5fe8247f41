package app

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"secretwheel/internal/domain"
)

// pcgRNG adapts a math/rand/v2 generator to domain.RNG.
// Not safe for concurrent use; each session owns one.
type pcgRNG struct {
	r *rand.Rand
}

func (p *pcgRNG) Intn(n int) int {
	return p.r.IntN(n)
}

// NewRNG returns a uniform generator for one wheel. The stream is fully
// determined by (seed, stream), which keeps seeded runs reproducible.
func NewRNG(seed, stream uint64) domain.RNG {
	return &pcgRNG{r: rand.New(rand.NewPCG(seed, stream))}
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return binary.LittleEndian.Uint64(b[:]), nil
}
