package entropy

import "math/rand"

// Stream is a seeded uniform random stream. It is seeded exactly once and
// counts every value drawn, so a session's event outcomes can be replayed from
// (seed, draws).
type Stream struct {
	seed  int64
	rng   *rand.Rand
	draws uint64
}

// NewStream creates a stream seeded with seed.
func NewStream(seed int64) *Stream {
	return &Stream{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

// Float returns the next value in [0, 1).
func (s *Stream) Float() float64 {
	s.draws++
	return s.rng.Float64()
}

// Skip discards n values, advancing the stream as if they had been drawn.
func (s *Stream) Skip(n uint64) {
	for i := uint64(0); i < n; i++ {
		s.Float()
	}
}

// Seed returns the seed the stream was created with.
func (s *Stream) Seed() int64 { return s.seed }

// Draws returns how many values have been consumed.
func (s *Stream) Draws() uint64 { return s.draws }
