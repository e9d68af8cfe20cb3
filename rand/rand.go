package rand

import (
	"github.com/seehuhn/mt19937"
	exprand "golang.org/x/exp/rand"
)

// Source adapts the 64-bit Mersenne twister to the Source interface used by
// gonum's distributions. Every draw a chain makes (uniform, normal, gamma)
// comes from this one stream, so a chain is fully determined by its seed.
type Source struct {
	mt *mt19937.MT19937
}

// NewSource creates a seeded Mersenne twister source.
func NewSource(seed int64) *Source {
	mt := mt19937.New()
	mt.Seed(seed)
	return &Source{mt: mt}
}

// Uint64 implements rand.Source
func (s *Source) Uint64() uint64 {
	return s.mt.Uint64()
}

// Seed implements rand.Source
func (s *Source) Seed(seed uint64) {
	s.mt.Seed(int64(seed))
}

// A Generator wraps a Source with the convenience draws the sampler needs.
type Generator struct {
	src *Source
	rnd *exprand.Rand
}

// NewGenerator starts a new PRNG stream based on the given seed.
func NewGenerator(seed int64) (*Generator, error) {
	src := NewSource(seed)
	g := &Generator{
		src: src,
		rnd: exprand.New(src),
	}
	return g, nil
}

// Src exposes the underlying source so gonum distuv distributions can share
// the chain's stream.
func (g *Generator) Src() *Source {
	return g.src
}

// Float64 returns a uniform draw in [0, 1).
func (g *Generator) Float64() float64 {
	return g.rnd.Float64()
}

// NormFloat64 returns a standard normal draw.
func (g *Generator) NormFloat64() float64 {
	return g.rnd.NormFloat64()
}

// Intn returns a uniform draw from {0, ..., n-1}.
func (g *Generator) Intn(n int) int {
	return g.rnd.Intn(n)
}
