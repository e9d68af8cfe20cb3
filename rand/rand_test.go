package rand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratorDeterminism(t *testing.T) {
	assert := assert.New(t)

	g1, err := NewGenerator(42)
	assert.NoError(err)
	g2, err := NewGenerator(42)
	assert.NoError(err)

	for i := 0; i < 1000; i++ {
		assert.Equal(g1.Float64(), g2.Float64())
		assert.Equal(g1.NormFloat64(), g2.NormFloat64())
		assert.Equal(g1.Intn(100), g2.Intn(100))
	}
}

func TestGeneratorSeedsDiffer(t *testing.T) {
	assert := assert.New(t)

	g1, err := NewGenerator(1)
	assert.NoError(err)
	g2, err := NewGenerator(2)
	assert.NoError(err)

	same := 0
	for i := 0; i < 100; i++ {
		if g1.Float64() == g2.Float64() {
			same++
		}
	}
	assert.True(same < 100, "Different seeds produced identical streams")
}

func TestFloat64Range(t *testing.T) {
	assert := assert.New(t)

	g, err := NewGenerator(7)
	assert.NoError(err)

	for i := 0; i < 10000; i++ {
		f := g.Float64()
		assert.True(f >= 0.0 && f < 1.0, "Float64 out of range: %f", f)
	}
}
