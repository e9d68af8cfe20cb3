package diag

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sparklabnyc/bymcmc/rand"
)

// logLikChain builds a chain whose pointwise log likelihoods are base[i]
// plus noise*eps per draw.
func logLikChain(gen *rand.Generator, draws int, base []float64, noise float64) *Chain {
	ch := &Chain{Names: []string{"x"}}
	for s := 0; s < draws; s++ {
		row := make([]float64, len(base))
		for i, b := range base {
			row[i] = b + noise*gen.NormFloat64()
		}
		ch.LogLik = append(ch.LogLik, row)
		ch.Draws = append(ch.Draws, []float64{0})
	}
	return ch
}

func TestWAICConstantLikelihood(t *testing.T) {
	assert := assert.New(t)

	// With zero posterior variance the penalty vanishes and
	// WAIC = -2 * sum(loglik)
	base := []float64{-1.0, -2.0, -0.5}
	gen, err := rand.NewGenerator(1)
	assert.NoError(err)

	c1 := logLikChain(gen, 100, base, 0)
	c2 := logLikChain(gen, 100, base, 0)

	w, err := ComputeWAIC([]*Chain{c1, c2})
	assert.NoError(err)
	assert.InDelta(-3.5, w.LPPD, 1e-10)
	assert.InDelta(0.0, w.PWaic, 1e-10)
	assert.InDelta(7.0, w.Value, 1e-10)
}

func TestWAICPenalty(t *testing.T) {
	assert := assert.New(t)

	gen, err := rand.NewGenerator(2)
	assert.NoError(err)

	base := []float64{-1.0, -1.0, -1.0, -1.0}
	c1 := logLikChain(gen, 2000, base, 0.5)
	c2 := logLikChain(gen, 2000, base, 0.5)

	w, err := ComputeWAIC([]*Chain{c1, c2})
	assert.NoError(err)

	// Noise in the pointwise log likelihood shows up as complexity
	assert.InDelta(4*0.25, w.PWaic, 0.15)
	assert.InDelta(w.Value, -2*(w.LPPD-w.PWaic), 1e-10)
}

func TestWAICNestedModelOrdering(t *testing.T) {
	assert := assert.New(t)

	gen, err := rand.NewGenerator(3)
	assert.NoError(err)

	// The richer model fits each observation better and no noisier; the
	// nested model's WAIC should come out higher (worse). Sanity with
	// headroom, not a strict law.
	n := 20
	baseFull := make([]float64, n)
	baseNested := make([]float64, n)
	for i := range baseFull {
		baseFull[i] = -1.0
		baseNested[i] = -1.6
	}

	full := []*Chain{
		logLikChain(gen, 1000, baseFull, 0.2),
		logLikChain(gen, 1000, baseFull, 0.2),
	}
	nested := []*Chain{
		logLikChain(gen, 1000, baseNested, 0.3),
		logLikChain(gen, 1000, baseNested, 0.3),
	}

	wFull, err := ComputeWAIC(full)
	assert.NoError(err)
	wNested, err := ComputeWAIC(nested)
	assert.NoError(err)

	assert.True(wNested.Value > wFull.Value-1.0,
		"Nested WAIC %f unexpectedly beats full WAIC %f", wNested.Value, wFull.Value)
}

func TestWAICErrors(t *testing.T) {
	assert := assert.New(t)

	gen, err := rand.NewGenerator(4)
	assert.NoError(err)

	// Missing log likelihoods
	c1 := normalChain(gen, 10, 0, 1)
	c2 := normalChain(gen, 10, 0, 1)
	_, err = ComputeWAIC([]*Chain{c1, c2})
	assert.Error(err)

	// Observation count mismatch
	a := logLikChain(gen, 10, []float64{-1, -1}, 0)
	b := logLikChain(gen, 10, []float64{-1, -1, -1}, 0)
	_, err = ComputeWAIC([]*Chain{a, b})
	assert.Error(err)
}

func TestLogMeanExpStability(t *testing.T) {
	assert := assert.New(t)

	// Values that would overflow a naive exp-sum
	x := []float64{-1000, -1000.5, -999.5}
	lme := logMeanExp(x)
	assert.False(math.IsInf(lme, 0))
	assert.False(math.IsNaN(lme))
	assert.True(lme < -999 && lme > -1001)

	assert.True(math.IsInf(logMeanExp([]float64{math.Inf(-1), math.Inf(-1)}), -1))
}
