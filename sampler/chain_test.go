package sampler

import (
	"context"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/sparklabnyc/bymcmc/graph"
	"github.com/sparklabnyc/bymcmc/model"
)

// gridSpec is the 2x2 lattice scenario used throughout: O=[5,7,3,9] against
// E=5 everywhere, one standardized covariate.
func gridSpec() *model.Spec {
	num := []int{2, 2, 2, 2}
	adj := []int{1, 2, 0, 3, 0, 3, 1, 2}
	weights := []float64{1, 1, 1, 1, 1, 1, 1, 1}

	g, err := graph.NewFromAdjacency(num, adj, weights)
	if err != nil {
		panic(err)
	}

	d := &model.Dataset{
		ID:  []string{"nw", "ne", "sw", "se"},
		Obs: []int{5, 7, 3, 9},
		Exp: []float64{5, 5, 5, 5},
		Cov: [][]float64{{0.5}, {-0.5}, {0.5}, {-0.5}},
	}

	s, err := model.NewSpec(d, g)
	if err != nil {
		panic(err)
	}
	return s
}

func quickConfig() *RunConfig {
	return &RunConfig{
		Iterations: 300,
		BurnIn:     100,
		Thin:       1,
		Chains:     2,
		Seed:       42,
	}
}

func TestNewChainValidation(t *testing.T) {
	assert := assert.New(t)

	spec := gridSpec()
	cfg := quickConfig()

	_, err := NewChain(0, nil, cfg, nil, nil)
	assert.Error(err)

	_, err = NewChain(0, spec, nil, nil, nil)
	assert.Error(err)

	// Invalid initial state fails fast with the parameter error kind
	init := model.NewParameterVector(spec)
	init.TauPhi = -2.0
	_, err = NewChain(0, spec, cfg, init, nil)
	assert.Error(err)

	var ipe *model.InvalidParameterError
	assert.True(errors.As(err, &ipe))
	assert.Equal("tau.phi", ipe.Name)

	// Retention list that keeps nothing is an error
	bad := quickConfig()
	bad.Retain = []string{"nonexistent"}
	_, err = NewChain(0, spec, bad, nil, nil)
	assert.Error(err)
}

func TestChainInitNotMutated(t *testing.T) {
	assert := assert.New(t)

	spec := gridSpec()
	init := model.NewParameterVector(spec)
	init.Alpha = 0.8

	ch, err := NewChain(0, spec, quickConfig(), init, nil)
	assert.NoError(err)
	assert.NoError(ch.Run(context.Background()))

	// The caller's copy is untouched
	assert.InDelta(0.8, init.Alpha, 1e-12)
}

func TestChainLifecycle(t *testing.T) {
	assert := assert.New(t)

	ch, err := NewChain(0, gridSpec(), quickConfig(), nil, nil)
	assert.NoError(err)
	assert.Equal(Initializing, ch.Phase)

	assert.NoError(ch.Run(context.Background()))
	assert.Equal(Done, ch.Phase)
	assert.Equal(int64(300), ch.Iterations)
	assert.Len(ch.Draws, 200)
	assert.Len(ch.LogLik, 200)
	assert.Len(ch.LogLik[0], 4)

	// A chain cannot run twice
	assert.Error(ch.Run(context.Background()))
}

func TestChainDeterminism(t *testing.T) {
	assert := assert.New(t)

	run := func() [][]float64 {
		ch, err := NewChain(0, gridSpec(), quickConfig(), nil, nil)
		if err != nil {
			panic(err)
		}
		if err := ch.Run(context.Background()); err != nil {
			panic(err)
		}
		return ch.Draws
	}

	d1 := run()
	d2 := run()

	assert.Equal(len(d1), len(d2))
	for i := range d1 {
		for j := range d1[i] {
			assert.Equal(d1[i][j], d2[i][j], "draw mismatch at [%d][%d]", i, j)
		}
	}
}

func TestPhiSumToZero(t *testing.T) {
	assert := assert.New(t)

	cfg := quickConfig()
	cfg.Retain = []string{"phi"}

	ch, err := NewChain(0, gridSpec(), cfg, nil, nil)
	assert.NoError(err)
	assert.NoError(ch.Run(context.Background()))

	assert.Len(ch.Names, 4)
	for i, row := range ch.Draws {
		var sum float64
		for _, v := range row {
			sum += v
		}
		assert.InDelta(0.0, sum, 1e-9, "phi sum non-zero at retained draw %d", i)
	}
}

func TestGibbsPrecisionConjugacy(t *testing.T) {
	assert := assert.New(t)

	spec := gridSpec()
	ch, err := NewChain(0, spec, quickConfig(), nil, nil)
	assert.NoError(err)

	// Freeze theta and repeatedly redraw the precisions: the tau.theta draws
	// must average to the analytic Gamma posterior mean.
	theta := []float64{0.5, -0.25, 0.75, -1.0}
	copy(ch.State.Theta, theta)

	var ss float64
	for _, v := range theta {
		ss += v * v
	}

	shape := spec.TauTheta.Shape + 0.5*float64(4)
	rate := spec.TauTheta.Rate + 0.5*ss
	want := shape / rate

	const draws = 20000
	var sum float64
	for i := 0; i < draws; i++ {
		copy(ch.State.Theta, theta) // gibbsPrecisions never touches theta, but be explicit
		ch.gibbsPrecisions()
		sum += ch.State.TauTheta
	}
	got := sum / draws

	assert.InDelta(want, got, 0.05*want, "Empirical mean %f vs analytic %f", got, want)
}

func TestSmallGridPosterior(t *testing.T) {
	assert := assert.New(t)

	spec := gridSpec()
	cfg := &RunConfig{
		Iterations: 2000,
		BurnIn:     1000,
		Thin:       1,
		Chains:     2,
		Seed:       7,
		Retain:     []string{"alpha"},
	}

	chains, err := Run(context.Background(), spec, cfg, nil, nil)
	assert.NoError(err)
	assert.Len(chains, 2)

	var sum float64
	var count int
	for _, ch := range chains {
		for _, row := range ch.Draws {
			sum += row[0]
			count++
		}
	}
	mean := sum / float64(count)

	// O/E averages 1.2, so the intercept should sit near log(1.2)
	assert.InDelta(math.Log(1.2), mean, 0.35)
}
