package model

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/sparklabnyc/bymcmc/graph"
)

func testGraph() *graph.Graph {
	num := []int{2, 2, 2, 2}
	adj := []int{1, 2, 0, 3, 0, 3, 1, 2}
	weights := []float64{1, 1, 1, 1, 1, 1, 1, 1}

	g, err := graph.NewFromAdjacency(num, adj, weights)
	if err != nil {
		panic(err)
	}
	return g
}

func testSpec() *Spec {
	s, err := NewSpec(testDataset(), testGraph())
	if err != nil {
		panic(err)
	}
	return s
}

func TestNewParameterVector(t *testing.T) {
	assert := assert.New(t)

	s := testSpec()
	p := NewParameterVector(s)

	assert.NoError(s.CheckInit(p))
	assert.Len(p.Beta, 1)
	assert.Len(p.Theta, 4)
	assert.Len(p.Phi, 4)
	assert.Nil(p.B)
	assert.InDelta(1.0, p.TauTheta, 1e-12)
}

func TestCheckInitErrors(t *testing.T) {
	assert := assert.New(t)
	s := testSpec()

	chk := func(mod func(p *ParameterVector), wantName string) {
		p := NewParameterVector(s)
		mod(p)
		err := s.CheckInit(p)
		assert.Error(err)

		var ipe *InvalidParameterError
		assert.True(errors.As(err, &ipe), "expected InvalidParameterError, got %v", err)
		assert.Equal(wantName, ipe.Name)
	}

	chk(func(p *ParameterVector) { p.TauTheta = -1 }, "tau.theta")
	chk(func(p *ParameterVector) { p.TauPhi = 0 }, "tau.phi")
	chk(func(p *ParameterVector) { p.TauPhi = math.NaN() }, "tau.phi")
	chk(func(p *ParameterVector) { p.Beta = nil }, "beta")
	chk(func(p *ParameterVector) { p.Theta = p.Theta[:2] }, "theta")
	chk(func(p *ParameterVector) { p.Phi = append(p.Phi, 0) }, "phi")
	chk(func(p *ParameterVector) { p.B = []float64{0, 0} }, "b")
	chk(func(p *ParameterVector) { p.Alpha = math.Inf(1) }, "alpha")
	chk(func(p *ParameterVector) { p.Theta[1] = math.NaN() }, "theta")
}

func TestParamNamesAndFlatten(t *testing.T) {
	assert := assert.New(t)

	s := testSpec()
	names := s.ParamNames()
	assert.Equal(s.NumParams(), len(names))
	assert.Equal("alpha", names[0])
	assert.Equal("beta[0]", names[1])
	assert.Equal("tau.theta", names[2])
	assert.Equal("tau.phi", names[3])
	assert.Equal("theta[0]", names[4])
	assert.Equal("phi[0]", names[8])

	p := NewParameterVector(s)
	p.Alpha = 0.25
	p.Beta[0] = -1.5
	p.Theta[3] = 0.7
	p.Phi[0] = -0.3

	flat := p.Flatten(nil)
	assert.Equal(len(names), len(flat))
	assert.InDelta(0.25, flat[0], 1e-12)
	assert.InDelta(-1.5, flat[1], 1e-12)
	assert.InDelta(0.7, flat[7], 1e-12)
	assert.InDelta(-0.3, flat[8], 1e-12)

	// Flatten reuses the destination buffer
	flat2 := p.Flatten(flat)
	assert.Equal(flat, flat2)
}

func TestParamNamesWithSmooth(t *testing.T) {
	assert := assert.New(t)

	d := testDataset()
	d.Cat = []int{0, 1, 2, 3}
	s, err := NewSpec(d, testGraph())
	assert.NoError(err)
	assert.NoError(s.EnableSmooth())

	names := s.ParamNames()
	assert.Equal(s.NumParams(), len(names))
	assert.Contains(names, "tau.b")
	assert.Contains(names, "b[3]")

	p := NewParameterVector(s)
	assert.Len(p.B, 4)
	assert.Equal(len(names), len(p.Flatten(nil)))
}

func TestClone(t *testing.T) {
	assert := assert.New(t)

	s := testSpec()
	p := NewParameterVector(s)
	p.Alpha = 1.0
	p.Phi[2] = 0.5

	cp := p.Clone()
	cp.Phi[2] = -9.0
	cp.Alpha = 2.0

	assert.InDelta(1.0, p.Alpha, 1e-12)
	assert.InDelta(0.5, p.Phi[2], 1e-12)
}
