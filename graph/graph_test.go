package graph

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// grid2x2 is the 2x2 lattice with rook adjacency: every unit has exactly 2
// neighbors with weight 1.
func grid2x2() (num []int, adj []int, weights []float64) {
	num = []int{2, 2, 2, 2}
	adj = []int{
		1, 2,
		0, 3,
		0, 3,
		1, 2,
	}
	weights = []float64{1, 1, 1, 1, 1, 1, 1, 1}
	return
}

func TestNewFromAdjacency(t *testing.T) {
	assert := assert.New(t)

	g, err := NewFromAdjacency(grid2x2())
	assert.NoError(err)
	assert.Equal(4, g.N)
	assert.Equal(1, g.Components)
	assert.Equal(3, g.Rank())
	assert.InDelta(2.0, g.WeightSum[0], 1e-12)
	assert.Equal([]int{1, 2}, g.Neighbors[0])
}

func TestAdjacencyErrors(t *testing.T) {
	assert := assert.New(t)

	var err error

	// Empty
	_, err = NewFromAdjacency([]int{}, []int{}, []float64{})
	assert.Error(err)

	// Count/list mismatch
	_, err = NewFromAdjacency([]int{2, 1}, []int{1, 0}, []float64{1, 1})
	assert.Error(err)

	// Self loop
	_, err = NewFromAdjacency([]int{2, 1}, []int{0, 1, 0}, []float64{1, 1, 1})
	assert.Error(err)

	// Neighbor out of range
	_, err = NewFromAdjacency([]int{1, 1}, []int{1, 5}, []float64{1, 1})
	assert.Error(err)

	// Asymmetric weights
	_, err = NewFromAdjacency([]int{1, 1}, []int{1, 0}, []float64{1, 2})
	assert.Error(err)

	// Duplicate neighbor
	_, err = NewFromAdjacency([]int{2, 2}, []int{1, 1, 0, 0}, []float64{1, 1, 1, 1})
	assert.Error(err)
}

func TestDegenerateGraph(t *testing.T) {
	assert := assert.New(t)

	// Unit 2 is isolated
	num := []int{1, 1, 0}
	adj := []int{1, 0}
	weights := []float64{1, 1}

	g, err := NewFromAdjacency(num, adj, weights)
	assert.Nil(g)
	assert.Error(err)

	var dge *DegenerateGraphError
	assert.True(errors.As(err, &dge))
	assert.Equal(2, dge.Unit)
}

func TestDisconnectedComponents(t *testing.T) {
	assert := assert.New(t)

	// Two disjoint pairs: 0--1 and 2--3
	num := []int{1, 1, 1, 1}
	adj := []int{1, 0, 3, 2}
	weights := []float64{1, 1, 1, 1}

	g, err := NewFromAdjacency(num, adj, weights)
	assert.NoError(err)
	assert.Equal(2, g.Components)
	assert.Equal(2, g.NullDim)
	assert.Equal(2, g.Rank())
}

func TestConditional(t *testing.T) {
	assert := assert.New(t)

	g, err := NewFromAdjacency(grid2x2())
	assert.NoError(err)

	x := []float64{1, 2, 3, 4}

	mean, wsum := g.Conditional(0, x)
	assert.InDelta(2.5, mean, 1e-12)
	assert.InDelta(2.0, wsum, 1e-12)

	mean, wsum = g.Conditional(3, x)
	assert.InDelta(2.5, mean, 1e-12)
	assert.InDelta(2.0, wsum, 1e-12)
}

func TestQuadFormMatchesPairwise(t *testing.T) {
	assert := assert.New(t)

	g, err := NewFromAdjacency(grid2x2())
	assert.NoError(err)

	x := []float64{1, 2, 3, 4}

	// Edges are (0,1), (0,2), (1,3), (2,3), all weight 1
	want := 1.0 + 4.0 + 4.0 + 1.0
	assert.InDelta(want, g.QuadForm(x), 1e-12)

	// Constant vectors are in the null space
	assert.InDelta(0.0, g.QuadForm([]float64{3, 3, 3, 3}), 1e-12)
}

func TestLogPrior(t *testing.T) {
	assert := assert.New(t)

	g, err := NewFromAdjacency(grid2x2())
	assert.NoError(err)

	x := []float64{0.5, -0.5, -0.5, 0.5}

	// Rougher fields get lower density at the same precision
	smooth := g.LogPrior([]float64{0.1, -0.1, -0.1, 0.1}, 1.0)
	rough := g.LogPrior(x, 1.0)
	assert.True(smooth > rough)
}
