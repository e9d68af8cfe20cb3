package graph

import (
	"github.com/pkg/errors"
)

// NewRW2 builds the path graph encoding a random-walk-of-order-2 smoothness
// prior on a sequence of length j: the implied precision is tau*D'D where D
// is the (j-2) x j second-difference matrix. Expressed as a CAR structure,
// adjacent indices get weight 4, indices two apart get weight -1, and the
// first and last adjacent pairs get weight 2. Derived from the rows of D'D;
// the boundary rows differ from the interior because the first and last
// indices appear in fewer second differences.
func NewRW2(j int) (*Graph, error) {
	if j < 3 {
		return nil, errors.Errorf("RW2 prior needs at least 3 categories, got %d", j)
	}

	g := &Graph{
		N:         j,
		Neighbors: make([][]int, j),
		Weights:   make([][]float64, j),
		WeightSum: make([]float64, j),
	}

	add := func(a, b int, w float64) {
		g.Neighbors[a] = append(g.Neighbors[a], b)
		g.Weights[a] = append(g.Weights[a], w)
		g.WeightSum[a] += w
		g.Neighbors[b] = append(g.Neighbors[b], a)
		g.Weights[b] = append(g.Weights[b], w)
		g.WeightSum[b] += w
	}

	for i := 0; i < j-1; i++ {
		w := 4.0
		if i == 0 || i == j-2 {
			w = 2.0
		}
		add(i, i+1, w)
	}
	for i := 0; i < j-2; i++ {
		add(i, i+2, -1.0)
	}

	// The null space holds constant and linear sequences, so the rank is j-2
	// even though the path graph is connected.
	g.Components = 1
	g.NullDim = 2

	if err := g.check(); err != nil {
		return nil, err
	}

	return g, nil
}
