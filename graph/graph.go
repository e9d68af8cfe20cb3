package graph

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// A Graph is the undirected, weighted neighbor structure an ICAR prior is
// defined over. Neighbor lists and per-unit weight sums are precomputed at
// construction since they never change across sampler iterations.
type Graph struct {
	N          int         // Number of units (nodes)
	Neighbors  [][]int     // Per-unit neighbor indices (0-based)
	Weights    [][]float64 // Edge weights, parallel to Neighbors
	WeightSum  []float64   // Per-unit total weight (the diagonal of the implied precision)
	Components int         // Connected component count
	NullDim    int         // Rank deficiency of the implied precision matrix
}

// DegenerateGraphError indicates a unit whose ICAR full conditional is
// undefined: no neighbors, or a total edge weight of zero.
type DegenerateGraphError struct {
	Unit int
}

func (e *DegenerateGraphError) Error() string {
	return fmt.Sprintf("Unit %d is degenerate: ICAR conditional is undefined", e.Unit)
}

// NewFromAdjacency builds a graph from the num/adj/weights triple used by
// standard CAR tooling: num[i] is unit i's neighbor count, adj is the
// flattened neighbor list, and weights is parallel to adj. Indices in adj are
// 0-based. The triple must describe a symmetric weight structure with no
// self-loops and no isolated units.
func NewFromAdjacency(num []int, adj []int, weights []float64) (*Graph, error) {
	n := len(num)
	if n < 1 {
		return nil, errors.Errorf("Empty adjacency: no units")
	}

	total := 0
	for i, c := range num {
		if c < 0 {
			return nil, errors.Errorf("Unit %d has negative neighbor count %d", i, c)
		}
		total += c
	}
	if len(adj) != total {
		return nil, errors.Errorf("Adjacency list has %d entries, num sums to %d", len(adj), total)
	}
	if len(weights) != total {
		return nil, errors.Errorf("Weight list has %d entries, num sums to %d", len(weights), total)
	}

	g := &Graph{
		N:         n,
		Neighbors: make([][]int, n),
		Weights:   make([][]float64, n),
		WeightSum: make([]float64, n),
	}

	pos := 0
	for i := 0; i < n; i++ {
		g.Neighbors[i] = make([]int, num[i])
		g.Weights[i] = make([]float64, num[i])
		for k := 0; k < num[i]; k++ {
			j := adj[pos]
			if j < 0 || j >= n {
				return nil, errors.Errorf("Unit %d lists neighbor %d outside 0..%d", i, j, n-1)
			}
			if j == i {
				return nil, errors.Errorf("Unit %d lists itself as a neighbor", i)
			}
			g.Neighbors[i][k] = j
			g.Weights[i][k] = weights[pos]
			g.WeightSum[i] += weights[pos]
			pos++
		}
	}

	if err := g.check(); err != nil {
		return nil, err
	}

	g.Components = g.componentCount()
	g.NullDim = g.Components

	return g, nil
}

// check validates symmetry, duplicate edges, and degeneracy. Degenerate units
// fail here, at construction, rather than producing NaN mid-run.
func (g *Graph) check() error {
	const eps = 1e-12

	type edge struct{ a, b int }
	seen := make(map[edge]float64)

	for i := 0; i < g.N; i++ {
		if len(g.Neighbors[i]) < 1 {
			return errors.WithStack(&DegenerateGraphError{Unit: i})
		}
		if math.Abs(g.WeightSum[i]) < eps {
			return errors.WithStack(&DegenerateGraphError{Unit: i})
		}

		local := make(map[int]bool)
		for k, j := range g.Neighbors[i] {
			if local[j] {
				return errors.Errorf("Unit %d lists neighbor %d twice", i, j)
			}
			local[j] = true
			seen[edge{i, j}] = g.Weights[i][k]
		}
	}

	for e, w := range seen {
		back, ok := seen[edge{e.b, e.a}]
		if !ok {
			return errors.Errorf("Edge %d->%d has no reverse entry", e.a, e.b)
		}
		if math.Abs(w-back) >= eps {
			return errors.Errorf("Asymmetric weights on edge %d--%d: %f vs %f", e.a, e.b, w, back)
		}
	}

	return nil
}

// componentCount runs a BFS over non-zero-weight edges.
func (g *Graph) componentCount() int {
	visited := make([]bool, g.N)
	count := 0
	queue := make([]int, 0, g.N)

	for start := 0; start < g.N; start++ {
		if visited[start] {
			continue
		}
		count++

		queue = append(queue[:0], start)
		visited[start] = true
		for len(queue) > 0 {
			i := queue[0]
			queue = queue[1:]
			for k, j := range g.Neighbors[i] {
				if !visited[j] && g.Weights[i][k] != 0 {
					visited[j] = true
					queue = append(queue, j)
				}
			}
		}
	}

	return count
}

// Rank is the rank of the implied precision matrix.
func (g *Graph) Rank() int {
	return g.N - g.NullDim
}

// Conditional returns the mean and total weight of the ICAR full conditional
// for unit i given the rest of x: x_i | x_-i ~ N(mean, 1/(tau*wsum)). Runs in
// O(degree of i).
func (g *Graph) Conditional(i int, x []float64) (mean float64, wsum float64) {
	var acc float64
	for k, j := range g.Neighbors[i] {
		acc += g.Weights[i][k] * x[j]
	}
	return acc / g.WeightSum[i], g.WeightSum[i]
}

// QuadForm computes x'Qx where Q is the graph Laplacian the ICAR prior is
// built on. For positive weights this equals the familiar pairwise form
// sum over edges of w_ij*(x_i-x_j)^2; the Laplacian form also covers the
// signed weights of the second-difference (RW2) graph.
func (g *Graph) QuadForm(x []float64) float64 {
	var qf float64
	for i := 0; i < g.N; i++ {
		row := g.WeightSum[i] * x[i]
		for k, j := range g.Neighbors[i] {
			row -= g.Weights[i][k] * x[j]
		}
		qf += x[i] * row
	}
	return qf
}

// LogPrior returns the ICAR log density of x at precision tau, up to an
// additive constant: 0.5*rank*log(tau) - 0.5*tau*x'Qx.
func (g *Graph) LogPrior(x []float64, tau float64) float64 {
	return 0.5*float64(g.Rank())*math.Log(tau) - 0.5*tau*g.QuadForm(x)
}
