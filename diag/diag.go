// Package diag computes posterior summaries, convergence diagnostics, and
// model-comparison scores from the retained draws of multiple independent
// chains. It never mutates its inputs: chains are a read-only view here.
package diag

import (
	"fmt"

	"github.com/pkg/errors"
)

// Chain is the minimal view of one chain's retained output: a column name
// list, the draw matrix (one row per retained iteration), and optionally the
// pointwise log likelihood matrix (one column per observation) that WAIC
// needs.
type Chain struct {
	Names  []string
	Draws  [][]float64
	LogLik [][]float64
}

// MinDraws is the fewest retained draws per chain that variance estimation
// tolerates.
const MinDraws = 2

// InsufficientSamplesError indicates a chain with too few retained draws for
// the requested computation.
type InsufficientSamplesError struct {
	Chain int
	Have  int
	Need  int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("Chain %d has %d retained draws, need at least %d", e.Chain, e.Have, e.Need)
}

// checkChains validates the shared-shape preconditions: at least two chains,
// identical name lists, equal lengths, and at least MinDraws rows each.
func checkChains(chains []*Chain) error {
	if len(chains) < 2 {
		return errors.Errorf("Need at least 2 chains for diagnostics, got %d", len(chains))
	}

	names := chains[0].Names
	rows := len(chains[0].Draws)

	for ci, ch := range chains {
		if len(ch.Draws) < MinDraws {
			return errors.WithStack(&InsufficientSamplesError{Chain: ci, Have: len(ch.Draws), Need: MinDraws})
		}
		if len(ch.Draws) != rows {
			return errors.Errorf("Chain %d has %d draws but chain 0 has %d", ci, len(ch.Draws), rows)
		}
		if len(ch.Names) != len(names) {
			return errors.Errorf("Chain %d names length %d != %d", ci, len(ch.Names), len(names))
		}
		for j, n := range ch.Names {
			if n != names[j] {
				return errors.Errorf("Chain %d parameter %d is %s, chain 0 has %s", ci, j, n, names[j])
			}
		}
	}

	return nil
}

// column extracts parameter column j from a chain's draw matrix.
func column(ch *Chain, j int) []float64 {
	col := make([]float64, len(ch.Draws))
	for i, row := range ch.Draws {
		col[i] = row[j]
	}
	return col
}
