package diag

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary is the posterior report for one parameter. NonConvergence is
// advisory: a false Converged flag never suppresses the rest of the row,
// since a user may legitimately want to inspect a non-converged run.
type Summary struct {
	Name      string
	Mean      float64
	Median    float64
	Lower     float64 // Credible interval bounds at the requested level
	Upper     float64
	Rhat      float64
	ESS       float64
	Converged bool // Rhat at or below RhatThreshold
}

// Summarize computes per-parameter posterior summaries across chains. level
// is the central credible mass (0.95 gives the 2.5/97.5 percentile bounds).
// Input chains are never mutated.
func Summarize(chains []*Chain, level float64) ([]Summary, error) {
	if err := checkChains(chains); err != nil {
		return nil, err
	}

	tail := (1 - level) / 2
	names := chains[0].Names
	rows := len(chains[0].Draws)

	out := make([]Summary, len(names))
	pooled := make([]float64, 0, rows*len(chains))
	cols := make([][]float64, len(chains))

	for j, name := range names {
		pooled = pooled[:0]
		for ci, ch := range chains {
			cols[ci] = column(ch, j)
			pooled = append(pooled, cols[ci]...)
		}

		mean := stat.Mean(pooled, nil)
		sort.Float64s(pooled)

		rhat := Rhat(cols)

		out[j] = Summary{
			Name:      name,
			Mean:      mean,
			Median:    stat.Quantile(0.5, stat.Empirical, pooled, nil),
			Lower:     stat.Quantile(tail, stat.Empirical, pooled, nil),
			Upper:     stat.Quantile(1-tail, stat.Empirical, pooled, nil),
			Rhat:      rhat,
			ESS:       ESS(cols),
			Converged: rhat <= RhatThreshold,
		}
	}

	return out, nil
}
