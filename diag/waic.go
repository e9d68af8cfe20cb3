package diag

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WAIC is the Widely Applicable Information Criterion with its two additive
// components: the log pointwise predictive density and the effective
// complexity penalty. Lower values indicate better expected predictive fit.
type WAIC struct {
	LPPD  float64 // Sum over observations of log mean posterior likelihood
	PWaic float64 // Sum over observations of the posterior variance of the log likelihood
	Value float64 // -2*(LPPD - PWaic)
}

// ComputeWAIC pools the retained draws of all chains and computes WAIC from
// their stored pointwise log likelihoods.
func ComputeWAIC(chains []*Chain) (*WAIC, error) {
	if err := checkChains(chains); err != nil {
		return nil, err
	}

	nObs := 0
	for ci, ch := range chains {
		if len(ch.LogLik) != len(ch.Draws) {
			return nil, errors.Errorf("Chain %d has %d log-likelihood rows for %d draws", ci, len(ch.LogLik), len(ch.Draws))
		}
		if ci == 0 {
			nObs = len(ch.LogLik[0])
		} else if len(ch.LogLik[0]) != nObs {
			return nil, errors.Errorf("Chain %d covers %d observations, chain 0 covers %d", ci, len(ch.LogLik[0]), nObs)
		}
	}
	if nObs < 1 {
		return nil, errors.Errorf("Chains carry no pointwise log likelihoods")
	}

	// Column-major gather: all draws for one observation at a time
	var sDraws int
	for _, ch := range chains {
		sDraws += len(ch.LogLik)
	}

	w := &WAIC{}
	col := make([]float64, 0, sDraws)

	for i := 0; i < nObs; i++ {
		col = col[:0]
		for _, ch := range chains {
			for _, row := range ch.LogLik {
				col = append(col, row[i])
			}
		}

		w.LPPD += logMeanExp(col)
		w.PWaic += stat.Variance(col, nil)
	}

	w.Value = -2 * (w.LPPD - w.PWaic)
	return w, nil
}

// logMeanExp computes log((1/n)*sum(exp(x))) stably.
func logMeanExp(x []float64) float64 {
	max := floats.Max(x)
	if math.IsInf(max, -1) {
		return math.Inf(-1)
	}

	var acc float64
	for _, v := range x {
		acc += math.Exp(v - max)
	}
	return max + math.Log(acc/float64(len(x)))
}
