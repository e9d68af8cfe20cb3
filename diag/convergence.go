package diag

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// RhatThreshold is the potential scale reduction factor above which a
// parameter is flagged as not converged.
const RhatThreshold = 1.1

// Rhat computes the Gelman-Rubin potential scale reduction factor for one
// parameter across chains: the ratio of the pooled variance estimate to the
// mean within-chain variance. Values near 1 indicate the chains agree;
// values above RhatThreshold indicate they have not mixed.
func Rhat(cols [][]float64) float64 {
	m := float64(len(cols))
	n := float64(len(cols[0]))

	means := make([]float64, len(cols))
	var w float64
	for i, col := range cols {
		means[i] = stat.Mean(col, nil)
		w += stat.Variance(col, nil)
	}
	w /= m

	// B/n is the sample variance of the chain means
	bOverN := stat.Variance(means, nil)

	const eps = 1e-12
	if w < eps {
		if bOverN < eps {
			return 1.0 // all chains constant and identical
		}
		return math.Inf(1)
	}

	varPlus := (n-1)/n*w + bOverN
	return math.Sqrt(varPlus / w)
}

// ESS estimates the effective sample size for one parameter across chains,
// discounting within-chain autocorrelation. Autocorrelations are averaged
// across chains and summed with Geyer's initial positive sequence rule:
// stop at the first adjacent-lag pair whose sum goes non-positive.
func ESS(cols [][]float64) float64 {
	m := len(cols)
	n := len(cols[0])
	total := float64(m * n)

	if n < 4 {
		return total
	}

	maxLag := n / 2
	rho := make([]float64, maxLag)
	valid := false
	for _, col := range cols {
		mean := stat.Mean(col, nil)
		c0 := autocovariance(col, mean, 0)
		if c0 <= 0 {
			continue // constant chain contributes nothing
		}
		valid = true
		for lag := 1; lag < maxLag; lag++ {
			rho[lag] += autocovariance(col, mean, lag) / c0
		}
	}
	if !valid {
		return total
	}
	for lag := 1; lag < maxLag; lag++ {
		rho[lag] /= float64(m)
	}

	// Sum pairs while they stay positive
	var acSum float64
	for lag := 1; lag+1 < maxLag; lag += 2 {
		pair := rho[lag] + rho[lag+1]
		if pair <= 0 {
			break
		}
		acSum += pair
	}

	ess := total / (1 + 2*acSum)
	if ess > total {
		ess = total
	}
	return ess
}

// autocovariance at the given lag, using the biased 1/n normalization that
// keeps the spectral sum positive definite.
func autocovariance(x []float64, mean float64, lag int) float64 {
	n := len(x)
	var acc float64
	for i := 0; i+lag < n; i++ {
		acc += (x[i] - mean) * (x[i+lag] - mean)
	}
	return acc / float64(n)
}
