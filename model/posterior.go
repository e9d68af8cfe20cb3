package model

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// LogMu returns the linear predictor for unit i, including the log-expected
// offset.
func (s *Spec) LogMu(p *ParameterVector, i int) float64 {
	lm := math.Log(s.Data.Exp[i]) + p.Alpha + p.Theta[i] + p.Phi[i]
	for k, x := range s.Data.Cov[i] {
		lm += p.Beta[k] * x
	}
	if p.B != nil {
		lm += p.B[s.Data.Cat[i]]
	}
	return lm
}

// PointLogLik returns the Poisson log probability of unit i's observed count
// at the state's mean. A mean that overflows to +Inf (or underflows to zero
// with a positive count) yields -Inf, which the sampler treats as an
// automatic rejection.
func (s *Spec) PointLogLik(p *ParameterVector, i int) float64 {
	mu := math.Exp(s.LogMu(p, i))
	if mu <= 0 || math.IsInf(mu, 1) || math.IsNaN(mu) {
		return math.Inf(-1)
	}
	return distuv.Poisson{Lambda: mu}.LogProb(float64(s.Data.Obs[i]))
}

// LogLikelihood returns the total Poisson log likelihood of the state. Pure:
// no part of the spec or state is mutated.
func (s *Spec) LogLikelihood(p *ParameterVector) float64 {
	var ll float64
	for i := 0; i < s.Data.N(); i++ {
		ll += s.PointLogLik(p, i)
	}
	return ll
}

// LogPrior returns the total log prior density of the state, up to an
// additive constant. The intercept carries a flat prior and contributes
// nothing. States outside the support (non-positive precisions) get -Inf.
func (s *Spec) LogPrior(p *ParameterVector) float64 {
	if p.TauTheta <= 0 || p.TauPhi <= 0 || (p.B != nil && p.TauB <= 0) {
		return math.Inf(-1)
	}

	var lp float64

	betaDist := distuv.Normal{Mu: 0, Sigma: s.BetaSD}
	for _, b := range p.Beta {
		lp += betaDist.LogProb(b)
	}

	lp += distuv.Gamma{Alpha: s.TauTheta.Shape, Beta: s.TauTheta.Rate}.LogProb(p.TauTheta)
	lp += distuv.Gamma{Alpha: s.TauPhi.Shape, Beta: s.TauPhi.Rate}.LogProb(p.TauPhi)

	thetaDist := distuv.Normal{Mu: 0, Sigma: 1 / math.Sqrt(p.TauTheta)}
	for _, th := range p.Theta {
		lp += thetaDist.LogProb(th)
	}

	lp += s.Adj.LogPrior(p.Phi, p.TauPhi)

	if p.B != nil {
		lp += distuv.Gamma{Alpha: s.TauB.Shape, Beta: s.TauB.Rate}.LogProb(p.TauB)
		lp += s.RW2.LogPrior(p.B, p.TauB)
	}

	return lp
}

// LogPosterior is the sole quantity the sampler needs for acceptance ratios.
func (s *Spec) LogPosterior(p *ParameterVector) float64 {
	lp := s.LogPrior(p)
	if math.IsInf(lp, -1) {
		return lp
	}
	return lp + s.LogLikelihood(p)
}
