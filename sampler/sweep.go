package sampler

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// sweep performs one full Metropolis-within-Gibbs iteration: every block is
// updated once, in a fixed order, then the improper fields are recentered and
// the conjugate precisions are redrawn. Step tuning happens only while
// burning.
func (c *Chain) sweep(burning bool) {
	c.updateAlpha(burning)
	for k := range c.State.Beta {
		c.updateBeta(k, burning)
	}
	c.updateTheta(burning)
	c.updatePhi(burning)
	if c.State.B != nil {
		c.updateB(burning)
	}

	c.recenter()
	c.gibbsPrecisions()
}

// metropolis runs one random-walk proposal against the given log conditional
// density (any terms not involving the value may be omitted). It returns the
// new value and whether the proposal was accepted. A proposal whose density
// comes back NaN or +Inf is numeric trouble: it is rejected and counted, per
// the rule that instability is recoverable, never fatal.
func (c *Chain) metropolis(cur float64, step float64, logDensity func(float64) float64) (float64, bool) {
	lpCur := logDensity(cur)
	prop := cur + step*c.Gen.NormFloat64()
	lpProp := logDensity(prop)

	if math.IsNaN(lpProp) || math.IsInf(lpProp, 1) {
		c.Unstable++
		return cur, false
	}

	delta := lpProp - lpCur
	if delta >= 0 || math.Log(c.Gen.Float64()) < delta {
		return prop, true
	}
	return cur, false
}

// updateAlpha: flat prior, so the conditional is just the likelihood.
func (c *Chain) updateAlpha(burning bool) {
	target := func(v float64) float64 {
		old := c.State.Alpha
		c.State.Alpha = v
		ll := c.Spec.LogLikelihood(c.State)
		c.State.Alpha = old
		return ll
	}

	val, acc := c.metropolis(c.State.Alpha, c.steps.alpha.step, target)
	c.State.Alpha = val
	c.steps.alpha.observe(acc, burning)
}

// updateBeta: likelihood plus the fixed Normal prior on the coefficient.
func (c *Chain) updateBeta(k int, burning bool) {
	prior := distuv.Normal{Mu: 0, Sigma: c.Spec.BetaSD}

	target := func(v float64) float64 {
		old := c.State.Beta[k]
		c.State.Beta[k] = v
		ll := c.Spec.LogLikelihood(c.State)
		c.State.Beta[k] = old
		return ll + prior.LogProb(v)
	}

	val, acc := c.metropolis(c.State.Beta[k], c.steps.beta[k].step, target)
	c.State.Beta[k] = val
	c.steps.beta[k].observe(acc, burning)
}

// updateTheta: each unstructured effect touches only its own unit's
// likelihood term, so the conditional is O(1).
func (c *Chain) updateTheta(burning bool) {
	prior := distuv.Normal{Mu: 0, Sigma: 1 / math.Sqrt(c.State.TauTheta)}

	for i := range c.State.Theta {
		target := func(v float64) float64 {
			old := c.State.Theta[i]
			c.State.Theta[i] = v
			pl := c.Spec.PointLogLik(c.State, i)
			c.State.Theta[i] = old
			return pl + prior.LogProb(v)
		}

		val, acc := c.metropolis(c.State.Theta[i], c.steps.theta.step, target)
		c.State.Theta[i] = val
		c.steps.theta.observe(acc, burning)
	}
}

// updatePhi: the ICAR full conditional for phi_i is Normal with mean the
// weighted neighbor average and precision tau*wsum. The Poisson likelihood
// breaks conjugacy, so the update is Metropolis with that conditional as the
// prior factor. O(degree) per unit.
func (c *Chain) updatePhi(burning bool) {
	g := c.Spec.Adj
	tau := c.State.TauPhi

	for i := range c.State.Phi {
		mean, wsum := g.Conditional(i, c.State.Phi)
		prior := distuv.Normal{Mu: mean, Sigma: 1 / math.Sqrt(tau*wsum)}

		target := func(v float64) float64 {
			old := c.State.Phi[i]
			c.State.Phi[i] = v
			pl := c.Spec.PointLogLik(c.State, i)
			c.State.Phi[i] = old
			return pl + prior.LogProb(v)
		}

		val, acc := c.metropolis(c.State.Phi[i], c.steps.phi.step, target)
		c.State.Phi[i] = val
		c.steps.phi.observe(acc, burning)
	}
}

// updateB: same scheme as phi over the RW2 structure, except the likelihood
// factor sums over every unit in the category.
func (c *Chain) updateB(burning bool) {
	g := c.Spec.RW2
	tau := c.State.TauB

	for j := range c.State.B {
		mean, wsum := g.Conditional(j, c.State.B)
		prior := distuv.Normal{Mu: mean, Sigma: 1 / math.Sqrt(tau*wsum)}

		target := func(v float64) float64 {
			old := c.State.B[j]
			c.State.B[j] = v
			var pl float64
			for _, i := range c.catUnits[j] {
				pl += c.Spec.PointLogLik(c.State, i)
			}
			c.State.B[j] = old
			return pl + prior.LogProb(v)
		}

		val, acc := c.metropolis(c.State.B[j], c.steps.b.step, target)
		c.State.B[j] = val
		c.steps.b.observe(acc, burning)
	}
}

// recenter enforces the sum-to-zero identifiability constraint on the
// improper fields after every sweep. The removed mean moves into the
// intercept, so the likelihood is unchanged and alpha stays identified.
func (c *Chain) recenter() {
	m := stat.Mean(c.State.Phi, nil)
	floats.AddConst(-m, c.State.Phi)
	c.State.Alpha += m

	if c.State.B != nil {
		m = stat.Mean(c.State.B, nil)
		floats.AddConst(-m, c.State.B)
		c.State.Alpha += m
	}
}

// gibbsPrecisions redraws each precision from its Gamma full conditional.
// These are exact conjugate draws; support constraints hold by construction
// since shape and rate stay positive.
func (c *Chain) gibbsPrecisions() {
	src := c.Gen.Src()

	n := float64(c.Spec.Data.N())
	ss := floats.Dot(c.State.Theta, c.State.Theta)
	c.State.TauTheta = distuv.Gamma{
		Alpha: c.Spec.TauTheta.Shape + 0.5*n,
		Beta:  c.Spec.TauTheta.Rate + 0.5*ss,
		Src:   src,
	}.Rand()

	qf := c.Spec.Adj.QuadForm(c.State.Phi)
	c.State.TauPhi = distuv.Gamma{
		Alpha: c.Spec.TauPhi.Shape + 0.5*float64(c.Spec.Adj.Rank()),
		Beta:  c.Spec.TauPhi.Rate + 0.5*qf,
		Src:   src,
	}.Rand()

	if c.State.B != nil {
		qf = c.Spec.RW2.QuadForm(c.State.B)
		c.State.TauB = distuv.Gamma{
			Alpha: c.Spec.TauB.Shape + 0.5*float64(c.Spec.RW2.Rank()),
			Beta:  c.Spec.TauB.Rate + 0.5*qf,
			Src:   src,
		}.Rand()
	}
}
