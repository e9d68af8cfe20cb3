package sampler

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/sparklabnyc/bymcmc/model"
	"github.com/sparklabnyc/bymcmc/rand"
)

// Phase is a chain's position in its lifecycle.
type Phase int

// Chain lifecycle: states advance monotonically and Done is terminal.
const (
	Initializing Phase = iota
	Burning
	Sampling
	Done
)

func (p Phase) String() string {
	switch p {
	case Initializing:
		return "initializing"
	case Burning:
		return "burning-in"
	case Sampling:
		return "sampling"
	case Done:
		return "done"
	}
	return "unknown"
}

// Chain runs one Metropolis-within-Gibbs chain over a model spec. Chains
// share the immutable spec but own all of their mutable state, so multiple
// chains can run in parallel with no locking.
type Chain struct {
	ID    int
	Spec  *model.Spec
	Cfg   *RunConfig
	State *model.ParameterVector
	Gen   *rand.Generator
	Phase Phase

	// Retained output. Names gives the column order of Draws; LogLik holds
	// the per-unit Poisson log likelihood at each retained state, which is
	// what WAIC needs later.
	Names  []string
	Draws  [][]float64
	LogLik [][]float64

	Iterations int64 // Completed iterations
	Unstable   int64 // Proposals rejected for a non-finite log posterior

	steps    *blockSteps
	retain   []int // Indices into the flattened state for retained columns
	flat     []float64
	catUnits [][]int // Units per exposure category (smooth term only)
	log      *zap.SugaredLogger
}

// NewChain builds a chain ready to run. A nil init uses the spec's default
// initial state; a supplied init is validated and cloned, never mutated.
func NewChain(id int, spec *model.Spec, cfg *RunConfig, init *model.ParameterVector, log *zap.SugaredLogger) (*Chain, error) {
	if spec == nil {
		return nil, errors.Errorf("No model spec supplied")
	}
	if err := spec.Check(); err != nil {
		return nil, errors.Wrap(err, "Chain rejects invalid spec")
	}
	if cfg == nil {
		return nil, errors.Errorf("No run config supplied")
	}
	if err := cfg.Check(); err != nil {
		return nil, errors.Wrap(err, "Chain rejects invalid config")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	if init == nil {
		init = model.NewParameterVector(spec)
	} else {
		init = init.Clone()
	}
	if err := spec.CheckInit(init); err != nil {
		return nil, errors.Wrapf(err, "Chain %d rejects initial state", id)
	}

	gen, err := rand.NewGenerator(cfg.ChainSeed(id))
	if err != nil {
		return nil, errors.Wrapf(err, "Could not seed chain %d", id)
	}

	c := &Chain{
		ID:    id,
		Spec:  spec,
		Cfg:   cfg,
		State: init,
		Gen:   gen,
		Phase: Initializing,
		steps: newBlockSteps(spec.Data.K(), spec.Smooth()),
		log:   log,
	}

	allNames := spec.ParamNames()
	for i, name := range allNames {
		if cfg.retains(name) {
			c.Names = append(c.Names, name)
			c.retain = append(c.retain, i)
		}
	}
	if len(c.retain) < 1 {
		return nil, errors.Errorf("Retention list keeps no parameters")
	}

	if spec.Smooth() {
		c.catUnits = make([][]int, spec.RW2.N)
		for i, cat := range spec.Data.Cat {
			c.catUnits[cat] = append(c.catUnits[cat], i)
		}
	}

	keep := cfg.RetainedPerChain()
	c.Draws = make([][]float64, 0, keep)
	c.LogLik = make([][]float64, 0, keep)

	return c, nil
}

// Run executes the configured number of iterations. The context is checked
// once per iteration; on cancellation the chain's partial output must be
// discarded, so Run drops it and reports the context error.
func (c *Chain) Run(ctx context.Context) error {
	if c.Phase != Initializing {
		return errors.Errorf("Chain %d has already run (phase %v)", c.ID, c.Phase)
	}

	for i := 0; i < c.Cfg.Iterations; i++ {
		select {
		case <-ctx.Done():
			c.Draws = nil
			c.LogLik = nil
			c.Phase = Done
			return errors.Wrapf(ctx.Err(), "Chain %d cancelled at iteration %d", c.ID, i)
		default:
		}

		burning := i < c.Cfg.BurnIn
		if burning {
			c.Phase = Burning
		} else {
			c.Phase = Sampling
		}

		c.sweep(burning)
		c.Iterations++

		if !burning && (i-c.Cfg.BurnIn)%c.Cfg.Thin == 0 {
			c.record()
		}

		if c.Cfg.ReportEvery > 0 && (i+1)%c.Cfg.ReportEvery == 0 {
			c.log.Infow("chain progress",
				"chain", c.ID,
				"iteration", i+1,
				"phase", c.Phase.String(),
				"accept", c.AcceptanceRates(),
			)
		}
	}

	c.Phase = Done

	if c.Unstable > 0 {
		c.log.Warnw("numeric instability: proposals auto-rejected",
			"chain", c.ID,
			"count", c.Unstable,
		)
	}

	return nil
}

// record snapshots the retained columns of the current state plus the
// pointwise log likelihood.
func (c *Chain) record() {
	c.flat = c.State.Flatten(c.flat)

	row := make([]float64, len(c.retain))
	for k, idx := range c.retain {
		row[k] = c.flat[idx]
	}
	c.Draws = append(c.Draws, row)

	ll := make([]float64, c.Spec.Data.N())
	for i := range ll {
		ll[i] = c.Spec.PointLogLik(c.State, i)
	}
	c.LogLik = append(c.LogLik, ll)
}

// AcceptanceRates returns the windowed acceptance rate per proposal block.
func (c *Chain) AcceptanceRates() map[string]float64 {
	rates := map[string]float64{
		"alpha": c.steps.alpha.rate(),
		"theta": c.steps.theta.rate(),
		"phi":   c.steps.phi.rate(),
	}
	for k, t := range c.steps.beta {
		rates[c.Spec.ParamNames()[1+k]] = t.rate()
	}
	if c.steps.b != nil {
		rates["b"] = c.steps.b.rate()
	}
	return rates
}
