package sampler

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sparklabnyc/bymcmc/model"
)

// RunConfig holds everything a sampling run needs besides the model itself.
// It is plain data: construct one, optionally load it from YAML, and pass it
// to Run. Nothing here persists between runs.
type RunConfig struct {
	Iterations  int      `yaml:"iterations"` // Total iterations per chain, including burn-in
	BurnIn      int      `yaml:"burnin"`     // Leading iterations to discard
	Thin        int      `yaml:"thin"`       // Keep every Thin-th post-burn-in state
	Chains      int      `yaml:"chains"`     // Independent chain count
	Seed        int64    `yaml:"seed"`       // Base RNG seed; chain c uses Seed+c
	Seeds       []int64  `yaml:"seeds"`      // Optional explicit per-chain seeds (overrides Seed)
	Retain      []string `yaml:"retain"`     // Parameter names to keep; empty keeps all
	ReportEvery int      `yaml:"report"`     // Progress log period in iterations; 0 disables

	Priors *PriorConfig `yaml:"priors"` // Optional hyperparameter overrides
}

// PriorConfig overrides a model spec's prior hyperparameters from the run
// config file. Absent fields leave the spec's values alone.
type PriorConfig struct {
	BetaSD   float64           `yaml:"beta_sd"`
	TauTheta *model.GammaPrior `yaml:"tau_theta"`
	TauPhi   *model.GammaPrior `yaml:"tau_phi"`
	TauB     *model.GammaPrior `yaml:"tau_b"`
}

// DefaultRunConfig returns a config suitable for small models.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		Iterations: 5000,
		BurnIn:     2500,
		Thin:       1,
		Chains:     2,
		Seed:       1,
	}
}

// NewRunConfigFromBuffer parses a YAML run configuration over the defaults.
func NewRunConfigFromBuffer(data []byte) (*RunConfig, error) {
	cfg := DefaultRunConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "Could not PARSE run config")
	}

	if err := cfg.Check(); err != nil {
		return nil, errors.Wrap(err, "Parsed run config is not valid")
	}

	return cfg, nil
}

// NewRunConfigFromFile reads and parses a YAML run configuration.
func NewRunConfigFromFile(filename string) (*RunConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not READ run config from %s", filename)
	}
	return NewRunConfigFromBuffer(data)
}

// Check returns an error if there is a problem with the config.
func (c *RunConfig) Check() error {
	if c.Chains < 1 {
		return errors.Errorf("Chain count %d must be at least 1", c.Chains)
	}
	if c.BurnIn < 0 {
		return errors.Errorf("Burn-in %d cannot be negative", c.BurnIn)
	}
	if c.Iterations <= c.BurnIn {
		return errors.Errorf("Iterations %d must exceed burn-in %d", c.Iterations, c.BurnIn)
	}
	if c.Thin < 1 {
		return errors.Errorf("Thinning interval %d must be at least 1", c.Thin)
	}
	if len(c.Seeds) > 0 && len(c.Seeds) != c.Chains {
		return errors.Errorf("Got %d explicit seeds for %d chains", len(c.Seeds), c.Chains)
	}
	if c.ReportEvery < 0 {
		return errors.Errorf("Report period %d cannot be negative", c.ReportEvery)
	}
	if c.Priors != nil {
		if err := c.Priors.check(); err != nil {
			return err
		}
	}
	return nil
}

func (p *PriorConfig) check() error {
	if p.BetaSD < 0 {
		return errors.Errorf("Prior coefficient SD %f cannot be negative", p.BetaSD)
	}
	for _, g := range []*model.GammaPrior{p.TauTheta, p.TauPhi, p.TauB} {
		if g != nil {
			if err := g.Check(); err != nil {
				return err
			}
		}
	}
	return nil
}

// ApplyPriors copies any configured prior overrides onto the spec. Call it
// after building the spec and before sampling.
func (c *RunConfig) ApplyPriors(spec *model.Spec) {
	p := c.Priors
	if p == nil {
		return
	}
	if p.BetaSD > 0 {
		spec.BetaSD = p.BetaSD
	}
	if p.TauTheta != nil {
		spec.TauTheta = *p.TauTheta
	}
	if p.TauPhi != nil {
		spec.TauPhi = *p.TauPhi
	}
	if p.TauB != nil {
		spec.TauB = *p.TauB
	}
}

// ChainSeed returns the RNG seed for chain i.
func (c *RunConfig) ChainSeed(i int) int64 {
	if len(c.Seeds) > 0 {
		return c.Seeds[i]
	}
	return c.Seed + int64(i)
}

// RetainedPerChain returns how many states each chain will keep.
func (c *RunConfig) RetainedPerChain() int {
	post := c.Iterations - c.BurnIn
	return (post + c.Thin - 1) / c.Thin
}

// retains decides whether a flattened parameter name is kept. An entry
// matches exactly, or matches a whole vector when given without an index
// ("phi" keeps every phi[i]).
func (c *RunConfig) retains(name string) bool {
	if len(c.Retain) < 1 {
		return true
	}

	base := name
	if idx := strings.IndexByte(name, '['); idx >= 0 {
		base = name[:idx]
	}

	for _, r := range c.Retain {
		if r == name || r == base {
			return true
		}
	}
	return false
}
