package model

import (
	"github.com/pkg/errors"

	"github.com/sparklabnyc/bymcmc/graph"
)

// GammaPrior is the shape/rate pair for a precision parameter's prior.
type GammaPrior struct {
	Shape float64 `yaml:"shape"`
	Rate  float64 `yaml:"rate"`
}

// Check returns an error for non-positive hyperparameters.
func (g GammaPrior) Check() error {
	if g.Shape <= 0 || g.Rate <= 0 {
		return errors.Errorf("Gamma prior (%f, %f) must have positive shape and rate", g.Shape, g.Rate)
	}
	return nil
}

// A Spec is the declarative contract connecting observed data to the model:
// O_i ~ Poisson(mu_i) with
//
//	log mu_i = log E_i + alpha + sum_k beta_k*X_ik + theta_i + phi_i [+ b_cat(i)]
//
// where theta is an unstructured Normal(0, 1/tauTheta) effect, phi is an ICAR
// field over Adj, and b (optional) is a random-walk-of-order-2 smooth over
// exposure categories. A Spec holds data and hyperparameters only; it never
// executes anything and all of its evaluation methods are pure.
type Spec struct {
	Data *Dataset
	Adj  *graph.Graph
	RW2  *graph.Graph // non-nil enables the smooth exposure term

	BetaSD   float64 // Fixed prior std dev for the regression coefficients
	TauTheta GammaPrior
	TauPhi   GammaPrior
	TauB     GammaPrior
}

// NewSpec builds a model spec with the conventional default priors:
// Normal(0, 10^2) for each beta and Gamma(1, 0.01) for every precision.
func NewSpec(data *Dataset, adj *graph.Graph) (*Spec, error) {
	s := &Spec{
		Data:     data,
		Adj:      adj,
		BetaSD:   10.0,
		TauTheta: GammaPrior{Shape: 1.0, Rate: 0.01},
		TauPhi:   GammaPrior{Shape: 1.0, Rate: 0.01},
		TauB:     GammaPrior{Shape: 1.0, Rate: 0.01},
	}

	if err := s.Check(); err != nil {
		return nil, err
	}

	return s, nil
}

// EnableSmooth adds the RW2 exposure term. The dataset must carry a category
// column; the smooth's length is the number of categories.
func (s *Spec) EnableSmooth() error {
	if s.Data.Cat == nil {
		return errors.Errorf("Cannot enable the smooth term: dataset has no category column")
	}

	g, err := graph.NewRW2(s.Data.MaxCat())
	if err != nil {
		return errors.Wrap(err, "Cannot build RW2 structure for the smooth term")
	}
	s.RW2 = g

	return nil
}

// Check returns an error if there is a problem with the spec.
func (s *Spec) Check() error {
	if s.Data == nil {
		return errors.Errorf("Spec has no dataset")
	}
	if err := s.Data.Check(); err != nil {
		return errors.Wrap(err, "Spec has an invalid dataset")
	}

	if s.Adj == nil {
		return errors.Errorf("Spec has no neighbor graph")
	}
	if s.Adj.N != s.Data.N() {
		return errors.Errorf("Neighbor graph has %d units but dataset has %d", s.Adj.N, s.Data.N())
	}

	if s.RW2 != nil {
		if s.Data.Cat == nil {
			return errors.Errorf("Spec has a smooth term but the dataset has no category column")
		}
		if s.RW2.N != s.Data.MaxCat() {
			return errors.Errorf("Smooth term has %d categories but data uses %d", s.RW2.N, s.Data.MaxCat())
		}
	}

	if s.BetaSD <= 0 {
		return errors.Errorf("Coefficient prior SD %f must be positive", s.BetaSD)
	}
	for _, gp := range []GammaPrior{s.TauTheta, s.TauPhi, s.TauB} {
		if err := gp.Check(); err != nil {
			return err
		}
	}

	return nil
}

// Smooth returns true when the spec includes the RW2 exposure term.
func (s *Spec) Smooth() bool {
	return s.RW2 != nil
}
