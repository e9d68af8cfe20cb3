package model

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// ParameterVector is the full state of one Markov chain: the scalar blocks
// (intercept, coefficients, precisions) and the per-unit random effect
// vectors. The sampler mutates one block at a time; everything else treats a
// ParameterVector as a value.
type ParameterVector struct {
	Alpha float64   // Intercept (flat prior)
	Beta  []float64 // Regression coefficients, one per covariate
	Theta []float64 // Unstructured per-unit effects
	Phi   []float64 // Spatial (ICAR) per-unit effects
	B     []float64 // Smooth exposure effects, nil without the RW2 term

	TauTheta float64 // Precision of theta
	TauPhi   float64 // Precision of the ICAR field
	TauB     float64 // Precision of the smooth term (unused when B is nil)
}

// InvalidParameterError reports a user-supplied value outside its support.
type InvalidParameterError struct {
	Name   string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("Invalid parameter %s: %s", e.Name, e.Reason)
}

// NewParameterVector returns the default initial state for a spec: all
// effects at zero and all precisions at one.
func NewParameterVector(s *Spec) *ParameterVector {
	p := &ParameterVector{
		Beta:     make([]float64, s.Data.K()),
		Theta:    make([]float64, s.Data.N()),
		Phi:      make([]float64, s.Data.N()),
		TauTheta: 1.0,
		TauPhi:   1.0,
		TauB:     1.0,
	}
	if s.Smooth() {
		p.B = make([]float64, s.RW2.N)
	}
	return p
}

// Clone returns a deep copy.
func (p *ParameterVector) Clone() *ParameterVector {
	cp := &ParameterVector{
		Alpha:    p.Alpha,
		Beta:     append([]float64(nil), p.Beta...),
		Theta:    append([]float64(nil), p.Theta...),
		Phi:      append([]float64(nil), p.Phi...),
		TauTheta: p.TauTheta,
		TauPhi:   p.TauPhi,
		TauB:     p.TauB,
	}
	if p.B != nil {
		cp.B = append([]float64(nil), p.B...)
	}
	return cp
}

// CheckInit validates a user-supplied initial state against the spec's
// support constraints. This runs once before the first iteration so bad
// inputs fail fast instead of poisoning a chain.
func (s *Spec) CheckInit(p *ParameterVector) error {
	bad := func(name, reason string) error {
		return errors.WithStack(&InvalidParameterError{Name: name, Reason: reason})
	}

	if len(p.Beta) != s.Data.K() {
		return bad("beta", fmt.Sprintf("length %d, want %d", len(p.Beta), s.Data.K()))
	}
	if len(p.Theta) != s.Data.N() {
		return bad("theta", fmt.Sprintf("length %d, want %d", len(p.Theta), s.Data.N()))
	}
	if len(p.Phi) != s.Data.N() {
		return bad("phi", fmt.Sprintf("length %d, want %d", len(p.Phi), s.Data.N()))
	}
	if s.Smooth() {
		if len(p.B) != s.RW2.N {
			return bad("b", fmt.Sprintf("length %d, want %d", len(p.B), s.RW2.N))
		}
	} else if p.B != nil {
		return bad("b", "set but the spec has no smooth term")
	}

	if p.TauTheta <= 0 || math.IsInf(p.TauTheta, 0) || math.IsNaN(p.TauTheta) {
		return bad("tau.theta", fmt.Sprintf("precision %f outside (0, inf)", p.TauTheta))
	}
	if p.TauPhi <= 0 || math.IsInf(p.TauPhi, 0) || math.IsNaN(p.TauPhi) {
		return bad("tau.phi", fmt.Sprintf("precision %f outside (0, inf)", p.TauPhi))
	}
	if s.Smooth() && (p.TauB <= 0 || math.IsInf(p.TauB, 0) || math.IsNaN(p.TauB)) {
		return bad("tau.b", fmt.Sprintf("precision %f outside (0, inf)", p.TauB))
	}

	all := [][]float64{p.Beta, p.Theta, p.Phi, p.B, {p.Alpha}}
	names := []string{"beta", "theta", "phi", "b", "alpha"}
	for gi, vals := range all {
		for _, v := range vals {
			if math.IsInf(v, 0) || math.IsNaN(v) {
				return bad(names[gi], "contains a non-finite value")
			}
		}
	}

	return nil
}

// ParamNames returns the canonical flattened parameter order used for chain
// output: alpha, beta, precisions, then the effect vectors.
func (s *Spec) ParamNames() []string {
	names := make([]string, 0, s.NumParams())

	names = append(names, "alpha")
	for k := 0; k < s.Data.K(); k++ {
		names = append(names, fmt.Sprintf("beta[%d]", k))
	}
	names = append(names, "tau.theta", "tau.phi")
	if s.Smooth() {
		names = append(names, "tau.b")
	}
	for i := 0; i < s.Data.N(); i++ {
		names = append(names, fmt.Sprintf("theta[%d]", i))
	}
	for i := 0; i < s.Data.N(); i++ {
		names = append(names, fmt.Sprintf("phi[%d]", i))
	}
	if s.Smooth() {
		for j := 0; j < s.RW2.N; j++ {
			names = append(names, fmt.Sprintf("b[%d]", j))
		}
	}

	return names
}

// NumParams returns the flattened parameter count.
func (s *Spec) NumParams() int {
	n := 1 + s.Data.K() + 2 + 2*s.Data.N()
	if s.Smooth() {
		n += 1 + s.RW2.N
	}
	return n
}

// Flatten writes the state into dst in ParamNames order, reusing dst when it
// has capacity.
func (p *ParameterVector) Flatten(dst []float64) []float64 {
	dst = dst[:0]

	dst = append(dst, p.Alpha)
	dst = append(dst, p.Beta...)
	dst = append(dst, p.TauTheta, p.TauPhi)
	if p.B != nil {
		dst = append(dst, p.TauB)
	}
	dst = append(dst, p.Theta...)
	dst = append(dst, p.Phi...)
	dst = append(dst, p.B...)

	return dst
}
