package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// UnitName makes a display label for an unnamed areal unit.
func UnitName(i int) string {
	return fmt.Sprintf("u%d", i)
}

// Dataset holds the observed areal-unit table: one observed count, one
// expected count (the Poisson offset), and a fixed-length covariate vector
// per unit. A Dataset is immutable once constructed; chains share one
// read-only instance.
type Dataset struct {
	ID  []string    // Unit identifiers (used only for reporting)
	Obs []int       // Observed counts, non-negative
	Exp []float64   // Expected counts, strictly positive
	Cov [][]float64 // Covariate rows, N x K (K may be 0)
	Cat []int       // Exposure category per unit (0-based), nil when unused
}

// N returns the number of areal units.
func (d *Dataset) N() int {
	return len(d.Obs)
}

// K returns the number of covariates.
func (d *Dataset) K() int {
	if len(d.Cov) < 1 {
		return 0
	}
	return len(d.Cov[0])
}

// Check returns an error if there is a problem with the dataset.
func (d *Dataset) Check() error {
	n := d.N()
	if n < 1 {
		return errors.Errorf("Dataset is empty")
	}
	if len(d.ID) != n || len(d.Exp) != n || len(d.Cov) != n {
		return errors.Errorf("Dataset column lengths disagree: id=%d obs=%d exp=%d cov=%d",
			len(d.ID), n, len(d.Exp), len(d.Cov))
	}
	if d.Cat != nil && len(d.Cat) != n {
		return errors.Errorf("Category column length %d != %d units", len(d.Cat), n)
	}

	k := d.K()
	for i := 0; i < n; i++ {
		if d.Obs[i] < 0 {
			return errors.Errorf("Unit %s has negative observed count %d", d.ID[i], d.Obs[i])
		}
		if d.Exp[i] <= 0 {
			return errors.Errorf("Unit %s has non-positive expected count %f", d.ID[i], d.Exp[i])
		}
		if len(d.Cov[i]) != k {
			return errors.Errorf("Unit %s has %d covariates, expected %d", d.ID[i], len(d.Cov[i]), k)
		}
		if d.Cat != nil && d.Cat[i] < 0 {
			return errors.Errorf("Unit %s has negative exposure category %d", d.ID[i], d.Cat[i])
		}
	}

	return nil
}

// MaxCat returns one past the largest exposure category, or 0 when the
// dataset has no category column.
func (d *Dataset) MaxCat() int {
	if d.Cat == nil {
		return 0
	}
	max := 0
	for _, c := range d.Cat {
		if c+1 > max {
			max = c + 1
		}
	}
	return max
}
