package model

import (
	"os"

	"github.com/pkg/errors"

	"github.com/sparklabnyc/bymcmc/graph"
)

// ReadDataset parses the observation table. The format is a header line
//
//	N K C
//
// (unit count, covariate count, exposure category count; C is 0 when the
// model has no smooth term) followed by N rows of
//
//	id obs exp x1 .. xK [cat]
//
// where cat is a 1-based category present only when C > 0. '#' comments and
// blank lines are ignored anywhere.
func ReadDataset(data []byte) (*Dataset, error) {
	fr := NewFieldReader(string(data))

	n, err := fr.ReadInt()
	if err != nil {
		return nil, errors.Wrap(err, "Error reading unit count")
	}
	if n < 1 {
		return nil, errors.Errorf("Invalid unit count %d", n)
	}

	k, err := fr.ReadInt()
	if err != nil {
		return nil, errors.Wrap(err, "Error reading covariate count")
	}
	if k < 0 {
		return nil, errors.Errorf("Invalid covariate count %d", k)
	}

	nCat, err := fr.ReadInt()
	if err != nil {
		return nil, errors.Wrap(err, "Error reading category count")
	}
	if nCat < 0 {
		return nil, errors.Errorf("Invalid category count %d", nCat)
	}

	d := &Dataset{
		ID:  make([]string, n),
		Obs: make([]int, n),
		Exp: make([]float64, n),
		Cov: make([][]float64, n),
	}
	if nCat > 0 {
		d.Cat = make([]int, n)
	}

	for i := 0; i < n; i++ {
		d.ID[i], err = fr.Read()
		if err != nil {
			return nil, errors.Wrapf(err, "Error reading id for row %d", i)
		}
		d.Obs[i], err = fr.ReadInt()
		if err != nil {
			return nil, errors.Wrapf(err, "Error reading observed count for %s", d.ID[i])
		}
		d.Exp[i], err = fr.ReadFloat()
		if err != nil {
			return nil, errors.Wrapf(err, "Error reading expected count for %s", d.ID[i])
		}

		d.Cov[i] = make([]float64, k)
		for c := 0; c < k; c++ {
			d.Cov[i][c], err = fr.ReadFloat()
			if err != nil {
				return nil, errors.Wrapf(err, "Error reading covariate %d for %s", c, d.ID[i])
			}
		}

		if nCat > 0 {
			cat, err := fr.ReadInt()
			if err != nil {
				return nil, errors.Wrapf(err, "Error reading category for %s", d.ID[i])
			}
			if cat < 1 || cat > nCat {
				return nil, errors.Errorf("Category %d for %s outside 1..%d", cat, d.ID[i], nCat)
			}
			d.Cat[i] = cat - 1
		}
	}

	if err := d.Check(); err != nil {
		return nil, errors.Wrap(err, "Parsed dataset is not valid")
	}

	return d, nil
}

// ReadAdjacency parses the num/adj/weights triple used by CAR-model tooling:
//
//	N
//	num:     N neighbor counts
//	adj:     sum(num) 1-based neighbor ids
//	weights: sum(num) edge weights
//
// and builds the neighbor graph, converting ids to 0-based.
func ReadAdjacency(data []byte) (*graph.Graph, error) {
	fr := NewFieldReader(string(data))

	n, err := fr.ReadInt()
	if err != nil {
		return nil, errors.Wrap(err, "Error reading unit count")
	}
	if n < 1 {
		return nil, errors.Errorf("Invalid unit count %d", n)
	}

	num := make([]int, n)
	total := 0
	for i := 0; i < n; i++ {
		num[i], err = fr.ReadInt()
		if err != nil {
			return nil, errors.Wrapf(err, "Error reading neighbor count for unit %d", i+1)
		}
		total += num[i]
	}

	adj := make([]int, total)
	for i := 0; i < total; i++ {
		id, err := fr.ReadInt()
		if err != nil {
			return nil, errors.Wrapf(err, "Error reading adjacency entry %d", i)
		}
		adj[i] = id - 1
	}

	weights := make([]float64, total)
	for i := 0; i < total; i++ {
		weights[i], err = fr.ReadFloat()
		if err != nil {
			return nil, errors.Wrapf(err, "Error reading weight entry %d", i)
		}
	}

	g, err := graph.NewFromAdjacency(num, adj, weights)
	if err != nil {
		return nil, errors.Wrap(err, "Parsed adjacency is not valid")
	}

	return g, nil
}

// NewDatasetFromFile reads and parses the observation table from a file.
func NewDatasetFromFile(filename string) (*Dataset, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not READ dataset from %s", filename)
	}
	return ReadDataset(data)
}

// NewGraphFromFile reads and parses the adjacency triple from a file.
func NewGraphFromFile(filename string) (*graph.Graph, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not READ adjacency from %s", filename)
	}
	return ReadAdjacency(data)
}
