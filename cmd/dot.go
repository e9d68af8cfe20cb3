package cmd

import (
	"github.com/pkg/errors"

	"github.com/sparklabnyc/bymcmc/model"
)

// DotOutput reads the adjacency file and prints a graphviz description of
// the neighbor graph. Useful for eyeballing whether an adjacency file
// matches the map it supposedly came from.
func DotOutput(sp *startupParams) error {
	if len(sp.adjFile) < 1 {
		return errors.New("An adjacency file is required (see --adj)")
	}

	sp.out.Printf("Reading adjacency from %s\n", sp.adjFile)
	g, err := model.NewGraphFromFile(sp.adjFile)
	if err != nil {
		return err
	}

	// Unit labels come from the data file when available
	labels := make([]string, g.N)
	if len(sp.dataFile) > 0 {
		data, err := model.NewDatasetFromFile(sp.dataFile)
		if err != nil {
			return err
		}
		if data.N() != g.N {
			return errors.Errorf("Data has %d units but graph has %d", data.N(), g.N)
		}
		copy(labels, data.ID)
	} else {
		for i := range labels {
			labels[i] = model.UnitName(i)
		}
	}

	sp.out.Printf("strict graph G {\n")
	for i := 0; i < g.N; i++ {
		for k, j := range g.Neighbors[i] {
			if j > i {
				if g.Weights[i][k] != 1.0 {
					sp.out.Printf("    %s -- %s [label=\"%g\"];\n", labels[i], labels[j], g.Weights[i][k])
				} else {
					sp.out.Printf("    %s -- %s;\n", labels[i], labels[j])
				}
			}
		}
	}
	sp.out.Printf("}\n")

	return nil
}
