package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/pkg/errors"

	"github.com/sparklabnyc/bymcmc/diag"
	"github.com/sparklabnyc/bymcmc/model"
	"github.com/sparklabnyc/bymcmc/sampler"
)

// FitRun reads the data, runs the configured chains, and prints a posterior
// summary table plus WAIC. Interrupts cancel the run cleanly: partial chains
// are discarded, never summarized.
func FitRun(sp *startupParams) error {
	if len(sp.dataFile) < 1 {
		return errors.New("A data file is required (see --data)")
	}
	if len(sp.adjFile) < 1 {
		return errors.New("An adjacency file is required (see --adj)")
	}

	cfg := sampler.DefaultRunConfig()
	if len(sp.cfgFile) > 0 {
		var err error
		cfg, err = sampler.NewRunConfigFromFile(sp.cfgFile)
		if err != nil {
			return err
		}
	}
	if sp.seed > 0 {
		cfg.Seed = sp.seed
	}

	sp.out.Printf("Reading observations from %s\n", sp.dataFile)
	data, err := model.NewDatasetFromFile(sp.dataFile)
	if err != nil {
		return err
	}
	sp.out.Printf("Dataset has %d units and %d covariates\n", data.N(), data.K())

	sp.out.Printf("Reading adjacency from %s\n", sp.adjFile)
	g, err := model.NewGraphFromFile(sp.adjFile)
	if err != nil {
		return err
	}
	sp.out.Printf("Graph has %d units in %d component(s)\n", g.N, g.Components)

	spec, err := model.NewSpec(data, g)
	if err != nil {
		return err
	}
	if sp.smooth {
		if err := spec.EnableSmooth(); err != nil {
			return err
		}
		sp.out.Printf("Smooth exposure term enabled over %d categories\n", spec.RW2.N)
	}
	cfg.ApplyPriors(spec)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	chains, err := sampler.Run(ctx, spec, cfg, nil, sp.zlog)
	if err != nil {
		return err
	}

	view := make([]*diag.Chain, len(chains))
	for i, ch := range chains {
		view[i] = &diag.Chain{Names: ch.Names, Draws: ch.Draws, LogLik: ch.LogLik}
	}

	sums, err := diag.Summarize(view, 0.95)
	if err != nil {
		return err
	}

	sp.out.Printf("%-12s %10s %10s %10s %10s %8s %8s\n",
		"param", "mean", "median", "2.5%", "97.5%", "Rhat", "ESS")
	flagged := 0
	for _, s := range sums {
		mark := " "
		if !s.Converged {
			mark = "*"
			flagged++
		}
		sp.out.Printf("%-12s %10.4f %10.4f %10.4f %10.4f %8.3f %8.0f %s\n",
			s.Name, s.Mean, s.Median, s.Lower, s.Upper, s.Rhat, s.ESS, mark)
	}
	if flagged > 0 {
		sp.out.Printf("* %d parameter(s) with Rhat > %.2f - inspect before trusting\n",
			flagged, diag.RhatThreshold)
	}

	w, err := diag.ComputeWAIC(view)
	if err != nil {
		return err
	}
	sp.out.Printf("WAIC: %.2f (lppd %.2f, pWAIC %.2f)\n", w.Value, w.LPPD, w.PWaic)

	return nil
}
