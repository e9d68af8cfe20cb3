package sampler

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/sparklabnyc/bymcmc/model"
)

// Run executes cfg.Chains independent chains in parallel and returns them all
// once every chain finishes. Chains share only the immutable spec; each owns
// its state and RNG stream, so no locking is needed. inits supplies one
// initial state per chain, or nil for defaults everywhere. If any chain fails
// (including cancellation) the whole run's output is discarded.
func Run(ctx context.Context, spec *model.Spec, cfg *RunConfig, inits []*model.ParameterVector, log *zap.SugaredLogger) ([]*Chain, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if cfg == nil {
		return nil, errors.Errorf("No run config supplied")
	}
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	if inits != nil && len(inits) != cfg.Chains {
		return nil, errors.Errorf("Got %d initial states for %d chains", len(inits), cfg.Chains)
	}

	chains := make([]*Chain, cfg.Chains)
	for i := range chains {
		var init *model.ParameterVector
		if inits != nil {
			init = inits[i]
		}

		ch, err := NewChain(i, spec, cfg, init, log)
		if err != nil {
			return nil, errors.Wrapf(err, "Could not build chain %d", i)
		}
		chains[i] = ch
	}

	log.Infow("sampling run starting",
		"chains", cfg.Chains,
		"iterations", cfg.Iterations,
		"burnin", cfg.BurnIn,
		"thin", cfg.Thin,
	)
	start := time.Now()

	var wg sync.WaitGroup
	errs := make([]error, cfg.Chains)

	for _, ch := range chains {
		wg.Add(1)
		go func(c *Chain) {
			defer wg.Done()
			errs[c.ID] = c.Run(ctx)
		}(ch)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, errors.Wrap(err, "Sampling run failed")
		}
	}

	var unstable int64
	for _, ch := range chains {
		unstable += ch.Unstable
	}
	log.Infow("sampling run finished",
		"elapsed", time.Since(start),
		"retained", cfg.RetainedPerChain(),
		"unstable", unstable,
	)

	return chains, nil
}
