package sampler

import (
	"math"

	"github.com/sparklabnyc/bymcmc/buffer"
)

// AcceptTarget is the random-walk acceptance rate the tuner aims for, the
// usual optimum for single-site Metropolis updates.
const AcceptTarget = 0.44

// tuneWindow is how many proposals feed one step-size adjustment.
const tuneWindow = 50

// A tuner tracks the acceptance history of one proposal block and rescales
// its random-walk step during burn-in. Once burn-in ends the step is frozen,
// so the retained portion of the chain is a valid fixed-kernel MCMC; the
// window keeps recording for acceptance-rate reporting.
type tuner struct {
	step   float64
	window *buffer.CircularFloat
}

func newTuner(step float64) *tuner {
	return &tuner{
		step:   step,
		window: buffer.NewCircularFloat(tuneWindow),
	}
}

// observe records one accept/reject outcome. When adapting and a full window
// has accumulated, the step is rescaled toward the target acceptance rate.
func (t *tuner) observe(accepted bool, adapt bool) {
	if accepted {
		t.window.Add(1.0)
	} else {
		t.window.Add(0.0)
	}

	if !adapt || !t.window.Full() || t.window.TotalSeen%tuneWindow != 0 {
		return
	}

	t.step *= math.Exp(t.window.Mean() - AcceptTarget)
	if t.step < 1e-6 {
		t.step = 1e-6
	} else if t.step > 1e3 {
		t.step = 1e3
	}
}

// rate returns the windowed acceptance rate.
func (t *tuner) rate() float64 {
	return t.window.Mean()
}

// blockSteps is the per-block collection of tuners for one chain.
type blockSteps struct {
	alpha *tuner
	beta  []*tuner
	theta *tuner
	phi   *tuner
	b     *tuner
}

func newBlockSteps(k int, smooth bool) *blockSteps {
	bs := &blockSteps{
		alpha: newTuner(0.1),
		beta:  make([]*tuner, k),
		theta: newTuner(0.25),
		phi:   newTuner(0.25),
	}
	for i := range bs.beta {
		bs.beta[i] = newTuner(0.1)
	}
	if smooth {
		bs.b = newTuner(0.25)
	}
	return bs
}
