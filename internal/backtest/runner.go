package backtest

import (
	"log"
	"sort"
	"time"

	"UpbitSentinel/internal/collector"
	"UpbitSentinel/internal/model"
	"UpbitSentinel/internal/recorder"
)

const (
	maxRunAttempts  = 3
	runAttemptPause = time.Second
)

// Failure records an instrument that could not be simulated.
type Failure struct {
	Instrument model.Instrument
	Err        error
}

// Runner simulates a set of instruments sequentially and collects the
// results, recording each one as it completes.
type Runner struct {
	Collector *collector.Collector
	Simulator *Simulator
	Recorder  recorder.Recorder
	Days      int
}

// NewRunner builds a runner. A nil recorder is replaced with a no-op.
func NewRunner(c *collector.Collector, s *Simulator, rec recorder.Recorder, days int) *Runner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Runner{Collector: c, Simulator: s, Recorder: rec, Days: days}
}

// Run simulates each instrument, retrying transient fetch errors.
// Failed instruments are reported separately and excluded from results.
// Results come back sorted by total return, best first.
func (r *Runner) Run(instruments []model.Instrument) ([]*model.BacktestResult, []Failure) {
	var results []*model.BacktestResult
	var failures []Failure

	for i, inst := range instruments {
		log.Printf("[INFO] backtest %d/%d: %s", i+1, len(instruments), inst.DisplayName())

		res, err := r.runOne(inst)
		if err != nil {
			log.Printf("[WARN] %s: backtest skipped: %v", inst.Symbol, err)
			failures = append(failures, Failure{Instrument: inst, Err: err})
			continue
		}
		if err := r.Recorder.RecordBacktest(res); err != nil {
			log.Printf("[WARN] %s: backtest record failed: %v", inst.Symbol, err)
		}
		results = append(results, res)
	}

	sort.Slice(results, func(a, b int) bool {
		return results[a].TotalReturn > results[b].TotalReturn
	})
	return results, failures
}

func (r *Runner) runOne(inst model.Instrument) (*model.BacktestResult, error) {
	var lastErr error
	for attempt := 1; attempt <= maxRunAttempts; attempt++ {
		bars, err := r.Collector.FetchValidated(inst.Symbol, r.Days)
		if err != nil {
			lastErr = err
			if attempt < maxRunAttempts {
				time.Sleep(runAttemptPause)
			}
			continue
		}
		return r.Simulator.Run(inst.Symbol, bars)
	}
	return nil, lastErr
}
