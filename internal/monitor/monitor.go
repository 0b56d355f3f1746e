package monitor

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"UpbitSentinel/internal/alert"
	"UpbitSentinel/internal/calculator"
	"UpbitSentinel/internal/collector"
	"UpbitSentinel/internal/model"
	"UpbitSentinel/internal/notifier"
	"UpbitSentinel/internal/recorder"
	"UpbitSentinel/internal/strategy"
)

const (
	// fetchCount leaves headroom over calculator.Params.MinBars so the
	// newest rows always carry a fully warmed squeeze flag.
	fetchCount = 120

	// instrumentPacing spaces consecutive API calls inside one pass.
	instrumentPacing = 200 * time.Millisecond

	// progressEvery controls how often the pass logs its position.
	progressEvery = 10

	// summaryEvery sends a scan summary on every Nth completed pass.
	summaryEvery = 5

	// passErrorBackoff delays the next pass after a panic inside a scan.
	passErrorBackoff = 30 * time.Second

	alertSendRetries = 3
)

// Monitor runs the periodic watchlist scan: fetch candles, compute
// indicators, evaluate signals, and push cooldown-deduplicated alerts.
type Monitor struct {
	mu          sync.Mutex
	running     bool
	scanCount   int
	signalsSent int
	startTime   time.Time
	lastSignal  time.Time
	watchlist   []model.Instrument

	collector *collector.Collector
	profile   strategy.Profile
	params    calculator.Params
	deduper   *alert.Deduper
	notifier  notifier.Notifier
	recorder  recorder.Recorder

	interval time.Duration
	cron     *cron.Cron
	cancel   context.CancelFunc
	done     chan struct{}
}

// Options bundles the monitor's collaborators.
type Options struct {
	Collector *collector.Collector
	Profile   strategy.Profile
	Params    calculator.Params
	Watchlist []model.Instrument
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Cooldown  time.Duration
	Interval  time.Duration
}

// New creates a monitor. Start must be called to begin scanning.
func New(opts Options) *Monitor {
	rec := opts.Recorder
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Monitor{
		watchlist: append([]model.Instrument(nil), opts.Watchlist...),
		collector: opts.Collector,
		profile:   opts.Profile,
		params:    opts.Params,
		deduper:   alert.NewDeduper(opts.Cooldown),
		notifier:  opts.Notifier,
		recorder:  rec,
		interval:  opts.Interval,
	}
}

// Start runs the scan loop in the calling goroutine until ctx is canceled
// or Stop is called. A heartbeat message goes out on its own cron schedule.
func (m *Monitor) Start(ctx context.Context, heartbeat time.Duration) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("monitor already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	m.running = true
	m.scanCount = 0
	m.signalsSent = 0
	m.startTime = time.Now()
	m.lastSignal = time.Time{}
	m.cancel = cancel
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	defer close(done)

	log.Printf("[INFO] monitor starting: %d instruments, scan every %s, profile %s",
		len(m.watchlist), m.interval, m.profile.Name)

	if heartbeat > 0 {
		m.cron = cron.New()
		spec := fmt.Sprintf("@every %s", heartbeat)
		if _, err := m.cron.AddFunc(spec, m.sendHeartbeat); err != nil {
			m.mu.Lock()
			m.running = false
			m.mu.Unlock()
			cancel()
			return fmt.Errorf("schedule heartbeat: %w", err)
		}
		m.cron.Start()
		defer m.cron.Stop()
	}

	if err := m.notifier.Send(notifier.FormatStartup(m.Stats(), time.Now())); err != nil {
		log.Printf("[WARN] startup message failed: %v", err)
	}

	for {
		next := m.runPass(ctx)
		select {
		case <-ctx.Done():
			log.Printf("[INFO] monitor loop stopped after %d scans", m.Stats().ScanCount)
			return nil
		case <-time.After(next):
		}
	}
}

// runPass executes one scan over the watchlist and returns the delay
// before the next pass. A panic inside the pass is logged and answered
// with a longer backoff instead of crashing the loop.
func (m *Monitor) runPass(ctx context.Context) (next time.Duration) {
	next = m.interval
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] scan pass panicked: %v", r)
			next = passErrorBackoff
		}
	}()

	watchlist := m.Watchlist()
	signalsFound := 0

	for i, inst := range watchlist {
		if ctx.Err() != nil {
			return next
		}
		if i > 0 && i%progressEvery == 0 {
			log.Printf("[INFO] scan progress: %d/%d", i, len(watchlist))
		}

		a, err := m.Analyze(inst)
		if err != nil {
			log.Printf("[WARN] %s: analysis skipped: %v", inst.Symbol, err)
			continue
		}
		signalsFound += m.dispatch(ctx, a)

		time.Sleep(instrumentPacing)
	}

	m.mu.Lock()
	m.scanCount++
	count := m.scanCount
	m.mu.Unlock()

	elapsed := time.Since(started)
	log.Printf("[INFO] scan #%d done: %d instruments, %d signals, %s",
		count, len(watchlist), signalsFound, elapsed.Round(time.Millisecond))

	if err := m.recorder.RecordScan(&recorder.ScanEvent{
		ScanCount:    count,
		Instruments:  len(watchlist),
		SignalsFound: signalsFound,
		DurationMS:   elapsed.Milliseconds(),
	}); err != nil {
		log.Printf("[WARN] scan record failed: %v", err)
	}

	if count%summaryEvery == 0 {
		if err := m.notifier.Send(notifier.FormatSummary(m.Stats(), time.Now())); err != nil {
			log.Printf("[WARN] summary message failed: %v", err)
		}
	}

	if elapsed < m.interval {
		return m.interval - elapsed
	}
	return 0
}

// dispatch sends an alert for each fired signal that clears the cooldown
// and returns how many were sent.
func (m *Monitor) dispatch(ctx context.Context, a *model.Analysis) int {
	sent := 0
	for _, kind := range a.Signals.Active() {
		if !m.deduper.ShouldFire(a.Instrument.Symbol, kind) {
			log.Printf("[INFO] %s: %s suppressed by cooldown", a.Instrument.Symbol, kind)
			continue
		}
		text := notifier.FormatAlert(a, kind)
		if err := m.notifier.SendWithRetry(ctx, text, alertSendRetries); err != nil {
			log.Printf("[ERROR] %s: %s alert not delivered: %v", a.Instrument.Symbol, kind, err)
			continue
		}
		sent++
		m.mu.Lock()
		m.signalsSent++
		m.lastSignal = time.Now()
		m.mu.Unlock()
		if err := m.recorder.RecordAlert(&recorder.AlertEvent{
			Symbol:     a.Instrument.Symbol,
			Kind:       kind,
			Price:      a.Row.Close,
			RSI:        a.Row.RSI,
			BBPosition: a.Row.BBPosition,
			BandWidth:  a.Row.BandWidth,
			Squeeze:    a.Row.Squeeze,
		}); err != nil {
			log.Printf("[WARN] alert record failed: %v", err)
		}
	}
	return sent
}

// Analyze fetches the freshest daily candles for one instrument and
// evaluates the signal rules on the newest bar.
func (m *Monitor) Analyze(inst model.Instrument) (*model.Analysis, error) {
	bars, err := m.collector.FetchValidated(inst.Symbol, fetchCount)
	if err != nil {
		return nil, err
	}
	rows := calculator.Compute(bars, m.params)
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: not enough indicator rows", inst.Symbol)
	}
	prev, cur := rows[len(rows)-2], rows[len(rows)-1]
	if !cur.Defined {
		return nil, fmt.Errorf("%s: newest bar has no defined indicators", inst.Symbol)
	}
	return &model.Analysis{
		Instrument: inst,
		Row:        cur,
		Breakout:   strategy.Breakout(prev, cur),
		Signals:    strategy.Evaluate(prev, cur, m.profile),
		Timestamp:  time.Now(),
	}, nil
}

// Stop shuts the monitor down and waits briefly for the loop to exit.
// Calling Stop on a stopped monitor only logs a warning.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		log.Printf("[WARN] monitor stop requested but it is not running")
		return
	}
	m.running = false
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	if err := m.notifier.Send(notifier.FormatShutdown(m.Stats(), time.Now())); err != nil {
		log.Printf("[WARN] shutdown message failed: %v", err)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		log.Printf("[WARN] monitor loop did not exit within 10s")
	}
	log.Printf("[INFO] monitor stopped")
}

func (m *Monitor) sendHeartbeat() {
	if err := m.notifier.Send(notifier.FormatHeartbeat(m.Stats(), time.Now())); err != nil {
		log.Printf("[WARN] heartbeat message failed: %v", err)
	}
}

// Stats returns a snapshot of the monitor's counters.
func (m *Monitor) Stats() model.MonitorStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return model.MonitorStats{
		Running:        m.running,
		StartTime:      m.startTime,
		ScanCount:      m.scanCount,
		SignalsSent:    m.signalsSent,
		LastSignalTime: m.lastSignal,
		WatchlistSize:  len(m.watchlist),
		ScanInterval:   m.interval,
		AlertRecords:   m.deduper.Len(),
	}
}

// Watchlist returns a copy of the current watchlist.
func (m *Monitor) Watchlist() []model.Instrument {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Instrument(nil), m.watchlist...)
}

// AddInstrument appends a market to the watchlist if it is not present.
func (m *Monitor) AddInstrument(inst model.Instrument) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.watchlist {
		if w.Symbol == inst.Symbol {
			return false
		}
	}
	m.watchlist = append(m.watchlist, inst)
	return true
}

// RemoveInstrument drops a market from the watchlist.
func (m *Monitor) RemoveInstrument(symbol string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, w := range m.watchlist {
		if w.Symbol == symbol {
			m.watchlist = append(m.watchlist[:i], m.watchlist[i+1:]...)
			return true
		}
	}
	return false
}

// HandleCommand serves the Telegram command listener. It returns the
// reply text, or an empty string for commands it does not recognize.
func (m *Monitor) HandleCommand(command string, args []string) string {
	switch command {
	case "start", "help":
		return notifier.FormatHelp(m.Stats())
	case "status":
		return notifier.FormatStatus(m.Stats(), time.Now())
	case "ticker":
		if len(args) == 0 {
			return "Usage: /ticker SYMBOL (e.g. /ticker BTC or /ticker KRW-BTC)"
		}
		inst := m.lookupInstrument(normalizeSymbol(args[0]))
		a, err := m.Analyze(inst)
		if err != nil {
			return fmt.Sprintf("Analysis failed for %s: %v", inst.Symbol, err)
		}
		return notifier.FormatAnalysis(a, m.profile.RSIOverbought)
	case "add":
		if len(args) == 0 {
			return "Usage: /add SYMBOL"
		}
		sym := normalizeSymbol(args[0])
		if m.AddInstrument(model.Instrument{Symbol: sym}) {
			return fmt.Sprintf("Added %s to the watchlist.", sym)
		}
		return fmt.Sprintf("%s is already on the watchlist.", sym)
	case "remove":
		if len(args) == 0 {
			return "Usage: /remove SYMBOL"
		}
		sym := normalizeSymbol(args[0])
		if m.RemoveInstrument(sym) {
			return fmt.Sprintf("Removed %s from the watchlist.", sym)
		}
		return fmt.Sprintf("%s is not on the watchlist.", sym)
	default:
		return ""
	}
}

// lookupInstrument finds a watchlist entry so ad-hoc queries keep their
// configured display names.
func (m *Monitor) lookupInstrument(symbol string) model.Instrument {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.watchlist {
		if w.Symbol == symbol {
			return w
		}
	}
	return model.Instrument{Symbol: symbol}
}

// normalizeSymbol uppercases and prepends the KRW market prefix when the
// user typed a bare coin ticker.
func normalizeSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	if !strings.Contains(s, "-") {
		return "KRW-" + s
	}
	return s
}
