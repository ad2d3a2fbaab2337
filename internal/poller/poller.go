package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/rickgao/crypto-notifier/internal/metrics"
	"github.com/rickgao/crypto-notifier/internal/model"
	"github.com/rickgao/crypto-notifier/internal/notify"
	"github.com/rickgao/crypto-notifier/internal/store"
)

// PriceSource fetches spot prices.
type PriceSource interface {
	FetchPrices(ctx context.Context, symbols []string) (model.Snapshot, error)
}

// InsightSource produces a one-line comment on a snapshot.
type InsightSource interface {
	Generate(ctx context.Context, snap model.Snapshot) (string, error)
}

// Deps are the collaborators of a Poller. Store, Insight and Metrics
// are optional.
type Deps struct {
	Prices   PriceSource
	Store    store.Store
	Insight  InsightSource
	Notifier notify.Notifier
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

// State is the poller's scheduling state.
type State int32

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Poller periodically fetches prices and sends updates.
type Poller struct {
	cfg    Config
	deps   Deps
	logger *slog.Logger

	cron   *cron.Cron
	online sync.Once

	state     atomic.Int32
	lastCycle atomic.Int64 // unix nanos; 0 before the first cycle

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, deps Deps, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Poller{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
	}
}

// Start announces the bot, runs the first cycle in the background and
// schedules the rest.
func (p *Poller) Start(ctx context.Context) error {
	sched, err := p.schedule()
	if err != nil {
		return err
	}

	p.ctx, p.cancel = context.WithCancel(ctx)

	cl := cronLogger{logger: p.logger}
	p.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	p.cron.Schedule(sched, cron.FuncJob(p.tick))

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.sendOnline(p.ctx)
		p.tick()
		if p.ctx.Err() == nil {
			p.cron.Start()
		}
	}()

	p.logger.Info("price poller started",
		"symbols", len(p.cfg.Symbols),
		"interval", p.cfg.Interval,
		"schedule", p.cfg.Schedule,
	)

	return nil
}

// Stop halts scheduling and waits for a running cycle to finish,
// bounded by ctx.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		if p.cron != nil {
			<-p.cron.Stop().Done()
		}
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("price poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State reports whether a cycle is in progress.
func (p *Poller) State() State {
	return State(p.state.Load())
}

// LastCycle returns when the last cycle completed, or the zero time.
func (p *Poller) LastCycle() time.Time {
	n := p.lastCycle.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

// headerInterval is the interval named in update headers. A cron
// schedule has no single interval.
func (p *Poller) headerInterval() time.Duration {
	if p.cfg.Schedule != "" {
		return 0
	}
	return p.cfg.Interval
}

func (p *Poller) schedule() (cron.Schedule, error) {
	if p.cfg.Schedule != "" {
		s, err := cron.ParseStandard(p.cfg.Schedule)
		if err != nil {
			return nil, fmt.Errorf("parse schedule %q: %w", p.cfg.Schedule, err)
		}
		return s, nil
	}
	if p.cfg.Interval < time.Second {
		return nil, fmt.Errorf("interval must be at least 1s, got %s", p.cfg.Interval)
	}
	return cron.Every(p.cfg.Interval), nil
}

// sendOnline sends the startup message exactly once per Poller.
func (p *Poller) sendOnline(ctx context.Context) {
	p.online.Do(func() {
		text := notify.FormatOnline(p.cfg.OnlineMessage, notify.FormatCadence(p.cfg.Interval, p.cfg.Schedule))
		sendCtx, cancel := withTimeout(context.WithoutCancel(ctx), p.cfg.NotifyTimeout)
		defer cancel()

		if err := p.deps.Notifier.Send(sendCtx, text); err != nil {
			p.logger.Error("failed to send online message", "error", err)
			p.deps.Metrics.StepFailed(metrics.StepNotify)
			return
		}
		p.deps.Metrics.MessageSent()
		p.logger.Info("online message sent")
	})
}

// tick runs one scheduled cycle. Shutdown does not cancel a cycle that
// has already begun.
func (p *Poller) tick() {
	if p.ctx.Err() != nil {
		return
	}
	p.RunCycle(context.WithoutCancel(p.ctx))
}

// CycleReport summarizes one cycle.
type CycleReport struct {
	ID       string
	Start    time.Time
	Duration time.Duration
	Fetched  int      // Symbols with a fresh price
	Failed   []string // Symbols with no fresh price
	Stored   int      // Readings written to the store
	Stale    int      // Quotes served from the store
	Insight  bool     // Whether the message carried an insight
	Sent     bool     // Whether the message was delivered
	Message  string
	Skipped  bool // Another cycle was already running
}

// ErrCycleRunning is logged when a cycle is requested while one runs.
var ErrCycleRunning = errors.New("cycle already running")

// RunCycle fetches, stores, enriches and sends one update. Failures are
// logged and reflected in the report; none stops the cycle.
func (p *Poller) RunCycle(ctx context.Context) CycleReport {
	if !p.state.CompareAndSwap(int32(Idle), int32(Running)) {
		p.logger.Warn("skipping cycle", "error", ErrCycleRunning)
		return CycleReport{Skipped: true}
	}
	defer p.state.Store(int32(Idle))

	report := CycleReport{
		ID:    uuid.NewString(),
		Start: p.deps.Now().UTC(),
	}
	logger := p.logger.With("cycle_id", report.ID)

	snap := p.fetch(ctx, logger)
	report.Fetched = snap.Len()
	report.Failed = snap.Failed

	report.Stored = p.store(ctx, logger, snap)

	quotes := p.resolveQuotes(ctx, logger, snap)
	for _, q := range quotes {
		if q.Stale {
			report.Stale++
		}
	}

	ins := p.insight(ctx, logger, snap)
	report.Insight = ins.Present()

	report.Message = notify.FormatUpdate(quotes, ins, p.deps.Now(), p.cfg.Precision, p.headerInterval())
	report.Sent = p.send(ctx, logger, report.Message)

	end := p.deps.Now().UTC()
	report.Duration = end.Sub(report.Start)
	p.lastCycle.Store(end.UnixNano())
	p.deps.Metrics.ObserveCycle(report.Start, end)

	logger.Info("cycle complete",
		"fetched", report.Fetched,
		"failed", len(report.Failed),
		"stored", report.Stored,
		"stale", report.Stale,
		"insight", report.Insight,
		"sent", report.Sent,
		"duration", report.Duration,
	)

	return report
}

func (p *Poller) fetch(ctx context.Context, logger *slog.Logger) model.Snapshot {
	fetchCtx, cancel := withTimeout(ctx, p.cfg.FetchTimeout)
	defer cancel()

	snap, err := p.deps.Prices.FetchPrices(fetchCtx, p.cfg.Symbols)
	if snap.Time.IsZero() {
		snap.Time = p.deps.Now().UTC()
	}
	if err != nil {
		logger.Warn("price fetch incomplete",
			"failed", snap.Failed,
			"error", err,
		)
	}

	// A source that fails outright may not report which symbols it missed.
	if snap.Len()+len(snap.Failed) < len(p.cfg.Symbols) {
		snap.Failed = missingSymbols(p.cfg.Symbols, snap)
	}

	for _, s := range snap.Failed {
		p.deps.Metrics.FetchFailed(s)
	}
	for _, r := range snap.Readings {
		p.deps.Metrics.SetPrice(r.Symbol, r.Price)
	}
	if len(snap.Failed) > 0 {
		p.deps.Metrics.StepFailed(metrics.StepFetch)
	}

	return snap
}

func (p *Poller) store(ctx context.Context, logger *slog.Logger, snap model.Snapshot) int {
	if p.deps.Store == nil || snap.Len() == 0 {
		return 0
	}

	storeCtx, cancel := withTimeout(ctx, p.cfg.StoreTimeout)
	defer cancel()

	n, err := store.WriteSnapshot(storeCtx, p.deps.Store, snap)
	if err != nil {
		logger.Warn("store write failed",
			"written", n,
			"total", snap.Len(),
			"error", err,
		)
		p.deps.Metrics.StepFailed(metrics.StepStore)
	}
	return n
}

// resolveQuotes builds one quote per configured symbol. Symbols without
// a fresh price fall back to the stored value, marked stale.
func (p *Poller) resolveQuotes(ctx context.Context, logger *slog.Logger, snap model.Snapshot) []model.Quote {
	quotes := make([]model.Quote, 0, len(p.cfg.Symbols))

	var storeCtx context.Context
	cancel := func() {}
	defer func() { cancel() }()

	for _, sym := range p.cfg.Symbols {
		if r, ok := snap.Lookup(sym); ok {
			quotes = append(quotes, model.FreshQuote(r))
			continue
		}

		if p.deps.Store == nil {
			quotes = append(quotes, model.MissingQuote(sym))
			continue
		}

		if storeCtx == nil {
			storeCtx, cancel = withTimeout(ctx, p.cfg.StoreTimeout)
		}

		r, err := p.deps.Store.Get(storeCtx, sym)
		switch {
		case err == nil:
			quotes = append(quotes, model.StaleQuote(r))
		case errors.Is(err, store.ErrNotFound):
			quotes = append(quotes, model.MissingQuote(sym))
		default:
			logger.Warn("store lookup failed", "symbol", sym, "error", err)
			p.deps.Metrics.StepFailed(metrics.StepStore)
			quotes = append(quotes, model.MissingQuote(sym))
		}
	}

	return quotes
}

func (p *Poller) insight(ctx context.Context, logger *slog.Logger, snap model.Snapshot) model.Insight {
	if p.deps.Insight == nil || snap.Len() == 0 {
		return model.NoInsight()
	}

	insightCtx, cancel := withTimeout(ctx, p.cfg.InsightTimeout)
	defer cancel()

	text, err := p.deps.Insight.Generate(insightCtx, snap)
	if err != nil {
		logger.Warn("insight unavailable", "error", err)
		p.deps.Metrics.StepFailed(metrics.StepInsight)
		return model.NoInsight()
	}
	return model.SomeInsight(text)
}

func (p *Poller) send(ctx context.Context, logger *slog.Logger, text string) bool {
	sendCtx, cancel := withTimeout(ctx, p.cfg.NotifyTimeout)
	defer cancel()

	if err := p.deps.Notifier.Send(sendCtx, text); err != nil {
		logger.Error("failed to send update", "error", err)
		p.deps.Metrics.StepFailed(metrics.StepNotify)
		return false
	}
	p.deps.Metrics.MessageSent()
	return true
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func missingSymbols(symbols []string, snap model.Snapshot) []string {
	var missing []string
	for _, s := range symbols {
		if _, ok := snap.Lookup(s); !ok {
			missing = append(missing, s)
		}
	}
	return missing
}
