package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/c360/secwatch/compliance"
	"github.com/c360/secwatch/errors"
	"github.com/c360/secwatch/health"
	"github.com/c360/secwatch/metric"
	"github.com/c360/secwatch/pkg/buffer"
	"github.com/c360/secwatch/pkg/clock"
	"github.com/c360/secwatch/sink"
)

// IDs of the default checks registered by Initialize.
const (
	CheckOverallHealth    = "overall-health"
	CheckCriticalControls = "critical-controls"
	CheckDueDates         = "due-dates"

	// checkManual labels executions triggered through RunCheck.
	checkManual = "manual"
)

// Default history capacities.
const (
	DefaultMetricsHistoryCap = 100
	DefaultAlertsHistoryCap  = 50
)

// Listener receives the result of every check execution. One listener is
// registered per Initialize call.
type Listener func(Result)

// Monitor owns the scheduled-check registry, the bounded metric/alert
// history, and the outbound sink. Construct it with New and feed it
// framework snapshots via Initialize or SetFrameworks.
type Monitor struct {
	clk      clock.Clock
	snk      sink.Sink
	logger   *slog.Logger
	metrics  *metric.Metrics
	registry *metric.Registry

	overallInterval  time.Duration
	criticalInterval time.Duration
	dueInterval      time.Duration
	metricsCap       int
	alertsCap        int

	mu          sync.RWMutex
	frameworks  []compliance.Framework
	listener    Listener
	checks      map[string]*scheduledCheck
	initialized bool
	lastResult  *Result

	metricHistory *buffer.Ring[health.Metric]
	alertHistory  *buffer.Ring[health.Alert]

	wg sync.WaitGroup
}

// Option is a functional option for configuring a Monitor
type Option func(*Monitor)

// WithClock sets the time source. Tests pass a mock clock.
func WithClock(c clock.Clock) Option {
	return func(m *Monitor) {
		if c != nil {
			m.clk = c
		}
	}
}

// WithSink sets the telemetry sink
func WithSink(s sink.Sink) Option {
	return func(m *Monitor) {
		if s != nil {
			m.snk = s
		}
	}
}

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetricsRegistry wires scheduler instrumentation into the registry,
// including history buffer size and eviction gauges.
func WithMetricsRegistry(reg *metric.Registry) Option {
	return func(m *Monitor) {
		if reg != nil {
			m.metrics = reg.CoreMetrics()
			m.registry = reg
		}
	}
}

// WithCheckIntervals overrides the default check cadences
func WithCheckIntervals(overall, critical, due time.Duration) Option {
	return func(m *Monitor) {
		m.overallInterval = overall
		m.criticalInterval = critical
		m.dueInterval = due
	}
}

// WithHistoryCaps overrides the metric and alert history capacities
func WithHistoryCaps(metricsCap, alertsCap int) Option {
	return func(m *Monitor) {
		m.metricsCap = metricsCap
		m.alertsCap = alertsCap
	}
}

// New creates a Monitor. Defaults: real clock, slog-backed sink, hourly
// overall check, 6-hourly critical-controls check, daily due-dates
// check, history caps 100/50.
func New(opts ...Option) (*Monitor, error) {
	m := &Monitor{
		clk:              clock.New(),
		logger:           slog.Default().With("service", "monitor"),
		overallInterval:  time.Hour,
		criticalInterval: 6 * time.Hour,
		dueInterval:      24 * time.Hour,
		metricsCap:       DefaultMetricsHistoryCap,
		alertsCap:        DefaultAlertsHistoryCap,
		checks:           make(map[string]*scheduledCheck),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.snk == nil {
		m.snk = sink.NewLogSink(m.logger, 0)
	}

	if m.overallInterval <= 0 || m.criticalInterval <= 0 || m.dueInterval <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidInterval, "Monitor", "New", "interval validation")
	}

	var metricOpts, alertOpts []buffer.Option
	if m.registry != nil {
		promReg := m.registry.PrometheusRegistry()
		metricOpts = append(metricOpts, buffer.WithMetrics(promReg, "secwatch_metrics_history"))
		alertOpts = append(alertOpts, buffer.WithMetrics(promReg, "secwatch_alerts_history"))
	}

	var err error
	m.metricHistory, err = buffer.NewRing[health.Metric](m.metricsCap, metricOpts...)
	if err != nil {
		return nil, errors.WrapFatal(err, "Monitor", "New", "metric history")
	}
	m.alertHistory, err = buffer.NewRing[health.Alert](m.alertsCap, alertOpts...)
	if err != nil {
		return nil, errors.WrapFatal(err, "Monitor", "New", "alert history")
	}

	return m, nil
}

// Initialize stores the framework snapshot, registers the listener, and
// schedules the three default checks.
//
// Initialize is single-shot: when the monitor is already initialized it
// returns true immediately without re-registering checks or replacing
// the listener or frameworks. Callers that need a different listener
// must Cleanup first.
func (m *Monitor) Initialize(frameworks []compliance.Framework, listener Listener) (bool, error) {
	m.mu.Lock()
	if m.initialized {
		m.mu.Unlock()
		m.logger.Debug("monitor already initialized, ignoring")
		return true, nil
	}
	m.frameworks = copyFrameworks(frameworks)
	m.listener = listener
	m.initialized = true
	m.mu.Unlock()

	defaults := []Check{
		{ID: CheckOverallHealth, Name: "Overall Compliance Health", Interval: m.overallInterval,
			Handler: m.checkHandler(CheckOverallHealth)},
		{ID: CheckCriticalControls, Name: "Critical Controls", Interval: m.criticalInterval,
			Handler: m.checkHandler(CheckCriticalControls)},
		{ID: CheckDueDates, Name: "Remediation Due Dates", Interval: m.dueInterval,
			Handler: m.checkHandler(CheckDueDates)},
	}

	scheduled := make([]string, 0, len(defaults))
	for _, c := range defaults {
		if err := m.ScheduleCheck(c); err != nil {
			m.rollbackInitialize(scheduled)
			return false, errors.Wrap(err, "Monitor", "Initialize", "schedule "+c.ID)
		}
		scheduled = append(scheduled, c.ID)
	}

	m.logger.Info("monitor initialized",
		"frameworks", len(frameworks),
		"checks", len(defaults))
	return true, nil
}

// rollbackInitialize undoes a partial Initialize: the default checks
// scheduled so far are cancelled and removed, and the monitor returns to
// its uninitialized state. Checks registered by the caller are untouched.
func (m *Monitor) rollbackInitialize(ids []string) {
	m.mu.Lock()
	for _, id := range ids {
		if sc, ok := m.checks[id]; ok {
			if sc.active {
				sc.active = false
				sc.ticker.Stop()
				close(sc.stop)
			}
			delete(m.checks, id)
		}
	}
	m.listener = nil
	m.frameworks = nil
	m.initialized = false
	m.mu.Unlock()
}

// Initialized reports whether Initialize has run since the last Cleanup.
func (m *Monitor) Initialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// checkHandler builds the handler the default checks run: a full
// evaluation of the current framework snapshot. Send failures surface as
// check failures so they are counted and logged, never fatal.
func (m *Monitor) checkHandler(checkID string) Handler {
	return func(ctx context.Context) error {
		res := m.runCheck(ctx, checkID, m.Frameworks())
		return res.Err()
	}
}

// ScheduleCheck registers a named periodic check and starts its ticker
// goroutine. Handler failures do not cancel the ticker; the check runs
// again on its next tick.
func (m *Monitor) ScheduleCheck(c Check) error {
	if c.ID == "" || c.Handler == nil {
		return errors.WrapInvalid(errors.ErrInvalidData, "Monitor", "ScheduleCheck", "check validation")
	}
	if c.Interval <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidInterval, "Monitor", "ScheduleCheck", "interval validation")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.checks[c.ID]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %s", errors.ErrCheckExists, c.ID),
			"Monitor", "ScheduleCheck", "duplicate check")
	}

	sc := &scheduledCheck{
		check:   c,
		ticker:  m.clk.NewTicker(c.Interval),
		stop:    make(chan struct{}),
		active:  true,
		nextRun: m.clk.Now().Add(c.Interval),
	}
	m.checks[c.ID] = sc

	m.wg.Add(1)
	go m.runLoop(sc)

	m.logger.Info("check scheduled", "check", c.ID, "interval", c.Interval)
	return nil
}

// CancelCheck stops one check's ticker. The entry stays visible in
// ScheduledChecks as inactive; there is no transition back to active
// without re-registration under a new ID via ScheduleCheck.
func (m *Monitor) CancelCheck(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sc, exists := m.checks[id]
	if !exists {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %s", errors.ErrCheckNotFound, id),
			"Monitor", "CancelCheck", "lookup")
	}
	if !sc.active {
		return nil
	}

	sc.active = false
	sc.ticker.Stop()
	close(sc.stop)

	m.logger.Info("check cancelled", "check", id)
	return nil
}

// runLoop drives one scheduled check until it is cancelled. An in-flight
// execution always runs to completion; cancellation only stops future
// ticks.
func (m *Monitor) runLoop(sc *scheduledCheck) {
	defer m.wg.Done()

	for {
		select {
		case <-sc.stop:
			return
		case <-sc.ticker.C():
			m.executeCheck(sc)
		}
	}
}

// executeCheck runs one tick of a scheduled check. Failures are caught
// at this boundary: counted, logged, and left for the next tick.
func (m *Monitor) executeCheck(sc *scheduledCheck) {
	start := m.clk.Now()
	err := sc.check.Handler(context.Background())
	elapsed := m.clk.Now().Sub(start)

	if m.metrics != nil {
		m.metrics.RecordCheckExecution(sc.check.ID, elapsed, err)
	}

	m.mu.Lock()
	sc.executions++
	if err != nil {
		sc.failures++
		sc.lastErr = err
	} else {
		sc.lastErr = nil
		sc.lastRun = start
		sc.nextRun = start.Add(sc.check.Interval)
	}
	m.mu.Unlock()

	if err != nil {
		m.logger.Error("scheduled check failed",
			"check", sc.check.ID,
			"class", errors.Classify(err).String(),
			"error", err)
	}
}

// RunCheck performs one full evaluation of the given frameworks outside
// the schedule (the console's manual refresh). The returned Result
// carries the generated batches and any sink errors; send failures never
// make the call fail.
func (m *Monitor) RunCheck(ctx context.Context, frameworks []compliance.Framework) Result {
	return m.runCheck(ctx, checkManual, frameworks)
}

// runCheck is the single execution path shared by scheduled and manual
// checks: generate metrics, generate alerts, send both batches in
// parallel, append to history, notify the listener. That ordering is
// fixed within one call.
func (m *Monitor) runCheck(ctx context.Context, checkID string, frameworks []compliance.Framework) Result {
	now := m.clk.Now()

	res := Result{
		CheckID:   checkID,
		Timestamp: now,
		Metrics:   health.GenerateMetrics(now, frameworks),
		Alerts:    health.GenerateAlerts(now, frameworks),
	}

	g := new(errgroup.Group)
	g.Go(func() error {
		res.MetricsSendErr = m.snk.SendMetrics(ctx, res.Metrics)
		return res.MetricsSendErr
	})
	g.Go(func() error {
		res.AlertsSendErr = m.snk.SendAlerts(ctx, res.Alerts)
		return res.AlertsSendErr
	})
	if err := g.Wait(); err != nil {
		m.logger.Warn("telemetry send failed", "check", checkID, "error", err)
	}

	for _, mt := range res.Metrics {
		m.metricHistory.Append(mt)
	}
	for _, al := range res.Alerts {
		m.alertHistory.Append(al)
	}

	res.Duration = m.clk.Now().Sub(now)

	m.mu.Lock()
	m.lastResult = &res
	listener := m.listener
	m.mu.Unlock()

	if listener != nil {
		listener(res)
	}

	return res
}

// SetFrameworks replaces the evaluated framework snapshot wholesale.
func (m *Monitor) SetFrameworks(frameworks []compliance.Framework) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frameworks = copyFrameworks(frameworks)
}

// Frameworks returns a copy of the current framework snapshot.
func (m *Monitor) Frameworks() []compliance.Framework {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyFrameworks(m.frameworks)
}

// ScheduledChecks returns a snapshot of every registered check, sorted
// by ID.
func (m *Monitor) ScheduledChecks() []CheckInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]CheckInfo, 0, len(m.checks))
	for _, sc := range m.checks {
		infos = append(infos, sc.info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// HistoryMetrics returns the buffered metric history, oldest first.
func (m *Monitor) HistoryMetrics() []health.Metric {
	return m.metricHistory.Snapshot()
}

// HistoryAlerts returns the buffered alert history, oldest first.
func (m *Monitor) HistoryAlerts() []health.Alert {
	return m.alertHistory.Snapshot()
}

// LastResult returns the most recent check result, or nil before the
// first execution.
func (m *Monitor) LastResult() *Result {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastResult
}

// ResetHistory clears both history buffers. Cleanup deliberately does
// not call this; dashboards keep showing last-known data across monitor
// restarts.
func (m *Monitor) ResetHistory() {
	m.metricHistory.Clear()
	m.alertHistory.Clear()
}

// Cleanup cancels every check, clears the registry, drops the listener
// and framework snapshot, and resets the initialized flag. History is
// retained; call ResetHistory for a full wipe. In-flight executions run
// to completion before Cleanup returns.
func (m *Monitor) Cleanup() {
	m.mu.Lock()
	for _, sc := range m.checks {
		if sc.active {
			sc.active = false
			sc.ticker.Stop()
			close(sc.stop)
		}
	}
	m.checks = make(map[string]*scheduledCheck)
	m.listener = nil
	m.frameworks = nil
	m.initialized = false
	m.mu.Unlock()

	m.wg.Wait()
	m.logger.Info("monitor cleaned up")
}

func copyFrameworks(frameworks []compliance.Framework) []compliance.Framework {
	if frameworks == nil {
		return nil
	}
	out := make([]compliance.Framework, len(frameworks))
	copy(out, frameworks)
	return out
}
