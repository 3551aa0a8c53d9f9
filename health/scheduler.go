// Package health periodically probes the upstream API and keeps the latest report.
package health

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/petal-labs/f1mcp/f1api"
)

const defaultProbeTimeout = 10 * time.Second

// State is the last known upstream health.
type State string

const (
	StateUnknown   State = "unknown"
	StateHealthy   State = "healthy"
	StateUnhealthy State = "unhealthy"
)

// Prober checks that the upstream is reachable. *f1api.Client satisfies it.
type Prober interface {
	Probe(ctx context.Context) error
}

// Report is a snapshot of the most recent probe.
type Report struct {
	Target       string    `json:"target"`
	State        State     `json:"state"`
	CheckedAt    time.Time `json:"checked_at,omitzero"`
	LatencyMS    int64     `json:"latency_ms,omitempty"`
	FailureCount int       `json:"failure_count,omitempty"`
	ErrorCode    string    `json:"error_code,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// Observation is emitted to an Observer after each probe.
type Observation struct {
	Target     string
	State      State
	DurationMS int64
	ErrorCode  string
}

// Observer receives probe observations.
type Observer interface {
	ObserveHealth(Observation)
}

// Config configures a Scheduler.
type Config struct {
	Prober   Prober
	Target   string
	Schedule string
	Timeout  time.Duration
	Now      func() time.Time
	Logger   *slog.Logger
	Observer Observer
	OnReport func(Report)
}

// Scheduler runs Prober on a cron schedule.
type Scheduler struct {
	prober   Prober
	schedule cron.Schedule
	timeout  time.Duration
	now      func() time.Time
	logger   *slog.Logger
	observer Observer
	onReport func(Report)

	mu      sync.Mutex
	report  Report
	cron    *cron.Cron
	cancel  context.CancelFunc
	initial sync.WaitGroup
}

// NewScheduler validates cfg and returns a stopped scheduler.
func NewScheduler(cfg Config) (*Scheduler, error) {
	if cfg.Prober == nil {
		return nil, errors.New("health: prober is nil")
	}
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	schedule, err := ParseSchedule(cfg.Schedule)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultProbeTimeout
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.OnReport == nil {
		cfg.OnReport = func(Report) {}
	}
	return &Scheduler{
		prober:   cfg.Prober,
		schedule: schedule,
		timeout:  cfg.Timeout,
		now:      cfg.Now,
		logger:   cfg.Logger.With("component", "health"),
		observer: cfg.Observer,
		onReport: cfg.OnReport,
		report:   Report{Target: cfg.Target, State: StateUnknown},
	}, nil
}

// Start probes once immediately, then on every schedule tick. Calling Start on
// a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	if s == nil {
		return errors.New("health: scheduler is nil")
	}

	s.mu.Lock()
	if s.cron != nil {
		s.mu.Unlock()
		return nil
	}
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := cron.New(cron.WithLocation(time.UTC))
	c.Schedule(s.schedule, cron.FuncJob(func() { s.RunOnce(loopCtx) }))
	s.cron = c
	s.cancel = cancel
	s.mu.Unlock()

	c.Start()
	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.RunOnce(loopCtx)
	}()
	return nil
}

// Stop cancels in-flight probes and waits for running jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	c := s.cron
	cancel := s.cancel
	s.cron = nil
	s.cancel = nil
	s.mu.Unlock()

	if c == nil {
		return nil
	}
	cancel()
	done := make(chan struct{})
	go func() {
		<-c.Stop().Done()
		s.initial.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs one probe and returns the updated report.
func (s *Scheduler) RunOnce(ctx context.Context) Report {
	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := s.prober.Probe(probeCtx)
	latency := time.Since(start).Milliseconds()

	s.mu.Lock()
	previous := s.report.State
	report := s.report
	report.CheckedAt = s.now()
	report.LatencyMS = latency
	if err != nil {
		report.State = StateUnhealthy
		report.FailureCount++
		report.ErrorCode = errorCode(err)
		report.ErrorMessage = err.Error()
	} else {
		report.State = StateHealthy
		report.FailureCount = 0
		report.ErrorCode = ""
		report.ErrorMessage = ""
	}
	s.report = report
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.ObserveHealth(Observation{
			Target:     report.Target,
			State:      report.State,
			DurationMS: latency,
			ErrorCode:  report.ErrorCode,
		})
	}
	switch {
	case err != nil:
		s.logger.Warn("upstream probe failed", "target", report.Target, "failures", report.FailureCount, "error", err)
	case previous != StateHealthy:
		s.logger.Info("upstream healthy", "target", report.Target, "latency_ms", latency)
	default:
		s.logger.Debug("upstream probe ok", "target", report.Target, "latency_ms", latency)
	}
	s.onReport(report)
	return report
}

// Report returns the latest snapshot.
func (s *Scheduler) Report() Report {
	if s == nil {
		return Report{State: StateUnknown}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

func errorCode(err error) string {
	if apiErr, ok := f1api.AsError(err); ok {
		return string(apiErr.Kind)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "probe_failed"
}
