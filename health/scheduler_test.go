package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petal-labs/f1mcp/f1api"
)

type scriptedProber struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (p *scriptedProber) Probe(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if len(p.errs) == 0 {
		return nil
	}
	err := p.errs[0]
	p.errs = p.errs[1:]
	return err
}

func (p *scriptedProber) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type recordingObserver struct {
	mu  sync.Mutex
	obs []Observation
}

func (r *recordingObserver) ObserveHealth(o Observation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, o)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunOnceTracksConsecutiveFailures(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	prober := &scriptedProber{errs: []error{
		&f1api.Error{Kind: f1api.KindRemoteStatus, Status: 503, Message: "unavailable"},
		errors.New("dial failed"),
		nil,
	}}
	observer := &recordingObserver{}
	var reports []Report
	scheduler, err := NewScheduler(Config{
		Prober:   prober,
		Target:   "https://unit-test.local/api",
		Now:      func() time.Time { return fixed },
		Logger:   quietLogger(),
		Observer: observer,
		OnReport: func(r Report) { reports = append(reports, r) },
	})
	require.NoError(t, err)
	assert.Equal(t, StateUnknown, scheduler.Report().State)

	first := scheduler.RunOnce(context.Background())
	assert.Equal(t, StateUnhealthy, first.State)
	assert.Equal(t, 1, first.FailureCount)
	assert.Equal(t, "remote_status", first.ErrorCode)
	assert.Equal(t, fixed, first.CheckedAt)

	second := scheduler.RunOnce(context.Background())
	assert.Equal(t, 2, second.FailureCount)
	assert.Equal(t, "probe_failed", second.ErrorCode)

	third := scheduler.RunOnce(context.Background())
	assert.Equal(t, StateHealthy, third.State)
	assert.Zero(t, third.FailureCount)
	assert.Empty(t, third.ErrorMessage)

	assert.Equal(t, third, scheduler.Report())
	assert.Len(t, reports, 3)
	require.Len(t, observer.obs, 3)
	assert.Equal(t, "https://unit-test.local/api", observer.obs[0].Target)
	assert.Equal(t, StateHealthy, observer.obs[2].State)
}

func TestRunOnceTimesOutSlowProbe(t *testing.T) {
	slow := proberFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	scheduler, err := NewScheduler(Config{Prober: slow, Timeout: 10 * time.Millisecond, Logger: quietLogger()})
	require.NoError(t, err)

	report := scheduler.RunOnce(context.Background())
	assert.Equal(t, StateUnhealthy, report.State)
	assert.Equal(t, "timeout", report.ErrorCode)
}

type proberFunc func(ctx context.Context) error

func (f proberFunc) Probe(ctx context.Context) error { return f(ctx) }

func TestStartProbesImmediatelyAndStops(t *testing.T) {
	prober := &scriptedProber{}
	scheduler, err := NewScheduler(Config{Prober: prober, Schedule: "@every 1h", Logger: quietLogger()})
	require.NoError(t, err)

	require.NoError(t, scheduler.Start(context.Background()))
	require.NoError(t, scheduler.Start(context.Background()))
	require.Eventually(t, func() bool { return prober.count() >= 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, scheduler.Stop(ctx))
	require.NoError(t, scheduler.Stop(ctx))
	assert.Equal(t, 1, prober.count())
	assert.Equal(t, StateHealthy, scheduler.Report().State)
}

func TestNewSchedulerValidation(t *testing.T) {
	_, err := NewScheduler(Config{})
	assert.Error(t, err)

	_, err = NewScheduler(Config{Prober: &scriptedProber{}, Schedule: "not a schedule"})
	assert.Error(t, err)
}

func TestParseSchedule(t *testing.T) {
	for _, expr := range []string{"*/5 * * * *", "@every 30s", "@hourly"} {
		_, err := ParseSchedule(expr)
		assert.NoError(t, err, expr)
	}
	for _, expr := range []string{"", "CRON_TZ=Europe/Rome 0 * * * *", "* * *"} {
		_, err := ParseSchedule(expr)
		assert.Error(t, err, expr)
	}
}
