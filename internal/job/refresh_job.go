package job

import (
	"context"
	"sync"
	"time"

	"signal-sniper/internal/domain"
	"signal-sniper/pkg/logger"

	"go.opentelemetry.io/otel/trace"
)

type CycleRunner interface {
	RunCycle(ctx context.Context) (domain.CycleResult, error)
}

// RefreshJob runs the ingestion pipeline once on start and then on every
// tick. Ticks that fire while a cycle is running are dropped.
type RefreshJob struct {
	tracer   trace.Tracer
	runner   CycleRunner
	interval time.Duration
	log      *logger.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	stopped  bool
	lastRun  time.Time
	lastErr  error
	runCount int
}

func NewRefreshJob(tracer trace.Tracer, runner CycleRunner, interval time.Duration, log *logger.Logger) *RefreshJob {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &RefreshJob{
		tracer:   tracer,
		runner:   runner,
		interval: interval,
		log:      logger.OrDefault(log).With("component", "refresh-job"),
		done:     make(chan struct{}),
	}
}

// Start blocks until ctx is cancelled or Stop is called.
func (j *RefreshJob) Start(ctx context.Context) {
	j.mu.Lock()
	if j.stopped || j.cancel != nil {
		j.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.mu.Unlock()
	defer close(j.done)
	defer cancel()

	if j.runner == nil {
		j.log.Warn("refresh job disabled: no runner")
		<-ctx.Done()
		return
	}

	j.log.Infow("refresh job started", "interval", j.interval)
	j.runOnce(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.Info("refresh job stopped")
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

// Stop cancels the job and waits for an in-flight cycle to return. It is
// safe to call more than once, and before Start.
func (j *RefreshJob) Stop() {
	j.mu.Lock()
	if j.stopped {
		j.mu.Unlock()
		return
	}
	j.stopped = true
	cancel := j.cancel
	j.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-j.done
}

func (j *RefreshJob) runOnce(ctx context.Context) {
	ctx, span := j.tracer.Start(ctx, "refresh-job.run-once")
	defer span.End()

	_, err := j.runner.RunCycle(ctx)

	j.mu.Lock()
	j.lastRun = time.Now().UTC()
	j.lastErr = err
	j.runCount++
	j.mu.Unlock()

	if err != nil && ctx.Err() == nil {
		j.log.Errorw("refresh cycle error", "error", err)
	}
}

type RunInfo struct {
	LastRun time.Time
	LastErr error
	Runs    int
}

// LastRun reports when the most recent cycle finished and how many cycles
// this job has run.
func (j *RefreshJob) LastRun() RunInfo {
	j.mu.Lock()
	defer j.mu.Unlock()
	return RunInfo{LastRun: j.lastRun, LastErr: j.lastErr, Runs: j.runCount}
}
