package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Job represents a background job.
type Job interface {
	Name() string
	Execute(ctx context.Context) error
}

// Scheduler runs registered jobs on fixed intervals.
type Scheduler struct {
	mu      sync.RWMutex
	jobs    map[string]*scheduledJob
	logger  *slog.Logger
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

type scheduledJob struct {
	job      Job
	interval time.Duration
	stopCh   chan struct{}
}

// NewScheduler creates an empty scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make(map[string]*scheduledJob),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers a job to run every interval. Last registration wins on name clash.
func (s *Scheduler) AddJob(job Job, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[job.Name()] = &scheduledJob{
		job:      job,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start launches a goroutine per registered job. Calling Start twice is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	pending := make([]*scheduledJob, 0, len(s.jobs))
	for _, sj := range s.jobs {
		pending = append(pending, sj)
	}
	s.mu.Unlock()

	for _, sj := range pending {
		go s.loop(sj)
	}

	s.logger.Info("job scheduler started", "jobs", len(pending))
}

func (s *Scheduler) loop(sj *scheduledJob) {
	ticker := time.NewTicker(sj.interval)
	defer ticker.Stop()

	s.logger.Info("starting job", "name", sj.job.Name(), "interval", sj.interval)

	for {
		select {
		case <-ticker.C:
			s.execute(sj.job)
		case <-sj.stopCh:
			return
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) execute(job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panic", "name", job.Name(), "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	start := time.Now()
	if err := job.Execute(ctx); err != nil {
		s.logger.Error("job execution failed", "name", job.Name(), "error", err, "duration", time.Since(start))
		return
	}
	s.logger.Debug("job completed", "name", job.Name(), "duration", time.Since(start))
}

// Stop cancels all running jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	for _, sj := range s.jobs {
		close(sj.stopCh)
	}

	s.running = false
	s.logger.Info("job scheduler stopped")
}

// RunOnce executes a registered job immediately, outside its schedule.
func (s *Scheduler) RunOnce(jobName string) error {
	s.mu.RLock()
	sj, ok := s.jobs[jobName]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("job not found: %s", jobName)
	}

	s.execute(sj.job)
	return nil
}
