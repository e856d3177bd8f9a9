package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sjperalta/registro-api/pkg/logger"
)

var (
	// ErrUnknownJob is returned for a job name that was never registered
	ErrUnknownJob = errors.New("unknown job")
	// ErrJobRunning is returned when a named job is already in progress
	ErrJobRunning = errors.New("job already running")
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker manages background jobs and scheduled tasks
type Worker struct {
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	asyncSem      chan struct{}
	maxConcurrent int
	stats         WorkerStats
	statsMu       sync.RWMutex

	cron    *cron.Cron
	named   map[string]*namedJob
	namedMu sync.RWMutex
}

// WorkerStats holds statistics about the worker
type WorkerStats struct {
	ActiveJobs    int   `json:"active_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	FailedJobs    int64 `json:"failed_jobs"`
	MaxConcurrent int   `json:"max_concurrent"`
}

// JobInfo describes a named job
type JobInfo struct {
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule,omitempty"`
	Scheduled bool       `json:"scheduled"`
	Running   bool       `json:"running"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

type namedJob struct {
	name    string
	job     Job
	running atomic.Bool

	// guarded by Worker.namedMu
	spec      string
	entryID   cron.EntryID
	scheduled bool
	lastRun   *time.Time
	lastError string
}

// WorkerOption configures a Worker
type WorkerOption func(*workerOptions)

type workerOptions struct {
	location *time.Location
}

// WithLocation evaluates cron expressions in loc instead of UTC
func WithLocation(loc *time.Location) WorkerOption {
	return func(o *workerOptions) {
		if loc != nil {
			o.location = loc
		}
	}
}

// NewWorker creates a worker. numWorkers sizes the async pool: at most
// 2*numWorkers async jobs run at once, and never fewer than 10.
func NewWorker(numWorkers int, opts ...WorkerOption) *Worker {
	o := workerOptions{location: time.UTC}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	asyncLimit := numWorkers * 2
	if asyncLimit < 10 {
		asyncLimit = 10
	}

	cronLog := cronLogger{}
	w := &Worker{
		ctx:           ctx,
		cancel:        cancel,
		asyncSem:      make(chan struct{}, asyncLimit),
		maxConcurrent: asyncLimit,
		cron: cron.New(
			cron.WithLocation(o.location),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		named: make(map[string]*namedJob),
	}
	w.cron.Start()

	return w
}

// EnqueueAsync runs a job in a new goroutine (fire-and-forget), bounded by semaphore
func (w *Worker) EnqueueAsync(job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		// Acquire semaphore to limit concurrency
		w.asyncSem <- struct{}{}
		defer func() { <-w.asyncSem }()

		w.trackJobStart()
		defer w.trackJobEnd()

		// Recover from panics
		defer func() {
			if r := recover(); r != nil {
				logger.Error("[Worker] Async job panic", "panic", r)
				w.trackJobFailure()
			}
		}()

		if err := job(w.ctx); err != nil {
			logger.Error("[Worker] Async job error", "error", err)
			w.trackJobFailure()
		}
	}()
}

// Register makes job available under name for manual triggering. Registering
// an existing name replaces its function and keeps its schedule.
func (w *Worker) Register(name string, job Job) {
	w.namedMu.Lock()
	defer w.namedMu.Unlock()
	if nj, ok := w.named[name]; ok {
		nj.job = job
		return
	}
	w.named[name] = &namedJob{name: name, job: job}
}

// ScheduleCron registers job under name and runs it on the cron spec
// (standard five fields or descriptors such as @daily) in the worker's
// location. A tick that finds the job still running is skipped.
func (w *Worker) ScheduleCron(name, spec string, job Job) error {
	if spec == "" {
		return fmt.Errorf("job %s: empty cron expression", name)
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("job %s: invalid cron expression %q: %w", name, spec, err)
	}

	w.Register(name, job)

	w.namedMu.Lock()
	defer w.namedMu.Unlock()
	nj := w.named[name]
	if nj.scheduled {
		w.cron.Remove(nj.entryID)
	}

	id, err := w.cron.AddFunc(spec, func() {
		if err := w.runNamed(w.ctx, nj); errors.Is(err, ErrJobRunning) {
			logger.Warn("[Scheduler] Skipping tick, job still running", "job", name)
		}
	})
	if err != nil {
		nj.scheduled = false
		return fmt.Errorf("job %s: %w", name, err)
	}
	nj.spec = spec
	nj.entryID = id
	nj.scheduled = true

	logger.Info("[Scheduler] Job scheduled", "job", name, "cron", spec)
	return nil
}

// Unschedule removes the recurring registration of name. The job stays
// available for manual triggering.
func (w *Worker) Unschedule(name string) {
	w.namedMu.Lock()
	defer w.namedMu.Unlock()
	nj, ok := w.named[name]
	if !ok || !nj.scheduled {
		return
	}
	w.cron.Remove(nj.entryID)
	nj.scheduled = false
	nj.spec = ""
	logger.Info("[Scheduler] Job unscheduled", "job", name)
}

// Trigger starts the named job now in the background. wrap, when non-nil,
// derives the job context from the worker context. It fails fast when the
// job is unknown or already running.
func (w *Worker) Trigger(name string, wrap func(context.Context) context.Context) error {
	w.namedMu.RLock()
	nj, ok := w.named[name]
	w.namedMu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	if !nj.running.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: %s", ErrJobRunning, name)
	}

	ctx := w.ctx
	if wrap != nil {
		ctx = wrap(ctx)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer nj.running.Store(false)
		w.execute(ctx, nj)
	}()
	return nil
}

// runNamed runs nj synchronously unless it is already running
func (w *Worker) runNamed(ctx context.Context, nj *namedJob) error {
	if !nj.running.CompareAndSwap(false, true) {
		return ErrJobRunning
	}
	defer nj.running.Store(false)
	return w.execute(ctx, nj)
}

func (w *Worker) execute(ctx context.Context, nj *namedJob) (err error) {
	w.namedMu.RLock()
	job := nj.job
	w.namedMu.RUnlock()

	w.trackJobStart()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			logger.Error("[Scheduler] Job failed", "job", nj.name, "duration", time.Since(start), "error", err)
			w.trackJobFailure()
		} else {
			logger.Info("[Scheduler] Job completed", "job", nj.name, "duration", time.Since(start))
		}
		w.trackJobEnd()
		w.recordRun(nj, start, err)
	}()

	return job(ctx)
}

func (w *Worker) recordRun(nj *namedJob, start time.Time, err error) {
	w.namedMu.Lock()
	defer w.namedMu.Unlock()
	at := start.UTC()
	nj.lastRun = &at
	nj.lastError = ""
	if err != nil {
		nj.lastError = err.Error()
	}
}

// Jobs lists the named jobs ordered by name
func (w *Worker) Jobs() []JobInfo {
	w.namedMu.RLock()
	defer w.namedMu.RUnlock()

	infos := make([]JobInfo, 0, len(w.named))
	for _, nj := range w.named {
		info := JobInfo{
			Name:      nj.name,
			Schedule:  nj.spec,
			Scheduled: nj.scheduled,
			Running:   nj.running.Load(),
			LastRun:   nj.lastRun,
			LastError: nj.lastError,
		}
		if nj.scheduled {
			if next := w.cron.Entry(nj.entryID).Next; !next.IsZero() {
				info.NextRun = &next
			}
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Shutdown gracefully stops all workers
func (w *Worker) Shutdown() {
	w.cancel()
	<-w.cron.Stop().Done()
	w.wg.Wait()
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.MaxConcurrent = w.maxConcurrent
	return stats
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
}

// trackJobEnd counts every finished job; failures are counted again in FailedJobs.
func (w *Worker) trackJobEnd() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
}

func (w *Worker) trackJobFailure() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.FailedJobs++
}

// cronLogger routes cron's own logging through the application logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("[Cron] "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("[Cron] "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
