package services

import (
	"context"
	"time"

	"github.com/sjperalta/registro-api/internal/audit"
	"github.com/sjperalta/registro-api/internal/config"
	"github.com/sjperalta/registro-api/internal/jobs"
	"github.com/sjperalta/registro-api/internal/models"
	"github.com/sjperalta/registro-api/pkg/logger"
)

// JobStatus is the worker state reported by the ops API
type JobStatus struct {
	Worker jobs.WorkerStats `json:"worker"`
	Jobs   []jobs.JobInfo   `json:"jobs"`
}

const dispatchTimeout = 2 * time.Minute

type batchRoutine func(ctx context.Context) ([]models.StatusChangeResult, error)

type JobService struct {
	worker        *jobs.Worker
	lifecycle     *LifecycleService
	notifications *NotificationService
	cfg           *config.Config
}

func NewJobService(worker *jobs.Worker, lifecycle *LifecycleService, notifications *NotificationService, cfg *config.Config) *JobService {
	return &JobService{
		worker:        worker,
		lifecycle:     lifecycle,
		notifications: notifications,
		cfg:           cfg,
	}
}

// RegisterLifecycleJobs registers both lifecycle routines with the worker.
// Enabled routines are scheduled on their cron expression; disabled ones can
// still be run by hand.
func (s *JobService) RegisterLifecycleJobs() error {
	if err := s.register(JobExpiryTransition, s.lifecycle.TransitionExpiring, s.cfg.ExpiryJob); err != nil {
		return err
	}
	return s.register(JobAutoRenewal, s.lifecycle.RenewExpired, s.cfg.RenewalJob)
}

func (s *JobService) register(name string, run batchRoutine, jc config.JobConfig) error {
	job := s.batchJob(name, run)
	if !jc.Enabled {
		s.worker.Register(name, job)
		s.worker.Unschedule(name)
		logger.Info("Job disabled, available for manual runs only", "job", name)
		return nil
	}
	return s.worker.ScheduleCron(name, jc.Cron, job)
}

// batchJob runs a lifecycle routine and hands its results to notification
// dispatch once the routine has returned. Committed transitions are never
// reported again by a later run, so dispatch is detached from worker
// cancellation and bounded by dispatchTimeout instead.
func (s *JobService) batchJob(name string, run batchRoutine) jobs.Job {
	return func(ctx context.Context) error {
		results, err := run(ctx)
		if len(results) > 0 && s.notifications != nil {
			detached := context.WithoutCancel(ctx)
			s.worker.EnqueueAsync(func(context.Context) error {
				dctx, cancel := context.WithTimeout(detached, dispatchTimeout)
				defer cancel()
				if err := s.notifications.Dispatch(dctx, name, results); err != nil {
					logger.Error("Notification dispatch incomplete", "job", name, "results", len(results), "error", err)
					return err
				}
				return nil
			})
		}
		return err
	}
}

// RunNow starts the named job immediately on behalf of the caller in ctx
func (s *JobService) RunNow(ctx context.Context, name string) error {
	identity := audit.IdentityFromContext(ctx)
	err := s.worker.Trigger(name, func(base context.Context) context.Context {
		return audit.WithIdentity(base, identity)
	})
	if err != nil {
		return err
	}
	logger.Info("Job triggered manually", "job", name, "by", identity)
	return nil
}

// GetStatus reports worker statistics and the registered jobs
func (s *JobService) GetStatus() JobStatus {
	return JobStatus{
		Worker: s.worker.GetStats(),
		Jobs:   s.worker.Jobs(),
	}
}
