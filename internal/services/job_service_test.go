package services

import (
	"context"
	"testing"
	"time"

	"github.com/sjperalta/registro-api/internal/audit"
	"github.com/sjperalta/registro-api/internal/config"
	"github.com/sjperalta/registro-api/internal/jobs"
	"github.com/sjperalta/registro-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobService_RegisterLifecycleJobs(t *testing.T) {
	repos := setupRepos(t)
	worker := jobs.NewWorker(1)
	defer worker.Shutdown()

	cfg := testConfig()
	cfg.ExpiryJob = config.JobConfig{Enabled: true, Cron: "0 2 * * *"}
	cfg.RenewalJob = config.JobConfig{Enabled: false}

	svc := NewJobService(worker, newLifecycle(repos, cfg), nil, cfg)
	require.NoError(t, svc.RegisterLifecycleJobs())

	status := svc.GetStatus()
	require.Len(t, status.Jobs, 2)
	assert.Equal(t, JobAutoRenewal, status.Jobs[0].Name)
	assert.False(t, status.Jobs[0].Scheduled)
	assert.Equal(t, JobExpiryTransition, status.Jobs[1].Name)
	assert.True(t, status.Jobs[1].Scheduled)
	assert.Equal(t, "0 2 * * *", status.Jobs[1].Schedule)
}

func TestJobService_RegisterRejectsInvalidCron(t *testing.T) {
	repos := setupRepos(t)
	worker := jobs.NewWorker(1)
	defer worker.Shutdown()

	cfg := testConfig()
	cfg.ExpiryJob = config.JobConfig{Enabled: true, Cron: "every night"}

	svc := NewJobService(worker, newLifecycle(repos, cfg), nil, cfg)
	assert.Error(t, svc.RegisterLifecycleJobs())
}

func TestJobService_RunNow(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	require.NoError(t, repos.User.Create(ctx, &models.User{Username: "admin", Email: "admin@example.com", Role: models.RoleAdmin, Active: true}))
	c := createContract(t, repos, "CT-200", models.ContractStatusActive, testNow.AddDate(0, 0, -1), false)

	worker := jobs.NewWorker(1)
	defer worker.Shutdown()

	cfg := testConfig()
	mailer := &mockMailer{}
	notificationSvc := newNotificationService(t, repos, mailer, nil)
	svc := NewJobService(worker, newLifecycle(repos, cfg), notificationSvc, cfg)
	require.NoError(t, svc.RegisterLifecycleJobs())

	require.NoError(t, svc.RunNow(audit.WithIdentity(ctx, "mrossi"), JobExpiryTransition))

	require.Eventually(t, func() bool {
		stored, err := repos.Contract.FindByID(ctx, c.ID, false)
		return err == nil && stored.Status == models.ContractStatusExpired
	}, 5*time.Second, 20*time.Millisecond)

	stored, err := repos.Contract.FindByID(ctx, c.ID, false)
	require.NoError(t, err)
	require.NotNil(t, stored.ModifiedBy)
	assert.Equal(t, "mrossi", *stored.ModifiedBy)

	require.Eventually(t, func() bool {
		mailer.mu.Lock()
		defer mailer.mu.Unlock()
		return len(mailer.digests) == 1
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{"referente@example.com"}, mailer.sentTo())
}

func TestJobService_RunNowUnknownJob(t *testing.T) {
	worker := jobs.NewWorker(1)
	defer worker.Shutdown()

	svc := NewJobService(worker, nil, nil, &config.Config{})
	err := svc.RunNow(context.Background(), "contracts.unknown")
	assert.ErrorIs(t, err, ErrUnknownJob)
}

type deadlineMailer struct {
	mockMailer
	ctxErrs     []error
	hasDeadline bool
}

func (m *deadlineMailer) SendStatusChange(ctx context.Context, to, subject string, result models.StatusChangeResult) error {
	m.mu.Lock()
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	_, m.hasDeadline = ctx.Deadline()
	m.mu.Unlock()
	return m.mockMailer.SendStatusChange(ctx, to, subject, result)
}

func TestJobService_DispatchSurvivesShutdown(t *testing.T) {
	repos := setupRepos(t)
	worker := jobs.NewWorker(1)

	mailer := &deadlineMailer{}
	notificationSvc := newNotificationService(t, repos, mailer, nil)
	svc := NewJobService(worker, nil, notificationSvc, testConfig())

	ctx, cancel := context.WithCancel(audit.WithIdentity(context.Background(), "mrossi"))
	cancel()

	job := svc.batchJob(JobExpiryTransition, func(ctx context.Context) ([]models.StatusChangeResult, error) {
		// one record committed before cancellation was noticed
		return []models.StatusChangeResult{
			statusChange("CT-210", "referente@example.com", models.ContractStatusExpired),
		}, ctx.Err()
	})
	assert.ErrorIs(t, job(ctx), context.Canceled)

	// Shutdown waits for in-flight dispatch
	worker.Shutdown()

	assert.Equal(t, []string{"referente@example.com"}, mailer.sentTo())
	require.Len(t, mailer.ctxErrs, 1)
	assert.NoError(t, mailer.ctxErrs[0])
	assert.True(t, mailer.hasDeadline)
}
