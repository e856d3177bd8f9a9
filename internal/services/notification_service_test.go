package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sjperalta/registro-api/internal/audit"
	"github.com/sjperalta/registro-api/internal/config"
	"github.com/sjperalta/registro-api/internal/metrics"
	"github.com/sjperalta/registro-api/internal/models"
	"github.com/sjperalta/registro-api/internal/notifications"
	"github.com/sjperalta/registro-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentStatusChange struct {
	To      string
	Subject string
	Result  models.StatusChangeResult
}

type sentDigest struct {
	To      []string
	Subject string
	Digest  BatchDigest
}

type mockMailer struct {
	mu      sync.Mutex
	changes []sentStatusChange
	digests []sentDigest
	failTo  string
}

func (m *mockMailer) SendStatusChange(ctx context.Context, to, subject string, result models.StatusChangeResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if to == m.failTo {
		return errors.New("mailbox unavailable")
	}
	m.changes = append(m.changes, sentStatusChange{To: to, Subject: subject, Result: result})
	return nil
}

func (m *mockMailer) SendBatchDigest(ctx context.Context, to []string, subject string, digest BatchDigest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.digests = append(m.digests, sentDigest{To: to, Subject: subject, Digest: digest})
	return nil
}

func (m *mockMailer) sentTo() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var to []string
	for _, c := range m.changes {
		to = append(to, c.To)
	}
	sort.Strings(to)
	return to
}

func newNotificationService(t *testing.T, repos *repository.Repositories, mailer Mailer, m *metrics.Metrics) *NotificationService {
	t.Helper()
	svc := NewNotificationService(repos.Notification, repos.User, mailer, NewReportService(), 2, m)
	_, err := svc.SeedOperations(context.Background())
	require.NoError(t, err)
	return svc
}

func statusChange(number, email, status string) models.StatusChangeResult {
	code, _ := notifications.StatusCode(status)
	return models.StatusChangeResult{
		ContractID:     uuid.New(),
		ContractNumber: number,
		ReferentEmail:  email,
		ExpiryDate:     testNow.AddDate(0, 0, -1),
		PreviousStatus: models.ContractStatusActive,
		NewStatus:      status,
		OperationCode:  code,
		ChangedAt:      testNow,
	}
}

func TestNotificationService_SeedOperations(t *testing.T) {
	repos := setupRepos(t)
	svc := NewNotificationService(repos.Notification, repos.User, &mockMailer{}, nil, 1, nil)
	ctx := context.Background()

	created, err := svc.SeedOperations(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(notifications.Entries()), created)

	disabled := false
	_, err = svc.UpdateOperation(audit.WithIdentity(ctx, "admin"), notifications.CodeContractExpired, UpdateOperationRequest{Enabled: &disabled})
	require.NoError(t, err)

	created, err = svc.SeedOperations(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)

	op, err := repos.Notification.FindByCode(ctx, notifications.CodeContractExpired)
	require.NoError(t, err)
	assert.False(t, op.Enabled, "seeding must keep admin edits")
	assert.Equal(t, audit.SystemIdentity, op.CreatedBy)
}

func TestNotificationService_ResolveSubject(t *testing.T) {
	repos := setupRepos(t)
	svc := newNotificationService(t, repos, &mockMailer{}, nil)
	ctx := context.Background()

	resolved, err := svc.ResolveSubject(ctx, notifications.CodeContractExpired)
	require.NoError(t, err)
	assert.Equal(t, "Contratto scaduto", resolved.Subject)
	assert.True(t, resolved.Enabled)
	assert.False(t, resolved.Overridden)

	override := "  [Registro] Contratto scaduto  "
	_, err = svc.UpdateOperation(ctx, notifications.CodeContractExpired, UpdateOperationRequest{SubjectOverride: &override})
	require.NoError(t, err)
	resolved, err = svc.ResolveSubject(ctx, notifications.CodeContractExpired)
	require.NoError(t, err)
	assert.Equal(t, "[Registro] Contratto scaduto", resolved.Subject)
	assert.True(t, resolved.Overridden)

	empty := ""
	op, err := svc.UpdateOperation(ctx, notifications.CodeContractExpired, UpdateOperationRequest{SubjectOverride: &empty})
	require.NoError(t, err)
	assert.Nil(t, op.SubjectOverride)

	resolved, err = svc.ResolveSubject(ctx, "CODICE_SCONOSCIUTO")
	require.NoError(t, err)
	assert.Equal(t, notifications.FallbackSubject, resolved.Subject)
	assert.True(t, resolved.Enabled)
}

func TestNotificationService_UpdateUnknownOperation(t *testing.T) {
	repos := setupRepos(t)
	svc := newNotificationService(t, repos, &mockMailer{}, nil)

	enabled := true
	_, err := svc.UpdateOperation(context.Background(), "NON_ESISTE", UpdateOperationRequest{Enabled: &enabled})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotificationService_Dispatch(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	require.NoError(t, repos.User.Create(ctx, &models.User{Username: "admin", Email: "admin@example.com", Role: models.RoleAdmin, Active: true}))
	require.NoError(t, repos.User.Create(ctx, &models.User{Username: "op", Email: "op@example.com", Role: models.RoleOperator, Active: true}))

	mailer := &mockMailer{failTo: "broken@example.com"}
	m := metrics.New(prometheus.NewRegistry())
	svc := newNotificationService(t, repos, mailer, m)

	disabled := false
	_, err := svc.UpdateOperation(ctx, notifications.CodeContractNearExpiry, UpdateOperationRequest{Enabled: &disabled})
	require.NoError(t, err)

	results := []models.StatusChangeResult{
		statusChange("CT-1", "a@example.com", models.ContractStatusExpired),
		statusChange("CT-2", "b@example.com", models.ContractStatusExpired),
		statusChange("CT-3", "broken@example.com", models.ContractStatusExpired),
		statusChange("CT-4", "", models.ContractStatusExpired),
		statusChange("CT-5", "c@example.com", models.ContractStatusNearExpiry),
	}

	err = svc.Dispatch(ctx, JobExpiryTransition, results)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CT-3")

	assert.Equal(t, []string{"a@example.com", "b@example.com"}, mailer.sentTo())
	for _, c := range mailer.changes {
		assert.Equal(t, "Contratto scaduto", c.Subject)
	}

	require.Len(t, mailer.digests, 1)
	digest := mailer.digests[0]
	assert.Equal(t, []string{"admin@example.com"}, digest.To)
	assert.Equal(t, "Riepilogo elaborazione contratti", digest.Subject)
	assert.Equal(t, results, digest.Digest.Results)
	require.NotNil(t, digest.Digest.Attachment)
	assert.NotEmpty(t, digest.Digest.Attachment.Content)

	code := notifications.CodeContractExpired
	assert.Equal(t, 2.0, testutil.ToFloat64(m.NotificationSent.WithLabelValues(code, outcomeSent)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationSent.WithLabelValues(code, outcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationSent.WithLabelValues(code, outcomeSkipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationSent.WithLabelValues(notifications.CodeContractNearExpiry, outcomeSkipped)))
}

func TestNotificationService_DispatchWithEmailDisabled(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	require.NoError(t, repos.User.Create(ctx, &models.User{Username: "admin", Email: "admin@example.com", Role: models.RoleAdmin, Active: true}))

	m := metrics.New(prometheus.NewRegistry())
	mailer := NewEmailService(&config.Config{EnableEmailNotifications: false})
	svc := newNotificationService(t, repos, mailer, m)

	require.NoError(t, svc.Dispatch(ctx, JobExpiryTransition, []models.StatusChangeResult{
		statusChange("CT-1", "a@example.com", models.ContractStatusExpired),
	}))

	code := notifications.CodeContractExpired
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationSent.WithLabelValues(code, outcomeSkipped)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.NotificationSent.WithLabelValues(code, outcomeSent)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationSent.WithLabelValues(notifications.CodeBatchDigest, outcomeSkipped)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.NotificationSent.WithLabelValues(notifications.CodeBatchDigest, outcomeSent)))
}

func TestNotificationService_DispatchWithoutResults(t *testing.T) {
	repos := setupRepos(t)
	mailer := &mockMailer{}
	svc := newNotificationService(t, repos, mailer, nil)

	require.NoError(t, svc.Dispatch(context.Background(), JobAutoRenewal, nil))
	assert.Empty(t, mailer.digests)
}

func TestNotificationService_DigestDisabled(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()
	require.NoError(t, repos.User.Create(ctx, &models.User{Username: "admin", Email: "admin@example.com", Role: models.RoleAdmin, Active: true}))

	mailer := &mockMailer{}
	svc := newNotificationService(t, repos, mailer, nil)
	disabled := false
	_, err := svc.UpdateOperation(ctx, notifications.CodeBatchDigest, UpdateOperationRequest{Enabled: &disabled})
	require.NoError(t, err)

	require.NoError(t, svc.Dispatch(ctx, JobAutoRenewal, []models.StatusChangeResult{
		statusChange("CT-9", "x@example.com", models.ContractStatusRenewed),
	}))
	assert.Len(t, mailer.changes, 1)
	assert.Empty(t, mailer.digests)
}

func TestNotificationService_DispatchUsesMockUsers(t *testing.T) {
	repos := setupRepos(t)
	users := &mockUserRepo{
		mockFindAdmins: func(ctx context.Context) ([]models.User, error) {
			return nil, errors.New("users table locked")
		},
	}
	mailer := &mockMailer{}
	svc := NewNotificationService(repos.Notification, users, mailer, nil, 1, nil)
	svc.now = func() time.Time { return testNow }

	err := svc.Dispatch(context.Background(), JobExpiryTransition, []models.StatusChangeResult{
		statusChange("CT-7", "x@example.com", models.ContractStatusExpired),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "digest recipients")
	assert.Len(t, mailer.changes, 1, "referent mail is sent even when the digest fails")
}
