package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sjperalta/registro-api/internal/audit"
	"github.com/sjperalta/registro-api/internal/metrics"
	"github.com/sjperalta/registro-api/internal/models"
	"github.com/sjperalta/registro-api/internal/notifications"
	"github.com/sjperalta/registro-api/internal/repository"
	"github.com/sjperalta/registro-api/pkg/logger"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Notification outcomes recorded in metrics
const (
	outcomeSent    = "sent"
	outcomeFailed  = "failed"
	outcomeSkipped = "skipped"
)

// UpdateOperationRequest changes the persisted configuration of one code.
// An empty SubjectOverride clears the override.
type UpdateOperationRequest struct {
	Enabled         *bool   `json:"enabled"`
	SubjectOverride *string `json:"subject_override"`
}

// ResolvedSubject is the effective subject of one operation code
type ResolvedSubject struct {
	Code       string `json:"code"`
	Subject    string `json:"subject"`
	Enabled    bool   `json:"enabled"`
	Overridden bool   `json:"overridden"`
}

type NotificationService struct {
	ops         repository.NotificationOperationRepository
	users       repository.UserRepository
	mailer      Mailer
	reports     *ReportService
	concurrency int
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewNotificationService(
	ops repository.NotificationOperationRepository,
	users repository.UserRepository,
	mailer Mailer,
	reports *ReportService,
	concurrency int,
	m *metrics.Metrics,
) *NotificationService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &NotificationService{
		ops:         ops,
		users:       users,
		mailer:      mailer,
		reports:     reports,
		concurrency: concurrency,
		metrics:     m,
		now:         time.Now,
	}
}

// Catalog returns the static catalog entries
func (s *NotificationService) Catalog() []notifications.Entry {
	return notifications.Entries()
}

// SeedOperations creates a configuration row for every catalog code that
// has none. Existing rows keep their admin edits.
func (s *NotificationService) SeedOperations(ctx context.Context) (int, error) {
	ctx = audit.WithIdentity(ctx, audit.SystemIdentity)

	created := 0
	for _, entry := range notifications.Entries() {
		_, err := s.ops.FindByCode(ctx, entry.Code)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, fmt.Errorf("failed to look up operation %s: %w", entry.Code, err)
		}

		op := &models.NotificationOperation{
			Code:        entry.Code,
			Description: entry.Description,
			Module:      entry.Module,
			Enabled:     true,
		}
		if err := s.ops.Create(ctx, op); err != nil {
			return created, fmt.Errorf("failed to seed operation %s: %w", entry.Code, err)
		}
		created++
	}

	if created > 0 {
		logger.Info("Notification operations seeded", "created", created)
	}
	return created, nil
}

// ListOperations returns the persisted per-code configuration
func (s *NotificationService) ListOperations(ctx context.Context) ([]models.NotificationOperation, error) {
	return s.ops.FindAll(ctx)
}

// UpdateOperation applies an admin edit to the configuration of code
func (s *NotificationService) UpdateOperation(ctx context.Context, code string, req UpdateOperationRequest) (*models.NotificationOperation, error) {
	op, err := s.ops.FindByCode(ctx, code)
	if err != nil {
		return nil, mapRepoError(err)
	}

	if req.Enabled != nil {
		op.Enabled = *req.Enabled
	}
	if req.SubjectOverride != nil {
		subject := strings.TrimSpace(*req.SubjectOverride)
		if subject == "" {
			op.SubjectOverride = nil
		} else {
			op.SubjectOverride = &subject
		}
	}

	if err := s.ops.Update(ctx, op); err != nil {
		return nil, mapRepoError(err)
	}
	return op, nil
}

// ResolveSubject returns the subject to use for code and whether
// notifications for it are enabled. Codes without a configuration row fall
// back to the catalog default and count as enabled.
func (s *NotificationService) ResolveSubject(ctx context.Context, code string) (ResolvedSubject, error) {
	resolved := ResolvedSubject{
		Code:    code,
		Subject: notifications.ResolveDefaultSubject(code),
		Enabled: true,
	}

	op, err := s.ops.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return resolved, nil
		}
		return resolved, fmt.Errorf("failed to load operation %s: %w", code, err)
	}

	resolved.Enabled = op.Enabled
	if op.SubjectOverride != nil && strings.TrimSpace(*op.SubjectOverride) != "" {
		resolved.Subject = *op.SubjectOverride
		resolved.Overridden = true
	}
	return resolved, nil
}

// Dispatch notifies referents of each status change and sends the
// administrators a digest of the run. Delivery errors are collected and
// returned together; they never stop the other sends.
func (s *NotificationService) Dispatch(ctx context.Context, job string, results []models.StatusChangeResult) error {
	if len(results) == 0 {
		return nil
	}

	subjects := make(map[string]ResolvedSubject)
	for _, r := range results {
		if _, ok := subjects[r.OperationCode]; ok {
			continue
		}
		resolved, err := s.ResolveSubject(ctx, r.OperationCode)
		if err != nil {
			logger.Warn("Falling back to default subject", "code", r.OperationCode, "error", err)
		}
		subjects[r.OperationCode] = resolved
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)

	for _, r := range results {
		resolved := subjects[r.OperationCode]
		if !resolved.Enabled || r.ReferentEmail == "" {
			s.metrics.IncNotification(r.OperationCode, outcomeSkipped)
			continue
		}

		g.Go(func() error {
			err := s.mailer.SendStatusChange(ctx, r.ReferentEmail, resolved.Subject, r)
			if errors.Is(err, ErrNotificationsDisabled) {
				s.metrics.IncNotification(r.OperationCode, outcomeSkipped)
				return nil
			}
			if err != nil {
				s.metrics.IncNotification(r.OperationCode, outcomeFailed)
				mu.Lock()
				errs = append(errs, fmt.Errorf("notify %s: %w", r.ContractNumber, err))
				mu.Unlock()
				return nil
			}
			s.metrics.IncNotification(r.OperationCode, outcomeSent)
			return nil
		})
	}
	_ = g.Wait()

	if err := s.sendDigest(ctx, job, results); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (s *NotificationService) sendDigest(ctx context.Context, job string, results []models.StatusChangeResult) error {
	resolved, err := s.ResolveSubject(ctx, notifications.CodeBatchDigest)
	if err != nil {
		logger.Warn("Falling back to default digest subject", "error", err)
	}
	if !resolved.Enabled {
		s.metrics.IncNotification(notifications.CodeBatchDigest, outcomeSkipped)
		return nil
	}

	admins, err := s.users.FindAdmins(ctx)
	if err != nil {
		return fmt.Errorf("failed to load digest recipients: %w", err)
	}
	recipients := make([]string, 0, len(admins))
	for _, a := range admins {
		if a.Email != "" {
			recipients = append(recipients, a.Email)
		}
	}
	if len(recipients) == 0 {
		s.metrics.IncNotification(notifications.CodeBatchDigest, outcomeSkipped)
		return nil
	}

	runAt := s.now().UTC()
	digest := BatchDigest{Job: job, RunAt: runAt, Results: results}
	if s.reports != nil {
		attachment, err := s.reports.StatusChangeWorkbook(job, runAt, results)
		if err != nil {
			logger.Warn("Sending digest without workbook", "job", job, "error", err)
		} else {
			digest.Attachment = attachment
			if _, err := s.reports.Archive(attachment); err != nil {
				logger.Warn("Digest workbook not archived", "job", job, "error", err)
			}
		}
	}

	err = s.mailer.SendBatchDigest(ctx, recipients, resolved.Subject, digest)
	if errors.Is(err, ErrNotificationsDisabled) {
		s.metrics.IncNotification(notifications.CodeBatchDigest, outcomeSkipped)
		return nil
	}
	if err != nil {
		s.metrics.IncNotification(notifications.CodeBatchDigest, outcomeFailed)
		return fmt.Errorf("digest for %s: %w", job, err)
	}
	s.metrics.IncNotification(notifications.CodeBatchDigest, outcomeSent)
	return nil
}
