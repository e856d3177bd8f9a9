package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sjperalta/registro-api/internal/config"
	"github.com/sjperalta/registro-api/internal/metrics"
	"github.com/sjperalta/registro-api/internal/models"
	"github.com/sjperalta/registro-api/internal/notifications"
	"github.com/sjperalta/registro-api/internal/repository"
	"github.com/sjperalta/registro-api/internal/statemachine"
	"github.com/sjperalta/registro-api/pkg/logger"
)

// Lifecycle job names
const (
	JobExpiryTransition = "contracts.expiry-transition"
	JobAutoRenewal      = "contracts.auto-renewal"
)

// LifecycleService re-evaluates contracts against the calendar. Each routine
// walks its candidates one at a time in expiry order, commits every
// transition in its own transaction and keeps going past per-record errors.
type LifecycleService struct {
	contracts       repository.ContractRepository
	lookAhead       time.Duration
	renewNearExpiry bool
	loc             *time.Location
	now             func() time.Time
	metrics         *metrics.Metrics
}

// LifecycleOption configures a LifecycleService
type LifecycleOption func(*LifecycleService)

// WithLifecycleClock overrides the time source used to decide transitions
func WithLifecycleClock(now func() time.Time) LifecycleOption {
	return func(s *LifecycleService) { s.now = now }
}

// WithLifecycleMetrics records transitions, failures and run durations
func WithLifecycleMetrics(m *metrics.Metrics) LifecycleOption {
	return func(s *LifecycleService) { s.metrics = m }
}

func NewLifecycleService(contracts repository.ContractRepository, cfg *config.Config, opts ...LifecycleOption) *LifecycleService {
	s := &LifecycleService{
		contracts:       contracts,
		lookAhead:       cfg.ExpiryLookAhead,
		renewNearExpiry: cfg.RenewNearExpiry,
		loc:             cfg.Location,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RenewalStatuses lists the statuses the renewal routine picks up
func (s *LifecycleService) RenewalStatuses() []string {
	if s.renewNearExpiry {
		return []string{models.ContractStatusExpired, models.ContractStatusNearExpiry}
	}
	return []string{models.ContractStatusExpired}
}

// TransitionExpiring moves active contracts entering the look-ahead window
// to near_expiry and contracts past their expiry date to expired. It returns
// the committed transitions in processing order together with the joined
// per-record failures.
func (s *LifecycleService) TransitionExpiring(ctx context.Context) ([]models.StatusChangeResult, error) {
	defer s.metrics.ObserveRun(JobExpiryTransition, time.Now())

	now := s.now().UTC()

	candidates, err := s.contracts.FindDueForTransition(ctx,
		[]string{models.ContractStatusActive, models.ContractStatusNearExpiry},
		statemachine.ExpiryHorizon(now, s.lookAhead, s.loc))
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts due for transition: %w", err)
	}

	var results []models.StatusChangeResult
	var failures []error
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return results, errors.Join(append(failures, err)...)
		}

		contract := &candidates[i]
		event, due := statemachine.ExpiryEvent(contract, now, s.lookAhead, s.loc)
		if !due {
			continue
		}

		result, err := s.applyExpiryEvent(ctx, contract, event, now)
		if err != nil {
			failures = append(failures, s.recordFailure(JobExpiryTransition, contract, err))
			continue
		}
		results = append(results, result)
	}

	logger.Info("Expiry transition completed", "candidates", len(candidates), "transitioned", len(results), "failed", len(failures))
	return results, errors.Join(failures...)
}

func (s *LifecycleService) applyExpiryEvent(ctx context.Context, contract *models.Contract, event string, now time.Time) (models.StatusChangeResult, error) {
	previous := contract.Status
	if err := statemachine.NewContractFSM(contract, s.renewNearExpiry).Fire(ctx, event); err != nil {
		return models.StatusChangeResult{}, errors.Join(ErrInvalidState, err)
	}
	if err := s.contracts.TransitionStatus(ctx, contract, previous); err != nil {
		return models.StatusChangeResult{}, mapRepoError(err)
	}

	s.metrics.IncTransition(JobExpiryTransition, contract.Status)
	return newStatusChangeResult(contract, previous, now), nil
}

// RenewExpired creates a successor for every renewable contract and marks
// the source renewed. Both writes of one renewal commit together.
func (s *LifecycleService) RenewExpired(ctx context.Context) ([]models.StatusChangeResult, error) {
	defer s.metrics.ObserveRun(JobAutoRenewal, time.Now())

	now := s.now().UTC()
	candidates, err := s.contracts.FindRenewable(ctx, s.RenewalStatuses())
	if err != nil {
		return nil, fmt.Errorf("failed to list renewable contracts: %w", err)
	}

	var results []models.StatusChangeResult
	var failures []error
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return results, errors.Join(append(failures, err)...)
		}

		contract := &candidates[i]
		result, err := s.renew(ctx, contract, now)
		if err != nil {
			failures = append(failures, s.recordFailure(JobAutoRenewal, contract, err))
			continue
		}
		results = append(results, result)
	}

	logger.Info("Automatic renewal completed", "candidates", len(candidates), "renewed", len(results), "failed", len(failures))
	return results, errors.Join(failures...)
}

func (s *LifecycleService) renew(ctx context.Context, contract *models.Contract, now time.Time) (models.StatusChangeResult, error) {
	successor, err := contract.NewSuccessor()
	if err != nil {
		return models.StatusChangeResult{}, errors.Join(ErrInvalidRenewalTerm, err)
	}

	previous := contract.Status
	if err := statemachine.NewContractFSM(contract, s.renewNearExpiry).Fire(ctx, statemachine.EventRenew); err != nil {
		return models.StatusChangeResult{}, errors.Join(ErrInvalidState, err)
	}
	if err := s.contracts.Renew(ctx, contract, previous, successor); err != nil {
		return models.StatusChangeResult{}, mapRepoError(err)
	}

	s.metrics.IncTransition(JobAutoRenewal, contract.Status)
	result := newStatusChangeResult(contract, previous, now)
	result.SuccessorID = &successor.ID
	result.SuccessorExpiry = &successor.ExpiryDate
	return result, nil
}

func (s *LifecycleService) recordFailure(job string, contract *models.Contract, err error) error {
	err = fmt.Errorf("contract %s: %w", contract.Number, err)
	logger.Error("Lifecycle transition failed",
		"job", job,
		"contract_id", contract.ID,
		"contract_number", contract.Number,
		"status", contract.Status,
		"error", err,
	)
	s.metrics.IncFailure(job)

	hub := sentry.CurrentHub().Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("job", job)
		scope.SetTag("contract_number", contract.Number)
		hub.CaptureException(err)
	})
	return err
}

func newStatusChangeResult(contract *models.Contract, previous string, now time.Time) models.StatusChangeResult {
	code, _ := notifications.StatusCode(contract.Status)
	return models.StatusChangeResult{
		ContractID:     contract.ID,
		ContractNumber: contract.Number,
		Subject:        contract.Subject,
		ReferentEmail:  contract.ReferentEmail,
		ExpiryDate:     contract.ExpiryDate,
		PreviousStatus: previous,
		NewStatus:      contract.Status,
		OperationCode:  code,
		ChangedAt:      now,
	}
}
