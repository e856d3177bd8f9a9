package services

import (
	"errors"

	"github.com/sjperalta/registro-api/internal/jobs"
	"github.com/sjperalta/registro-api/internal/repository"
	"gorm.io/gorm"
)

// Common service errors
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidState       = errors.New("invalid status transition")
	ErrInvalidRenewalTerm = errors.New("renewal term must be at least one month")
	ErrJobRunning         = jobs.ErrJobRunning
	ErrUnknownJob         = jobs.ErrUnknownJob
)

// mapRepoError translates repository errors into service errors
func mapRepoError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, repository.ErrStaleRecord) {
		return errors.Join(ErrNotFound, err)
	}
	return err
}
