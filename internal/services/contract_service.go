package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sjperalta/registro-api/internal/models"
	"github.com/sjperalta/registro-api/internal/repository"
)

// ContractService exposes read access to the registry. Contracts are written
// by the lifecycle batch and by the owning registry application.
type ContractService struct {
	contractRepo repository.ContractRepository
}

func NewContractService(contractRepo repository.ContractRepository) *ContractService {
	return &ContractService{contractRepo: contractRepo}
}

func (s *ContractService) List(ctx context.Context, query *repository.ContractQuery) ([]models.Contract, int64, error) {
	return s.contractRepo.List(ctx, query)
}

// FindByID returns ErrNotFound for unknown or logically deleted contracts
// unless includeDeleted is set.
func (s *ContractService) FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*models.Contract, error) {
	contract, err := s.contractRepo.FindByID(ctx, id, includeDeleted)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return contract, nil
}
