package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/registro-api/internal/audit"
	"github.com/sjperalta/registro-api/internal/models"
	"gorm.io/gorm"
)

// ContractRepository defines the interface for contract data access
type ContractRepository interface {
	FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*models.Contract, error)
	FindByNumber(ctx context.Context, number string) (*models.Contract, error)
	List(ctx context.Context, query *ContractQuery) ([]models.Contract, int64, error)
	FindDueForTransition(ctx context.Context, statuses []string, expiringBefore time.Time) ([]models.Contract, error)
	FindRenewable(ctx context.Context, statuses []string) ([]models.Contract, error)
	Create(ctx context.Context, contract *models.Contract) error
	Update(ctx context.Context, contract *models.Contract) error
	Delete(ctx context.Context, id uuid.UUID) error
	TransitionStatus(ctx context.Context, contract *models.Contract, from string) error
	Renew(ctx context.Context, source *models.Contract, from string, successor *models.Contract) error
}

// ContractQuery extends ListQuery with contract-specific filters
type ContractQuery struct {
	*ListQuery
	Status        string
	Supplier      string
	ExpiringFrom  *time.Time
	ExpiringUntil *time.Time
}

type contractRepository struct {
	db    *gorm.DB
	store *Store
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB, store *Store) ContractRepository {
	return &contractRepository{db: db, store: store}
}

func (r *contractRepository) FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Scopes(liveOnly(includeDeleted)).
		Where("id = ?", id).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindByNumber(ctx context.Context, number string) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Scopes(liveOnly(false)).
		Where("number = ?", number).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) List(ctx context.Context, query *ContractQuery) ([]models.Contract, int64, error) {
	if query == nil {
		query = &ContractQuery{}
	}
	if query.ListQuery == nil {
		query.ListQuery = NewListQuery()
	}

	var contracts []models.Contract
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Contract{}).Scopes(liveOnly(query.IncludeDeleted))

	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.Supplier != "" {
		db = db.Where("supplier = ?", query.Supplier)
	}
	if query.ExpiringFrom != nil {
		db = db.Where("expiry_date >= ?", *query.ExpiringFrom)
	}
	if query.ExpiringUntil != nil {
		db = db.Where("expiry_date <= ?", *query.ExpiringUntil)
	}
	if query.Search != "" {
		search := "%" + strings.ToLower(query.Search) + "%"
		db = db.Where("LOWER(number) LIKE ? OR LOWER(subject) LIKE ? OR LOWER(supplier) LIKE ?", search, search, search)
	}

	// Count total using a separate session so the main query is not altered by Count()
	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch query.SortBy {
	case "number", "expiry_date", "created_at", "status", "supplier":
		order := query.SortBy
		if strings.ToLower(query.SortDir) == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	default:
		db = db.Order("expiry_date ASC").Order("number ASC")
	}

	err := query.paginate(db).Find(&contracts).Error
	return contracts, total, err
}

// FindDueForTransition returns live contracts in one of statuses that expire
// before expiringBefore, in stable batch order.
func (r *contractRepository) FindDueForTransition(ctx context.Context, statuses []string, expiringBefore time.Time) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.WithContext(ctx).
		Scopes(liveOnly(false), batchOrder).
		Where("status IN ?", statuses).
		Where("expiry_date < ?", expiringBefore).
		Find(&contracts).Error
	return contracts, err
}

// FindRenewable returns live contracts in one of statuses with automatic
// renewal enabled, in stable batch order.
func (r *contractRepository) FindRenewable(ctx context.Context, statuses []string) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.WithContext(ctx).
		Scopes(liveOnly(false), batchOrder).
		Where("status IN ?", statuses).
		Where("renewal_policy = ?", true).
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) Create(ctx context.Context, contract *models.Contract) error {
	if contract.Currency == "" {
		contract.Currency = models.DefaultCurrency
	}
	if contract.Status == "" {
		contract.Status = models.ContractStatusActive
	}
	return r.store.Commit(ctx, audit.Create(contract))
}

func (r *contractRepository) Update(ctx context.Context, contract *models.Contract) error {
	return r.store.Commit(ctx, audit.Update(contract))
}

func (r *contractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	contract, err := r.FindByID(ctx, id, false)
	if err != nil {
		return err
	}
	return r.store.Commit(ctx, audit.Delete(contract))
}

// TransitionStatus writes contract.Status, provided the stored row still
// has status from.
func (r *contractRepository) TransitionStatus(ctx context.Context, contract *models.Contract, from string) error {
	change := audit.Update(contract, "status")
	change.Expect = map[string]any{"status": from}
	return r.store.Commit(ctx, change)
}

// Renew inserts successor and moves source out of status from in one
// transaction. The successor number is picked inside that transaction as the
// next generation free across all rows, deleted ones included.
func (r *contractRepository) Renew(ctx context.Context, source *models.Contract, from string, successor *models.Contract) error {
	transition := audit.Update(source, "status")
	transition.Expect = map[string]any{"status": from}
	return r.store.CommitWith(ctx, func(tx *gorm.DB) error {
		taken, err := renewalNumbers(tx, source.RootNumber())
		if err != nil {
			return err
		}
		successor.Number = source.SuccessorNumber(taken)
		return nil
	}, transition, audit.Create(successor))
}

// renewalNumbers lists every stored number, live or deleted, that may be a
// renewal of root. LIKE wildcards in root can match extra rows; callers
// compare roots exactly.
func renewalNumbers(tx *gorm.DB, root string) ([]string, error) {
	var numbers []string
	err := tx.Model(&models.Contract{}).
		Where("number LIKE ?", root+"-R%").
		Pluck("number", &numbers).Error
	if err != nil {
		return nil, fmt.Errorf("list renewal numbers of %s: %w", root, err)
	}
	return numbers, nil
}

// batchOrder is the deterministic processing order for lifecycle jobs
func batchOrder(db *gorm.DB) *gorm.DB {
	return db.Order("expiry_date ASC").Order("number ASC").Order("id ASC")
}
