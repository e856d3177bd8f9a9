package repository

import (
	"context"

	"github.com/sjperalta/registro-api/internal/audit"
	"github.com/sjperalta/registro-api/internal/models"
	"gorm.io/gorm"
)

// NotificationOperationRepository defines data access for the per-code
// notification configuration
type NotificationOperationRepository interface {
	FindAll(ctx context.Context) ([]models.NotificationOperation, error)
	FindByCode(ctx context.Context, code string) (*models.NotificationOperation, error)
	Create(ctx context.Context, op *models.NotificationOperation) error
	Update(ctx context.Context, op *models.NotificationOperation) error
}

type notificationOperationRepository struct {
	db    *gorm.DB
	store *Store
}

// NewNotificationOperationRepository creates a new notification operation repository
func NewNotificationOperationRepository(db *gorm.DB, store *Store) NotificationOperationRepository {
	return &notificationOperationRepository{db: db, store: store}
}

func (r *notificationOperationRepository) FindAll(ctx context.Context) ([]models.NotificationOperation, error) {
	var ops []models.NotificationOperation
	err := r.db.WithContext(ctx).
		Scopes(liveOnly(false)).
		Order("module ASC").
		Order("code ASC").
		Find(&ops).Error
	return ops, err
}

func (r *notificationOperationRepository) FindByCode(ctx context.Context, code string) (*models.NotificationOperation, error) {
	var op models.NotificationOperation
	err := r.db.WithContext(ctx).
		Scopes(liveOnly(false)).
		Where("code = ?", code).
		First(&op).Error
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *notificationOperationRepository) Create(ctx context.Context, op *models.NotificationOperation) error {
	return r.store.Commit(ctx, audit.Create(op))
}

// Update writes the admin-editable columns only
func (r *notificationOperationRepository) Update(ctx context.Context, op *models.NotificationOperation) error {
	return r.store.Commit(ctx, audit.Update(op, "enabled", "subject_override", "description"))
}
