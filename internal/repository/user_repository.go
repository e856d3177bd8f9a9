package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sjperalta/registro-api/internal/audit"
	"github.com/sjperalta/registro-api/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindAdmins(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	db    *gorm.DB
	store *Store
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB, store *Store) UserRepository {
	return &userRepository{db: db, store: store}
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Scopes(liveOnly(false)).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Scopes(liveOnly(false)).
		Where("LOWER(username) = LOWER(?)", username).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAdmins returns the active administrators, the recipients of batch digests
func (r *userRepository) FindAdmins(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Scopes(liveOnly(false)).
		Where("role = ? AND active = ?", models.RoleAdmin, true).
		Order("username ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleOperator
	}
	return r.store.Commit(ctx, audit.Create(user))
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.store.Commit(ctx, audit.Update(user))
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return r.store.Commit(ctx, audit.Delete(user))
}
