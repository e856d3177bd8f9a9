package repository

import (
	"github.com/sjperalta/registro-api/internal/audit"
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Store        *Store
	User         UserRepository
	Contract     ContractRepository
	Notification NotificationOperationRepository
}

// NewRepositories creates all repository instances sharing one audited store
func NewRepositories(db *gorm.DB, interceptor *audit.Interceptor) *Repositories {
	store := NewStore(db, interceptor)
	return &Repositories{
		Store:        store,
		User:         NewUserRepository(db, store),
		Contract:     NewContractRepository(db, store),
		Notification: NewNotificationOperationRepository(db, store),
	}
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	// IncludeDeleted lifts the default soft-delete filter
	IncludeDeleted bool
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
	}
}

func (q *ListQuery) paginate(db *gorm.DB) *gorm.DB {
	if q.PerPage <= 0 {
		return db
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	return db.Offset((page - 1) * q.PerPage).Limit(q.PerPage)
}
