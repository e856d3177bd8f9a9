package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an operator account. It carries its own audit columns instead of
// embedding Base because account rows are owned by the identity provider
// schema.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username string    `gorm:"size:100;not null;uniqueIndex" json:"username"`
	Email    string    `gorm:"size:255;not null" json:"email"`
	FullName string    `gorm:"size:255" json:"full_name"`
	Role     string    `gorm:"size:20;not null;index" json:"role"`
	Active   bool      `gorm:"not null;index" json:"active"`

	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	CreatedBy  string     `gorm:"size:100;not null" json:"created_by"`
	ModifiedAt *time.Time `json:"modified_at"`
	ModifiedBy *string    `gorm:"size:100" json:"modified_by"`
	IsDeleted  bool       `gorm:"not null;index" json:"-"`
	DeletedAt  *time.Time `json:"-"`
	DeletedBy  *string    `gorm:"size:100" json:"-"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// Role constants
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// IsAdmin returns true if user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) GetID() uuid.UUID {
	return u.ID
}

func (u *User) SetID(id uuid.UUID) {
	u.ID = id
}

func (u *User) GetAuditTrail() AuditTrail {
	return AuditTrail{
		CreatedAt:  u.CreatedAt,
		CreatedBy:  u.CreatedBy,
		ModifiedAt: u.ModifiedAt,
		ModifiedBy: u.ModifiedBy,
		IsDeleted:  u.IsDeleted,
		DeletedAt:  u.DeletedAt,
		DeletedBy:  u.DeletedBy,
	}
}

func (u *User) SetAuditTrail(trail AuditTrail) {
	u.CreatedAt = trail.CreatedAt
	u.CreatedBy = trail.CreatedBy
	u.ModifiedAt = trail.ModifiedAt
	u.ModifiedBy = trail.ModifiedBy
	u.IsDeleted = trail.IsDeleted
	u.DeletedAt = trail.DeletedAt
	u.DeletedBy = trail.DeletedBy
}
