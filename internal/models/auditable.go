package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit column names shared by every auditable table
const (
	ColumnID         = "id"
	ColumnCreatedAt  = "created_at"
	ColumnCreatedBy  = "created_by"
	ColumnModifiedAt = "modified_at"
	ColumnModifiedBy = "modified_by"
	ColumnIsDeleted  = "is_deleted"
	ColumnDeletedAt  = "deleted_at"
	ColumnDeletedBy  = "deleted_by"
)

// AuditTrail is the creation/modification/deletion metadata of a record
type AuditTrail struct {
	CreatedAt  time.Time
	CreatedBy  string
	ModifiedAt *time.Time
	ModifiedBy *string
	IsDeleted  bool
	DeletedAt  *time.Time
	DeletedBy  *string
}

// Auditable is implemented by every persisted record. The audit interceptor
// works against this interface only, so types are free to implement it
// without embedding Base.
type Auditable interface {
	GetID() uuid.UUID
	SetID(id uuid.UUID)
	GetAuditTrail() AuditTrail
	SetAuditTrail(trail AuditTrail)
}

// Base carries the id and audit columns for records that embed it
type Base struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt  time.Time  `gorm:"not null;index" json:"created_at"`
	CreatedBy  string     `gorm:"size:100;not null" json:"created_by"`
	ModifiedAt *time.Time `json:"modified_at"`
	ModifiedBy *string    `gorm:"size:100" json:"modified_by"`
	IsDeleted  bool       `gorm:"not null;index" json:"is_deleted"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	DeletedBy  *string    `gorm:"size:100" json:"deleted_by,omitempty"`
}

func (b *Base) GetID() uuid.UUID {
	return b.ID
}

func (b *Base) SetID(id uuid.UUID) {
	b.ID = id
}

func (b *Base) GetAuditTrail() AuditTrail {
	return AuditTrail{
		CreatedAt:  b.CreatedAt,
		CreatedBy:  b.CreatedBy,
		ModifiedAt: b.ModifiedAt,
		ModifiedBy: b.ModifiedBy,
		IsDeleted:  b.IsDeleted,
		DeletedAt:  b.DeletedAt,
		DeletedBy:  b.DeletedBy,
	}
}

func (b *Base) SetAuditTrail(trail AuditTrail) {
	b.CreatedAt = trail.CreatedAt
	b.CreatedBy = trail.CreatedBy
	b.ModifiedAt = trail.ModifiedAt
	b.ModifiedBy = trail.ModifiedBy
	b.IsDeleted = trail.IsDeleted
	b.DeletedAt = trail.DeletedAt
	b.DeletedBy = trail.DeletedBy
}
