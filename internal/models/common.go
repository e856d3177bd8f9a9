package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationOperation is the persisted configuration for one catalog
// operation code. Rows are seeded from the catalog and edited by admins.
type NotificationOperation struct {
	Base
	Code            string  `gorm:"size:64;not null;uniqueIndex" json:"code"`
	Description     string  `gorm:"size:255;not null" json:"description"`
	Module          string  `gorm:"size:50;not null;index" json:"module"`
	Enabled         bool    `gorm:"not null" json:"enabled"`
	SubjectOverride *string `gorm:"size:255" json:"subject_override"`
}

// TableName specifies the table name for NotificationOperation
func (NotificationOperation) TableName() string {
	return "notification_operations"
}

// StatusChangeResult summarizes one lifecycle transition made by a batch
// run. It is never persisted.
type StatusChangeResult struct {
	ContractID      uuid.UUID  `json:"contract_id"`
	ContractNumber  string     `json:"contract_number"`
	Subject         string     `json:"subject"`
	ReferentEmail   string     `json:"-"`
	ExpiryDate      time.Time  `json:"expiry_date"`
	PreviousStatus  string     `json:"previous_status"`
	NewStatus       string     `json:"new_status"`
	SuccessorID     *uuid.UUID `json:"successor_id,omitempty"`
	SuccessorExpiry *time.Time `json:"successor_expiry,omitempty"`
	OperationCode   string     `json:"operation_code"`
	ChangedAt       time.Time  `json:"changed_at"`
}

// IsRenewal returns true if the result links a successor record
func (r StatusChangeResult) IsRenewal() bool {
	return r.SuccessorID != nil
}
