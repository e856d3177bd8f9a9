package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Contract is an entry of the contract registry
type Contract struct {
	Base
	Number            string     `gorm:"size:50;not null;uniqueIndex" json:"number"`
	Subject           string     `gorm:"size:255;not null" json:"subject"`
	Supplier          string     `gorm:"size:255;not null" json:"supplier"`
	ReferentEmail     string     `gorm:"size:255" json:"referent_email"`
	Amount            *float64   `gorm:"type:decimal(14,2)" json:"amount"`
	Currency          string     `gorm:"size:3;not null" json:"currency"`
	StartDate         time.Time  `gorm:"not null" json:"start_date"`
	ExpiryDate        time.Time  `gorm:"not null;index" json:"expiry_date"`
	Status            string     `gorm:"size:20;not null;index" json:"status"`
	RenewalPolicy     bool       `gorm:"not null" json:"renewal_policy"`
	RenewalTermMonths int        `gorm:"not null" json:"renewal_term_months"`
	PredecessorID     *uuid.UUID `gorm:"type:uuid;index" json:"predecessor_id"`
	Note              *string    `gorm:"type:text" json:"note"`
}

// TableName specifies the table name for Contract
func (Contract) TableName() string {
	return "contracts"
}

// Contract status constants
const (
	ContractStatusActive     = "active"
	ContractStatusNearExpiry = "near_expiry"
	ContractStatusExpired    = "expired"
	ContractStatusRenewed    = "renewed"
)

// DefaultCurrency is used when a contract is registered without one
const DefaultCurrency = "EUR"

const renewalSuffix = "-R"

// ContractStatuses lists every valid status
func ContractStatuses() []string {
	return []string{
		ContractStatusActive,
		ContractStatusNearExpiry,
		ContractStatusExpired,
		ContractStatusRenewed,
	}
}

// IsValidContractStatus reports whether s is a known contract status
func IsValidContractStatus(s string) bool {
	for _, status := range ContractStatuses() {
		if status == s {
			return true
		}
	}
	return false
}

// RenewalGeneration returns how many automatic renewals precede this
// contract, read from its number suffix (ABC-1 → 0, ABC-1-R2 → 2).
func (c *Contract) RenewalGeneration() int {
	idx := strings.LastIndex(c.Number, renewalSuffix)
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(c.Number[idx+len(renewalSuffix):])
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// RootNumber is the contract number without the renewal suffix
func (c *Contract) RootNumber() string {
	if c.RenewalGeneration() == 0 {
		return c.Number
	}
	return c.Number[:strings.LastIndex(c.Number, renewalSuffix)]
}

// SuccessorNumber returns the number of c's next renewal: the root number
// with a generation one above both c's and every number in taken sharing the
// same root. taken should include logically deleted rows, which keep their
// number.
func (c *Contract) SuccessorNumber(taken []string) string {
	root := c.RootNumber()
	gen := c.RenewalGeneration()
	for _, number := range taken {
		other := Contract{Number: number}
		if other.RootNumber() == root && other.RenewalGeneration() > gen {
			gen = other.RenewalGeneration()
		}
	}
	return fmt.Sprintf("%s%s%d", root, renewalSuffix, gen+1)
}

// AddMonthsClamped moves t forward by months calendar months, keeping the
// day of month unless the target month is shorter, in which case the result
// is that month's last day (Jan 31 + 1 month is Feb 28 or 29).
func AddMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// NewSuccessor builds the renewal record that replaces c. The successor
// starts the day after c expires and runs for c's renewal term. Its number
// assumes no later generation exists; the repository reassigns it against
// the stored numbers when the renewal is committed.
func (c *Contract) NewSuccessor() (*Contract, error) {
	if c.RenewalTermMonths <= 0 {
		return nil, fmt.Errorf("contract %s has renewal term %d months", c.Number, c.RenewalTermMonths)
	}

	predecessor := c.ID
	successor := &Contract{
		Number:            c.SuccessorNumber(nil),
		Subject:           c.Subject,
		Supplier:          c.Supplier,
		ReferentEmail:     c.ReferentEmail,
		Currency:          c.Currency,
		StartDate:         c.ExpiryDate.AddDate(0, 0, 1),
		ExpiryDate:        AddMonthsClamped(c.ExpiryDate, c.RenewalTermMonths),
		Status:            ContractStatusActive,
		RenewalPolicy:     c.RenewalPolicy,
		RenewalTermMonths: c.RenewalTermMonths,
		PredecessorID:     &predecessor,
	}
	if c.Amount != nil {
		amount := *c.Amount
		successor.Amount = &amount
	}
	if successor.Currency == "" {
		successor.Currency = DefaultCurrency
	}
	return successor, nil
}
