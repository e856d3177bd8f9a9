package statemachine

import (
	"context"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"github.com/sjperalta/registro-api/internal/models"
)

// Contract lifecycle events
const (
	EventApproachExpiry = "approach_expiry"
	EventExpire         = "expire"
	EventRenew          = "renew"
)

// ContractFSM wraps a contract with its lifecycle state machine
type ContractFSM struct {
	contract *models.Contract
	fsm      *fsm.FSM
}

// NewContractFSM creates a new contract state machine. When renewNearExpiry
// is set, contracts close to expiry may be renewed without expiring first.
func NewContractFSM(contract *models.Contract, renewNearExpiry bool) *ContractFSM {
	cfsm := &ContractFSM{
		contract: contract,
	}

	renewFrom := []string{models.ContractStatusExpired}
	if renewNearExpiry {
		renewFrom = append(renewFrom, models.ContractStatusNearExpiry)
	}

	cfsm.fsm = fsm.NewFSM(
		contract.Status,
		fsm.Events{
			// active → near_expiry
			{Name: EventApproachExpiry, Src: []string{models.ContractStatusActive}, Dst: models.ContractStatusNearExpiry},

			// active/near_expiry → expired
			{Name: EventExpire, Src: []string{models.ContractStatusActive, models.ContractStatusNearExpiry}, Dst: models.ContractStatusExpired},

			// expired (near_expiry by policy) → renewed
			{Name: EventRenew, Src: renewFrom, Dst: models.ContractStatusRenewed},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				contract.Status = e.Dst
			},
		},
	)

	return cfsm
}

// Fire applies event to the contract and updates its status
func (c *ContractFSM) Fire(ctx context.Context, event string) error {
	if err := c.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("contract %s cannot %s from %s: %w", c.contract.Number, event, c.contract.Status, err)
	}
	return nil
}

// Current returns the current state
func (c *ContractFSM) Current() string {
	return c.fsm.Current()
}

// Can checks if a transition is possible
func (c *ContractFSM) Can(event string) bool {
	return c.fsm.Can(event)
}

// DateOf returns the calendar day of t as observed in loc, expressed as
// midnight UTC so days compare and add without offsets. A nil loc is UTC.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ExpiryEvent returns the lifecycle event the expiry routine should fire for
// contract at instant now, reading both now and the expiry date as calendar
// days in loc. Contracts expiring strictly before today expire; active
// contracts expiring within lookAhead of today approach expiry. It returns
// false when no transition is due, including when the contract already sits
// in the target state.
func ExpiryEvent(contract *models.Contract, now time.Time, lookAhead time.Duration, loc *time.Location) (string, bool) {
	today := DateOf(now, loc)
	expiry := DateOf(contract.ExpiryDate, loc)

	switch contract.Status {
	case models.ContractStatusActive, models.ContractStatusNearExpiry:
	default:
		return "", false
	}

	if expiry.Before(today) {
		return EventExpire, true
	}
	if contract.Status == models.ContractStatusActive && !expiry.After(today.Add(lookAhead)) {
		return EventApproachExpiry, true
	}
	return "", false
}

// ExpiryHorizon is the exclusive upper bound on stored expiry instants the
// expiry routine needs to look at: midnight in loc of the day after the
// look-ahead window ends.
func ExpiryHorizon(now time.Time, lookAhead time.Duration, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	end := DateOf(now, loc).Add(lookAhead).AddDate(0, 0, 1)
	return time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
}
