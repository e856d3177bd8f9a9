// Package audit stamps creation, modification and deletion metadata on
// pending record changes before they are committed, and turns deletions
// into tombstone updates.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/registro-api/internal/metrics"
	"github.com/sjperalta/registro-api/internal/models"
)

// ChangeKind tells the store how a pending change is written
type ChangeKind int

const (
	Added ChangeKind = iota + 1
	Modified
	Deleted
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Change is one pending write against an auditable record
type Change struct {
	Kind   ChangeKind
	Entity models.Auditable

	// Select restricts an update to these columns. Empty means all columns.
	Select []string
	// Omit lists columns that must never be written by this change.
	Omit []string
	// Expect holds column values the stored row must still have for an
	// update to apply.
	Expect map[string]any
}

// Create returns an Added change for entity
func Create(entity models.Auditable) Change {
	return Change{Kind: Added, Entity: entity}
}

// Update returns a Modified change for entity, limited to columns when given
func Update(entity models.Auditable, columns ...string) Change {
	return Change{Kind: Modified, Entity: entity, Select: columns}
}

// Delete returns a Deleted change for entity
func Delete(entity models.Auditable) Change {
	return Change{Kind: Deleted, Entity: entity}
}

var tombstoneColumns = []string{
	models.ColumnIsDeleted,
	models.ColumnDeletedAt,
	models.ColumnDeletedBy,
}

// Interceptor applies the audit rules to a set of pending changes
type Interceptor struct {
	now     func() time.Time
	newID   func() uuid.UUID
	metrics *metrics.Metrics
}

// Option configures an Interceptor
type Option func(*Interceptor)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(i *Interceptor) { i.now = now }
}

// WithIDGenerator overrides how new record ids are generated
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(i *Interceptor) { i.newID = newID }
}

// WithMetrics counts stamped changes
func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Interceptor) { i.metrics = m }
}

// NewInterceptor creates an interceptor using wall-clock time and random UUIDs
func NewInterceptor(opts ...Option) *Interceptor {
	i := &Interceptor{
		now:   time.Now,
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Apply stamps audit metadata on every change and returns the adjusted set.
// The caller identity comes from ctx. Apply never fails: writes that would
// break an audit invariant are dropped from the change instead.
func (i *Interceptor) Apply(ctx context.Context, changes []Change) []Change {
	identity := IdentityFromContext(ctx)
	now := i.now().UTC()

	out := make([]Change, 0, len(changes))
	for _, ch := range changes {
		if ch.Entity == nil {
			continue
		}
		i.metrics.IncAuditChange(ch.Kind.String())

		switch ch.Kind {
		case Added:
			out = append(out, i.added(ch, identity, now))
		case Modified:
			out = append(out, i.modified(ch, identity, now))
		case Deleted:
			out = append(out, i.deleted(ch, identity, now))
		default:
			out = append(out, ch)
		}
	}
	return out
}

func (i *Interceptor) added(ch Change, identity string, now time.Time) Change {
	if ch.Entity.GetID() == uuid.Nil {
		ch.Entity.SetID(i.newID())
	}
	ch.Entity.SetAuditTrail(models.AuditTrail{
		CreatedAt: now,
		CreatedBy: identity,
		IsDeleted: false,
	})
	return ch
}

func (i *Interceptor) modified(ch Change, identity string, now time.Time) Change {
	trail := ch.Entity.GetAuditTrail()
	ch.Omit = appendMissing(ch.Omit, models.ColumnCreatedAt, models.ColumnCreatedBy)

	if trail.IsDeleted {
		// Marked deleted within the update: tombstone only, no modified stamp.
		if trail.DeletedAt == nil {
			trail.DeletedAt = &now
			trail.DeletedBy = stringPtr(identity)
		}
		if len(ch.Select) > 0 {
			ch.Select = appendMissing(ch.Select, tombstoneColumns...)
		}
	} else {
		trail.ModifiedAt = &now
		trail.ModifiedBy = stringPtr(identity)
		ch.Omit = appendMissing(ch.Omit, tombstoneColumns...)
		if len(ch.Select) > 0 {
			ch.Select = appendMissing(ch.Select, models.ColumnModifiedAt, models.ColumnModifiedBy)
		}
	}

	ch.Entity.SetAuditTrail(trail)
	return ch
}

func (i *Interceptor) deleted(ch Change, identity string, now time.Time) Change {
	trail := ch.Entity.GetAuditTrail()
	if !trail.IsDeleted || trail.DeletedAt == nil {
		trail.IsDeleted = true
		trail.DeletedAt = &now
		trail.DeletedBy = stringPtr(identity)
	}
	ch.Entity.SetAuditTrail(trail)

	return Change{
		Kind:   Modified,
		Entity: ch.Entity,
		Select: append([]string(nil), tombstoneColumns...),
		Omit:   []string{models.ColumnCreatedAt, models.ColumnCreatedBy},
		Expect: ch.Expect,
	}
}

func appendMissing(cols []string, add ...string) []string {
	out := append([]string(nil), cols...)
	for _, a := range add {
		found := false
		for _, c := range out {
			if c == a {
				found = true
				break
			}
		}
		if !found {
			out = append(out, a)
		}
	}
	return out
}

func stringPtr(s string) *string {
	return &s
}
