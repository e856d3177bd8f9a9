package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sjperalta/registro-api/internal/audit"
	"github.com/sjperalta/registro-api/internal/models"
	"gorm.io/gorm"
)

// ErrStaleRecord is returned when an update matched no live row: the record
// does not exist, is soft-deleted, or no longer holds the expected values.
var ErrStaleRecord = errors.New("record missing, deleted or changed concurrently")

// Store commits sets of auditable changes. Every commit runs the audit
// interceptor over the whole set and then writes it in one transaction, so
// audit fields are persisted only if the business write is.
type Store struct {
	db          *gorm.DB
	interceptor *audit.Interceptor
}

// NewStore creates a store writing through db
func NewStore(db *gorm.DB, interceptor *audit.Interceptor) *Store {
	if interceptor == nil {
		interceptor = audit.NewInterceptor()
	}
	return &Store{db: db, interceptor: interceptor}
}

// Commit stamps and writes changes atomically. Deletions are written as
// tombstone updates; no row is ever physically removed.
func (s *Store) Commit(ctx context.Context, changes ...audit.Change) error {
	return s.CommitWith(ctx, nil, changes...)
}

// CommitWith is Commit with prepare run first inside the same transaction,
// for changes whose values depend on rows read under that transaction.
func (s *Store) CommitWith(ctx context.Context, prepare func(tx *gorm.DB) error, changes ...audit.Change) error {
	pending := s.interceptor.Apply(ctx, changes)
	if len(pending) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if prepare != nil {
			if err := prepare(tx); err != nil {
				return err
			}
		}
		for _, ch := range pending {
			if err := write(tx, ch); err != nil {
				return err
			}
		}
		return nil
	})
}

func write(tx *gorm.DB, ch audit.Change) error {
	switch ch.Kind {
	case audit.Added:
		q := tx
		if len(ch.Omit) > 0 {
			q = q.Omit(ch.Omit...)
		}
		if err := q.Create(ch.Entity).Error; err != nil {
			return fmt.Errorf("insert %T: %w", ch.Entity, err)
		}
		return nil

	case audit.Modified:
		// Updates only ever touch live rows, so a tombstone cannot be cleared
		// and a deletion is stamped once.
		q := tx.Model(ch.Entity).Where(models.ColumnIsDeleted+" = ?", false)
		if len(ch.Expect) > 0 {
			q = q.Where(map[string]interface{}(ch.Expect))
		}
		if len(ch.Select) > 0 {
			q = q.Select(ch.Select)
		} else {
			q = q.Select("*")
		}
		if len(ch.Omit) > 0 {
			q = q.Omit(ch.Omit...)
		}

		result := q.Updates(ch.Entity)
		if result.Error != nil {
			return fmt.Errorf("update %T %s: %w", ch.Entity, ch.Entity.GetID(), result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("update %T %s: %w", ch.Entity, ch.Entity.GetID(), ErrStaleRecord)
		}
		return nil

	default:
		return fmt.Errorf("unsupported change kind %s", ch.Kind)
	}
}

// liveOnly is the default read predicate hiding soft-deleted rows. Callers
// opt out explicitly with includeDeleted.
func liveOnly(includeDeleted bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if includeDeleted {
			return db
		}
		return db.Where(models.ColumnIsDeleted+" = ?", false)
	}
}
