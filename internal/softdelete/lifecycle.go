package softdelete

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BeforeDestroyHook is implemented by models that want a veto on destroy.
// Returning an error aborts the destroy before any row is touched.
type BeforeDestroyHook interface {
	BeforeDestroy(tx *gorm.DB) error
}

// AfterDestroyHook is implemented by models that want to run after a
// successful marker update.
type AfterDestroyHook interface {
	AfterDestroy(tx *gorm.DB) error
}

// RestoreOptions controls Restore behavior.
type RestoreOptions struct {
	// IncludeDestroyedDependents cascades the restore through relationships
	// declared CascadeOnDestroy. Defaults to true.
	IncludeDestroyedDependents bool
}

// Destroy marks the record destroyed instead of deleting its row, preserving
// destroy-hook semantics: BeforeDestroy may abort (ErrDestroyAborted, no
// mutation), AfterDestroy runs only after the marker update succeeded.
// Dependent relationships declared CascadeOnDestroy are marked along with
// the record. Destroying an already-destroyed record is a no-op.
func (s *Store[T]) Destroy(ctx context.Context, record *T) error {
	if h, ok := any(record).(BeforeDestroyHook); ok {
		if err := h.BeforeDestroy(s.db.WithContext(ctx)); err != nil {
			return fmt.Errorf("%w: %w", ErrDestroyAborted, err)
		}
	}

	id, err := s.entity.primaryKeyValue(ctx, record)
	if err != nil {
		return err
	}

	marked, err := s.destroyByID(ctx, record, id)
	if err != nil {
		return err
	}
	if !marked {
		s.log.Debugw("destroy skipped, record already destroyed", "id", id)
		return nil
	}

	if err := s.registry.destroyDependents(ctx, s.db, s.entity, id); err != nil {
		return err
	}

	if h, ok := any(record).(AfterDestroyHook); ok {
		if err := h.AfterDestroy(s.db.WithContext(ctx)); err != nil {
			return err
		}
	}

	s.log.Infow("record destroyed", "id", id)
	return nil
}

// DestroyWithoutHooks sets the destroyed marker on exactly the row matching
// the record's primary key, skipping destroy hooks and cascade. Bulk paths
// and callers that already ran hooks use this primitive.
func (s *Store[T]) DestroyWithoutHooks(ctx context.Context, record *T) error {
	id, err := s.entity.primaryKeyValue(ctx, record)
	if err != nil {
		return err
	}
	_, err = s.destroyByID(ctx, record, id)
	return err
}

// destroyByID updates the marker under the default (filtered) scope so an
// already-destroyed row keeps its original marker value. On success the
// in-memory record's marker field is updated to match.
func (s *Store[T]) destroyByID(ctx context.Context, record *T, id any) (bool, error) {
	value := s.entity.policy.destroyedValue()
	tx := s.scopedQuery(ctx, scopeDefault).
		Where(clause.Eq{Column: s.entity.pkColumn(), Value: id}).
		Update(s.entity.policy.Column, value)
	if tx.Error != nil {
		s.log.Errorw("failed to destroy record", "error", tx.Error, "id", id)
		return false, fmt.Errorf("softdelete: destroy %s %v: %w", s.entity.table, id, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return false, nil
	}
	if err := s.entity.setMarker(ctx, record, value); err != nil {
		return true, err
	}
	return true, nil
}

// DestroyAll marks every live row matching conds destroyed, without hooks or
// cascade. Returns the number of rows marked.
func (s *Store[T]) DestroyAll(ctx context.Context, conds ...any) (int64, error) {
	tx := applyConds(s.scopedQuery(ctx, scopeDefault), conds).
		Update(s.entity.policy.Column, s.entity.policy.destroyedValue())
	if tx.Error != nil {
		s.log.Errorw("failed to destroy records", "error", tx.Error)
		return 0, fmt.Errorf("softdelete: destroy all %s: %w", s.entity.table, tx.Error)
	}
	return tx.RowsAffected, nil
}

// Delete physically removes the row matching id, whatever its marker state.
// This is the hard-delete escape hatch; there is no way back.
func (s *Store[T]) Delete(ctx context.Context, id any) error {
	tx := s.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: s.entity.pk.DBName}, Value: id}).
		Delete(new(T))
	if tx.Error != nil {
		s.log.Errorw("failed to delete record", "error", tx.Error, "id", id)
		return fmt.Errorf("softdelete: delete %s %v: %w", s.entity.table, id, tx.Error)
	}
	s.log.Infow("record deleted", "id", id)
	return nil
}

// DeleteAll physically removes every row matching conds, whatever their
// marker state. GORM's global-delete protection applies: empty conds fail.
func (s *Store[T]) DeleteAll(ctx context.Context, conds ...any) (int64, error) {
	tx := applyConds(s.db.WithContext(ctx), conds).Delete(new(T))
	if tx.Error != nil {
		s.log.Errorw("failed to delete records", "error", tx.Error)
		return 0, fmt.Errorf("softdelete: delete all %s: %w", s.entity.table, tx.Error)
	}
	return tx.RowsAffected, nil
}

// Restore writes the not-destroyed marker on the row matching id and, unless
// opted out, cascades through destroyed dependents. Restoring a live row is
// a no-op. A failed self-restore aborts before any cascading; a failure
// mid-cascade leaves earlier children restored (partial cascade is an
// observable outcome, callers needing atomicity supply a transaction).
func (s *Store[T]) Restore(ctx context.Context, id any, opts ...RestoreOptions) error {
	opt := RestoreOptions{IncludeDestroyedDependents: true}
	if len(opts) > 0 {
		opt = opts[0]
	}

	if err := s.entity.restoreRow(ctx, s.db, id); err != nil {
		s.log.Errorw("failed to restore record", "error", err, "id", id)
		return err
	}
	if opt.IncludeDestroyedDependents {
		if err := s.registry.restoreDependents(ctx, s.db, s.entity, id); err != nil {
			return err
		}
	}

	s.log.Infow("record restored", "id", id, "with_dependents", opt.IncludeDestroyedDependents)
	return nil
}
