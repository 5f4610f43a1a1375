package softdelete

import (
	"context"

	"gorm.io/gorm"
)

// restoreDependents walks the parent's declared relationships and, for each
// one flagged CascadeOnDestroy, restores the destroyed children keyed by the
// parent's id, recursing into each child's own dependents. Relationships
// without the flag are never inspected. A persistence error aborts the
// remaining cascade; rows already restored stay restored.
//
// The dependency graph is assumed acyclic: cascade only follows the declared
// dependent direction, and a cyclic declaration is an external-data error
// this walk does not guard against.
func (r *Registry) restoreDependents(ctx context.Context, db *gorm.DB, parent *Entity, parentID any) error {
	for _, rel := range parent.relationsSnapshot() {
		if !rel.CascadeOnDestroy {
			continue
		}
		child := rel.target

		ids, err := child.idsByForeignKey(ctx, db, rel.fk.DBName, parentID, scopeDestroyedOnly)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := child.restoreRow(ctx, db, id); err != nil {
				return err
			}
			if err := r.restoreDependents(ctx, db, child, id); err != nil {
				return err
			}
		}
		if len(ids) > 0 {
			r.log.Debugw("dependents restored",
				"relation", rel.Name,
				"table", child.table,
				"count", len(ids))
		}
	}
	return nil
}

// destroyDependents is the destroy-side counterpart: live children of
// CascadeOnDestroy relationships are marked destroyed along with the parent,
// depth first. Children destroyed earlier keep their original marker value.
func (r *Registry) destroyDependents(ctx context.Context, db *gorm.DB, parent *Entity, parentID any) error {
	for _, rel := range parent.relationsSnapshot() {
		if !rel.CascadeOnDestroy {
			continue
		}
		child := rel.target

		ids, err := child.idsByForeignKey(ctx, db, rel.fk.DBName, parentID, scopeDefault)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := child.destroyRow(ctx, db, id); err != nil {
				return err
			}
			if err := r.destroyDependents(ctx, db, child, id); err != nil {
				return err
			}
		}
		if len(ids) > 0 {
			r.log.Debugw("dependents destroyed",
				"relation", rel.Name,
				"table", child.table,
				"count", len(ids))
		}
	}
	return nil
}
