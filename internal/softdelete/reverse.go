package softdelete

import (
	"context"
	"fmt"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Accessor loads a related record for the given child record. Installed
// accessors bypass the default filter so a soft-deleted parent is still
// reachable from its children.
type Accessor func(ctx context.Context, db *gorm.DB, child any) (any, error)

// installReverseAccessor installs "<reciprocal>_with_destroyed" on the child
// entity: it reads the foreign key off a child record and loads the parent
// by primary key with the filter suspended. Installation is idempotent; an
// accessor already present under that name is left alone.
func (e *Entity) installReverseAccessor(child *Entity, rel Relationship, fk *schema.Field) {
	name := rel.Reciprocal + SuffixWithDestroyed

	child.mu.Lock()
	defer child.mu.Unlock()
	if _, ok := child.accessors[name]; ok {
		return
	}

	parent := e
	child.accessors[name] = func(ctx context.Context, db *gorm.DB, record any) (any, error) {
		rv := reflect.Indirect(reflect.ValueOf(record))
		if !rv.IsValid() || rv.Kind() != reflect.Struct {
			return nil, fmt.Errorf("%w: expected a %s record, got %T",
				ErrInvalidModel, child.table, record)
		}
		fkValue, zero := fk.ValueOf(ctx, rv)
		if zero {
			return nil, gorm.ErrRecordNotFound
		}
		return parent.findAny(ctx, db, fkValue, true)
	}

	e.registry.log.Debugw("reverse accessor installed",
		"table", child.table,
		"accessor", name,
		"parent", parent.table)
}

// Accessor returns the named accessor installed on the entity.
func (e *Entity) Accessor(name string) (Accessor, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.accessors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q on %s", ErrUnknownAccessor, name, e.table)
	}
	return a, nil
}

// Accessors returns the names of the accessors installed on the entity.
func (e *Entity) Accessors() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.accessors))
	for name := range e.accessors {
		names = append(names, name)
	}
	return names
}

// Parent resolves an installed accessor against a record of this store's
// type, typically "<belongs_to>_with_destroyed" reaching a soft-deleted
// parent. The result is a pointer to the parent's model type.
func (s *Store[T]) Parent(ctx context.Context, record *T, name string) (any, error) {
	a, err := s.entity.Accessor(name)
	if err != nil {
		return nil, err
	}
	return a(ctx, s.db, record)
}
