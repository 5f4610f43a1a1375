package softdelete

import (
	"context"
	"reflect"

	"gorm.io/gorm"

	"paranoid/internal/shared/logger"
)

// Store is the query surface for one soft-deletable model type. Every query
// it builds starts from the entity's default filter; the scope mode is part
// of the store value, so switching scope produces a copy and the original
// keeps filtering untouched.
type Store[T any] struct {
	db       *gorm.DB
	registry *Registry
	entity   *Entity
	mode     scopeMode
	log      logger.Interface
}

// NewStore creates a store for T, which must have been registered first.
func NewStore[T any](db *gorm.DB, registry *Registry) (*Store[T], error) {
	e, err := registry.entityFor(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return nil, err
	}
	return &Store[T]{
		db:       db,
		registry: registry,
		entity:   e,
		log:      registry.log.With("table", e.table),
	}, nil
}

// Entity returns the store's entity descriptor.
func (s *Store[T]) Entity() *Entity { return s.entity }

// WithDestroyed returns a store whose queries see destroyed rows alongside
// live ones. The receiver is not modified.
func (s *Store[T]) WithDestroyed() *Store[T] {
	c := *s
	c.mode = scopeWithDestroyed
	return &c
}

// DestroyedOnly returns a store whose queries see strictly the destroyed
// subset. The receiver is not modified.
func (s *Store[T]) DestroyedOnly() *Store[T] {
	c := *s
	c.mode = scopeDestroyedOnly
	return &c
}

// WithExclusiveScope runs fn against a store with the default filter
// suspended. This is the sole authorized way to see destroyed rows through a
// filtered store. The receiver is untouched, so filtering resumes for every
// later query no matter how fn returns.
func (s *Store[T]) WithExclusiveScope(fn func(*Store[T]) error) error {
	return fn(s.WithDestroyed())
}

// query builds a scoped query for the store's current mode.
func (s *Store[T]) query(ctx context.Context) *gorm.DB {
	return s.scopedQuery(ctx, s.mode)
}

func (s *Store[T]) scopedQuery(ctx context.Context, mode scopeMode) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(new(T))
	switch mode {
	case scopeWithDestroyed:
	case scopeDestroyedOnly:
		tx = tx.Scopes(s.entity.DestroyedOnly())
	default:
		tx = tx.Scopes(s.entity.NotDestroyed())
	}
	return tx
}

// Call runs a registered operation by name. A derivation suffix on the name
// overrides the store's scope for that single call; a bare base name runs
// under the store's current scope. Unknown names surface ErrUnknownOperation.
func (s *Store[T]) Call(ctx context.Context, name string, conds ...any) (any, error) {
	res, err := s.entity.resolveOperation(name)
	if err != nil {
		return nil, err
	}
	mode := s.mode
	if res.derived {
		mode = res.mode
	}
	return res.base(ctx, s.scopedQuery(ctx, mode), conds...)
}

// Find loads one row by primary key.
func (s *Store[T]) Find(ctx context.Context, id any) (*T, error) {
	v, err := s.Call(ctx, "find", id)
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

// First loads the first row matching conds, ordered by primary key.
func (s *Store[T]) First(ctx context.Context, conds ...any) (*T, error) {
	v, err := s.Call(ctx, "first", conds...)
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

// All loads every row matching conds.
func (s *Store[T]) All(ctx context.Context, conds ...any) ([]T, error) {
	v, err := s.Call(ctx, "all", conds...)
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}

// Count counts rows matching conds.
func (s *Store[T]) Count(ctx context.Context, conds ...any) (int64, error) {
	v, err := s.Call(ctx, "count", conds...)
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// Exists reports whether any row matches conds.
func (s *Store[T]) Exists(ctx context.Context, conds ...any) (bool, error) {
	v, err := s.Call(ctx, "exists", conds...)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}
