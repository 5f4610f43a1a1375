package softdelete

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"paranoid/internal/shared/logger"
)

// Registry holds every soft-deletable entity type known to the process. It is
// the single place where marker policies, relationships, derived operations
// and reverse accessors are declared, and it backs the cascade resolver.
type Registry struct {
	mu      sync.RWMutex
	byTable map[string]*Entity
	byType  map[reflect.Type]*Entity

	// resolved memoizes derived-operation resolution, keyed by
	// table + "\x00" + requested name. Only successful resolutions are
	// cached, so registering a new base operation needs no invalidation.
	resolved sync.Map

	schemaCache *sync.Map
	namer       schema.Namer
	log         logger.Interface
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used by the registry and every store created
// from it.
func WithLogger(log logger.Interface) Option {
	return func(r *Registry) { r.log = log }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		byTable:     make(map[string]*Entity),
		byType:      make(map[reflect.Type]*Entity),
		schemaCache: &sync.Map{},
		namer:       schema.NamingStrategy{IdentifierMaxLength: 64},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.NewLogger().Named("softdelete")
	}
	return r
}

// Entity is the registered descriptor of one soft-deletable model type:
// its parsed schema, marker policy, declared relationships, operation table
// and installed reverse accessors.
type Entity struct {
	registry *Registry
	schema   *schema.Schema
	table    string
	pk       *schema.Field
	marker   *schema.Field
	policy   Policy

	mu        sync.RWMutex
	relations []relation
	accessors map[string]Accessor
	ops       map[string]Operation
}

// Register attaches a marker policy to model type T and returns its entity
// descriptor. The policy and the model are validated here: a missing marker
// column, a missing primary key or an unobservable policy (equal destroyed /
// not-destroyed values) are rejected instead of silently mis-filtering later.
func Register[T any](r *Registry, policy Policy) (*Entity, error) {
	if err := policy.validate(); err != nil {
		return nil, err
	}

	sch, err := schema.Parse(new(T), r.schemaCache, r.namer)
	if err != nil {
		return nil, fmt.Errorf("softdelete: parse schema: %w", err)
	}
	if sch.PrioritizedPrimaryField == nil {
		return nil, fmt.Errorf("%w: %s has no primary key", ErrInvalidModel, sch.Table)
	}
	marker := sch.LookUpField(policy.Column)
	if marker == nil {
		return nil, fmt.Errorf("%w: marker column %q not found on %s",
			ErrInvalidPolicy, policy.Column, sch.Table)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	typ := reflect.TypeOf((*T)(nil)).Elem()
	if _, ok := r.byType[typ]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, sch.Table)
	}
	if _, ok := r.byTable[sch.Table]; ok {
		return nil, fmt.Errorf("%w: table %s", ErrAlreadyRegistered, sch.Table)
	}

	e := &Entity{
		registry:  r,
		schema:    sch,
		table:     sch.Table,
		pk:        sch.PrioritizedPrimaryField,
		marker:    marker,
		policy:    policy,
		accessors: make(map[string]Accessor),
	}
	e.ops = defaultOperations[T](e)

	r.byTable[sch.Table] = e
	r.byType[typ] = e

	r.log.Debugw("entity registered",
		"table", e.table,
		"marker_column", policy.Column,
		"primary_key", e.pk.DBName)

	return e, nil
}

// Entity returns the descriptor registered for the given model prototype.
func (r *Registry) Entity(model any) (*Entity, error) {
	typ := reflect.Indirect(reflect.ValueOf(model)).Type()
	return r.entityFor(typ)
}

func (r *Registry) entityFor(typ reflect.Type) (*Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byType[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, typ)
	}
	return e, nil
}

// Table returns the entity's table name.
func (e *Entity) Table() string { return e.table }

// Policy returns the entity's marker policy.
func (e *Entity) Policy() Policy { return e.policy }

// PrimaryKey returns the entity's primary key column.
func (e *Entity) PrimaryKey() string { return e.pk.DBName }

// NotDestroyed is the default filter: a GORM scope restricting a query to
// rows whose marker equals the policy's not-destroyed value. It is merged
// (ANDed) with whatever conditions the caller supplies.
func (e *Entity) NotDestroyed() func(*gorm.DB) *gorm.DB {
	cond := clause.Eq{Column: e.markerColumn(), Value: e.policy.NotDestroyed}
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where(cond)
	}
}

// DestroyedOnly is the inverse of the default filter: strictly the rows
// whose marker differs from the not-destroyed value.
func (e *Entity) DestroyedOnly() func(*gorm.DB) *gorm.DB {
	cond := clause.Neq{Column: e.markerColumn(), Value: e.policy.NotDestroyed}
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where(cond)
	}
}

func (e *Entity) markerColumn() clause.Column {
	return clause.Column{Table: clause.CurrentTable, Name: e.policy.Column}
}

func (e *Entity) pkColumn() clause.Column {
	return clause.Column{Table: clause.CurrentTable, Name: e.pk.DBName}
}

// restoreRow writes the not-destroyed marker on exactly one row, regardless
// of its current marker state. Restoring a live row is a no-op.
func (e *Entity) restoreRow(ctx context.Context, db *gorm.DB, id any) error {
	err := db.WithContext(ctx).Table(e.table).
		Where(clause.Eq{Column: clause.Column{Name: e.pk.DBName}, Value: id}).
		Update(e.policy.Column, e.policy.NotDestroyed).Error
	if err != nil {
		return fmt.Errorf("softdelete: restore %s %v: %w", e.table, id, err)
	}
	return nil
}

// destroyRow writes the destroyed marker on one live row. Rows already
// destroyed keep their original marker value.
func (e *Entity) destroyRow(ctx context.Context, db *gorm.DB, id any) error {
	err := db.WithContext(ctx).Table(e.table).
		Scopes(e.NotDestroyed()).
		Where(clause.Eq{Column: clause.Column{Name: e.pk.DBName}, Value: id}).
		Update(e.policy.Column, e.policy.destroyedValue()).Error
	if err != nil {
		return fmt.Errorf("softdelete: destroy %s %v: %w", e.table, id, err)
	}
	return nil
}

// findAny loads one row by primary key into a freshly allocated model value.
func (e *Entity) findAny(ctx context.Context, db *gorm.DB, id any, includeDestroyed bool) (any, error) {
	dest := reflect.New(e.schema.ModelType).Interface()
	tx := db.WithContext(ctx).Table(e.table)
	if !includeDestroyed {
		tx = tx.Scopes(e.NotDestroyed())
	}
	if err := tx.Where(clause.Eq{Column: clause.Column{Name: e.pk.DBName}, Value: id}).
		First(dest).Error; err != nil {
		return nil, err
	}
	return dest, nil
}

// idsByForeignKey lists primary keys of rows whose foreign key column equals
// parentID, under the given scope mode.
func (e *Entity) idsByForeignKey(ctx context.Context, db *gorm.DB, fkColumn string, parentID any, mode scopeMode) ([]any, error) {
	tx := db.WithContext(ctx).Table(e.table)
	switch mode {
	case scopeWithDestroyed:
	case scopeDestroyedOnly:
		tx = tx.Scopes(e.DestroyedOnly())
	default:
		tx = tx.Scopes(e.NotDestroyed())
	}

	var rows []map[string]any
	err := tx.Select(e.pk.DBName).
		Where(clause.Eq{Column: clause.Column{Name: fkColumn}, Value: parentID}).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("softdelete: list %s by %s: %w", e.table, fkColumn, err)
	}

	ids := make([]any, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row[e.pk.DBName])
	}
	return ids, nil
}

func (e *Entity) primaryKeyValue(ctx context.Context, record any) (any, error) {
	rv := reflect.Indirect(reflect.ValueOf(record))
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: expected a %s record, got %T", ErrInvalidModel, e.table, record)
	}
	v, zero := e.pk.ValueOf(ctx, rv)
	if zero {
		return nil, fmt.Errorf("softdelete: %s record has no primary key value", e.table)
	}
	return v, nil
}

func (e *Entity) setMarker(ctx context.Context, record any, value any) error {
	rv := reflect.Indirect(reflect.ValueOf(record))
	if err := e.marker.Set(ctx, rv, value); err != nil {
		return fmt.Errorf("softdelete: set marker on %s record: %w", e.table, err)
	}
	return nil
}
