package softdelete

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Operation is a read or aggregate operation executed against an already
// scoped query. The tx it receives has the entity's model and the effective
// filter (default, suspended, or inverted) applied; conds are extra caller
// conditions, merged into the query.
type Operation func(ctx context.Context, tx *gorm.DB, conds ...any) (any, error)

// Recognized derivation suffixes. For any registered base operation "op",
// "op_with_destroyed" runs it with the default filter suspended and
// "op_destroyed_only" runs it against strictly the destroyed subset.
const (
	SuffixWithDestroyed = "_with_destroyed"
	SuffixDestroyedOnly = "_destroyed_only"
)

type scopeMode int

const (
	scopeDefault scopeMode = iota
	scopeWithDestroyed
	scopeDestroyedOnly
)

type resolvedOp struct {
	base    Operation
	mode    scopeMode
	derived bool
}

// RegisterOperation adds a base read operation to the entity's table. The
// operation immediately gains both derived variants; nothing else to do.
// Names carrying a derivation suffix are rejected, as are duplicates.
func (e *Entity) RegisterOperation(name string, op Operation) error {
	if name == "" || op == nil {
		return fmt.Errorf("softdelete: operation name and func are required")
	}
	if strings.HasSuffix(name, SuffixWithDestroyed) || strings.HasSuffix(name, SuffixDestroyedOnly) {
		return fmt.Errorf("softdelete: operation name %q uses a reserved suffix", name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.ops[name]; ok {
		return fmt.Errorf("%w: operation %q on %s", ErrAlreadyRegistered, name, e.table)
	}
	e.ops[name] = op
	return nil
}

// Operations returns the entity's registered base operation names.
func (e *Entity) Operations() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.ops))
	for name := range e.ops {
		names = append(names, name)
	}
	return names
}

// resolveOperation maps a requested name, possibly carrying a derivation
// suffix, to its base operation and effective scope. Successful resolutions
// are memoized on the registry so repeated calls skip the suffix work.
func (e *Entity) resolveOperation(name string) (resolvedOp, error) {
	key := e.table + "\x00" + name
	if v, ok := e.registry.resolved.Load(key); ok {
		return v.(resolvedOp), nil
	}

	base, mode := name, scopeDefault
	if b, ok := strings.CutSuffix(name, SuffixWithDestroyed); ok {
		base, mode = b, scopeWithDestroyed
	} else if b, ok := strings.CutSuffix(name, SuffixDestroyedOnly); ok {
		base, mode = b, scopeDestroyedOnly
	}

	e.mu.RLock()
	op, ok := e.ops[base]
	e.mu.RUnlock()
	if !ok {
		return resolvedOp{}, fmt.Errorf("%w: %q on %s", ErrUnknownOperation, name, e.table)
	}

	res := resolvedOp{base: op, mode: mode, derived: mode != scopeDefault}
	e.registry.resolved.Store(key, res)
	return res, nil
}

// defaultOperations builds the base operation table installed at
// registration: find, first, all, count, exists.
func defaultOperations[T any](e *Entity) map[string]Operation {
	return map[string]Operation{
		"find": func(ctx context.Context, tx *gorm.DB, conds ...any) (any, error) {
			if len(conds) == 0 {
				return nil, fmt.Errorf("softdelete: find on %s requires a primary key value", e.table)
			}
			dest := new(T)
			err := tx.Where(clause.Eq{Column: e.pkColumn(), Value: conds[0]}).First(dest).Error
			if err != nil {
				return nil, err
			}
			return dest, nil
		},
		"first": func(ctx context.Context, tx *gorm.DB, conds ...any) (any, error) {
			dest := new(T)
			if err := applyConds(tx, conds).First(dest).Error; err != nil {
				return nil, err
			}
			return dest, nil
		},
		"all": func(ctx context.Context, tx *gorm.DB, conds ...any) (any, error) {
			var dest []T
			if err := applyConds(tx, conds).Find(&dest).Error; err != nil {
				return nil, err
			}
			return dest, nil
		},
		"count": func(ctx context.Context, tx *gorm.DB, conds ...any) (any, error) {
			var n int64
			if err := applyConds(tx, conds).Count(&n).Error; err != nil {
				return nil, err
			}
			return n, nil
		},
		"exists": func(ctx context.Context, tx *gorm.DB, conds ...any) (any, error) {
			var n int64
			if err := applyConds(tx, conds).Count(&n).Error; err != nil {
				return nil, err
			}
			return n > 0, nil
		},
	}
}

func applyConds(tx *gorm.DB, conds []any) *gorm.DB {
	if len(conds) == 0 {
		return tx
	}
	return tx.Where(conds[0], conds[1:]...)
}
