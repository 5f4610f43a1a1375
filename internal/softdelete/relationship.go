package softdelete

import (
	"fmt"
	"reflect"

	"gorm.io/gorm/schema"
)

// Kind classifies a relationship an entity declares toward a child type.
type Kind int

const (
	HasOne Kind = iota + 1
	HasMany
)

// Relationship declares how an entity relates to a dependent child type.
// The reciprocal belongs-to is declared explicitly rather than inferred:
// naming it installs a "<reciprocal>_with_destroyed" accessor on the child
// so children can reach a soft-deleted parent.
type Relationship struct {
	// Name of the relationship as the parent sees it ("tasks", "profile").
	Name string

	// Target is a prototype of the child model, for example &TaskModel{}.
	// The child type must already be registered.
	Target any

	// Kind is HasOne or HasMany.
	Kind Kind

	// ForeignKey is the column on the child table pointing at the parent.
	ForeignKey string

	// Reciprocal is the child's belongs-to name for this parent, or empty
	// when no reverse accessor is wanted.
	Reciprocal string

	// CascadeOnDestroy marks the child dependent: destroyed with the parent
	// and restored with it.
	CascadeOnDestroy bool
}

// relation is a Relationship resolved against the registry.
type relation struct {
	Relationship
	target *Entity
	fk     *schema.Field
}

// RegisterRelationship declares a relationship on the entity. The target
// must already be registered (so a cascade always points at a type with
// restore support) and the foreign key column must exist on it; both are
// checked here rather than discovered broken mid-cascade. Re-registering a
// relationship with the same name replaces it and installs no duplicate
// accessor.
func (e *Entity) RegisterRelationship(rel Relationship) error {
	if rel.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRelationship)
	}
	if rel.Kind != HasOne && rel.Kind != HasMany {
		return fmt.Errorf("%w: %q has no kind", ErrInvalidRelationship, rel.Name)
	}
	if rel.Target == nil {
		return fmt.Errorf("%w: %q has no target", ErrInvalidRelationship, rel.Name)
	}

	typ := reflect.Indirect(reflect.ValueOf(rel.Target)).Type()
	target, err := e.registry.entityFor(typ)
	if err != nil {
		return fmt.Errorf("%w: target of %q is not soft-deletable: %v",
			ErrInvalidRelationship, rel.Name, err)
	}
	fk := target.schema.LookUpField(rel.ForeignKey)
	if fk == nil {
		return fmt.Errorf("%w: foreign key %q not found on %s",
			ErrInvalidRelationship, rel.ForeignKey, target.table)
	}

	e.mu.Lock()
	replaced := false
	for i := range e.relations {
		if e.relations[i].Name == rel.Name {
			e.relations[i] = relation{Relationship: rel, target: target, fk: fk}
			replaced = true
			break
		}
	}
	if !replaced {
		e.relations = append(e.relations, relation{Relationship: rel, target: target, fk: fk})
	}
	e.mu.Unlock()

	if rel.Reciprocal != "" {
		e.installReverseAccessor(target, rel, fk)
	}

	e.registry.log.Debugw("relationship registered",
		"table", e.table,
		"relation", rel.Name,
		"target", target.table,
		"cascade", rel.CascadeOnDestroy)
	return nil
}

func (e *Entity) relationsSnapshot() []relation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]relation, len(e.relations))
	copy(out, e.relations)
	return out
}

// Relationships returns the declared relationship descriptors.
func (e *Entity) Relationships() []Relationship {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Relationship, 0, len(e.relations))
	for _, rel := range e.relations {
		out = append(out, rel.Relationship)
	}
	return out
}
