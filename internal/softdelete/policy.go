package softdelete

import (
	"fmt"
	"reflect"
	"time"
)

// Policy describes what "destroyed" means for an entity: which column carries
// the marker, which value marks a row destroyed and which marks it live.
// A policy is attached once at registration and never changes afterward.
type Policy struct {
	// Column is the database column holding the marker.
	Column string

	// Destroyed is the fixed value written on destroy. Ignored when
	// DestroyedFunc is set.
	Destroyed any

	// DestroyedFunc, when non-nil, is evaluated at destroy time to produce
	// the marker value (for example the current timestamp).
	DestroyedFunc func() any

	// NotDestroyed is the value marking a live row. It is also what the
	// default filter compares against, so it must differ from every value
	// Destroyed/DestroyedFunc can produce.
	NotDestroyed any
}

// TimestampPolicy returns the common timestamp-marker policy: a nullable
// time column that is NULL for live rows and holds the destroy time for
// destroyed rows.
func TimestampPolicy(column string) Policy {
	return Policy{
		Column:        column,
		DestroyedFunc: func() any { return time.Now() },
		NotDestroyed:  nil,
	}
}

// FlagPolicy returns a boolean-marker policy: false for live rows, true for
// destroyed rows.
func FlagPolicy(column string) Policy {
	return Policy{
		Column:       column,
		Destroyed:    true,
		NotDestroyed: false,
	}
}

// destroyedValue resolves the marker value for a destroy happening now.
func (p Policy) destroyedValue() any {
	if p.DestroyedFunc != nil {
		return p.DestroyedFunc()
	}
	return p.Destroyed
}

func (p Policy) validate() error {
	if p.Column == "" {
		return fmt.Errorf("%w: marker column is required", ErrInvalidPolicy)
	}
	if p.DestroyedFunc == nil && reflect.DeepEqual(p.Destroyed, p.NotDestroyed) {
		return fmt.Errorf("%w: destroyed and not-destroyed values are equal for column %q",
			ErrInvalidPolicy, p.Column)
	}
	return nil
}
