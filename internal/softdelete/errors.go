package softdelete

import "errors"

var (
	// ErrInvalidPolicy reports a marker policy rejected at registration time.
	ErrInvalidPolicy = errors.New("softdelete: invalid marker policy")

	// ErrInvalidModel reports a model type the engine cannot manage, such as
	// one without a primary key.
	ErrInvalidModel = errors.New("softdelete: invalid model")

	// ErrNotRegistered reports a model type that was never registered.
	ErrNotRegistered = errors.New("softdelete: model not registered")

	// ErrAlreadyRegistered reports a duplicate registration.
	ErrAlreadyRegistered = errors.New("softdelete: already registered")

	// ErrInvalidRelationship reports a relationship descriptor rejected at
	// registration time (unknown target, missing foreign key, ...).
	ErrInvalidRelationship = errors.New("softdelete: invalid relationship")

	// ErrUnknownOperation reports a derived-operation name whose base is not
	// a registered operation on the entity.
	ErrUnknownOperation = errors.New("softdelete: unknown operation")

	// ErrUnknownAccessor reports a parent accessor name that was never
	// installed on the entity.
	ErrUnknownAccessor = errors.New("softdelete: unknown accessor")

	// ErrDestroyAborted reports a destroy declined by a BeforeDestroy hook.
	// No row was touched.
	ErrDestroyAborted = errors.New("softdelete: destroy aborted by hook")
)
