package reflection

import "errors"

// Failure kinds surfaced by the reflection core. Callers may catch these
// with errors.Is and degrade locally; the core never substitutes defaults.
var (
	// ErrNoPrototype reports that no ancestor declares a same-named method.
	ErrNoPrototype = errors.New("reflection: method has no prototype")

	// ErrUnresolvableNode reports a type-expression node kind with no
	// resolver. Resolution aborts with no partial result.
	ErrUnresolvableNode = errors.New("reflection: unresolvable type-expression node")

	// ErrUnresolvableClass reports a contextual class name that cannot be
	// mapped, e.g. a relative name with no file path on the context.
	ErrUnresolvableClass = errors.New("reflection: unresolvable class name")

	// ErrUnsupportedOperation reports an invocation-family call on a
	// reflector whose declaration cannot bind to a loaded implementation.
	ErrUnsupportedOperation = errors.New("reflection: operation requires a loaded implementation")
)
