package rake

import (
	"errors"
	"fmt"
)

// Sentinel errors for super properties and composition.
var (
	// ErrCorruptSuperProperties indicates the stored super properties could not be parsed.
	ErrCorruptSuperProperties = errors.New("stored super properties are corrupt")

	// ErrComposeFailed indicates an event could not be composed and was dropped.
	ErrComposeFailed = errors.New("event composition failed")
)

// PropertyError reports a single property whose value cannot be encoded
// as JSON. The property is skipped; the rest of the operation proceeds.
type PropertyError struct {
	Key string
	Err error
}

// Error implements the error interface.
func (e *PropertyError) Error() string {
	return fmt.Sprintf("property %q: %v", e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *PropertyError) Unwrap() error {
	return e.Err
}

// PanicError captures a panic raised while composing an event,
// typically from an environment provider.
type PanicError struct {
	Value any
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic during composition: %v", e.Value)
}
