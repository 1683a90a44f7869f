package generator

import (
	"fmt"

	"github.com/matzehuels/sketchtower/pkg/errors"
)

// DecoratorError reports a decorator callback or predicate that failed or
// panicked. Generation stops at the first one.
type DecoratorError struct {
	Phase     Phase
	Decorator string
	Index     int
	LayerID   string
	LayerName string
	Cause     error
}

func (e *DecoratorError) Error() string {
	return fmt.Sprintf("%s: decorator %q failed on layer %q (%s): %v",
		e.Phase, e.Decorator, e.LayerName, e.LayerID, e.Cause)
}

// Unwrap exposes the cause behind an ErrCodeDecorator error, so both
// errors.Is(err, cause) and errors.Is(err, errors.ErrCodeDecorator) hold.
func (e *DecoratorError) Unwrap() error {
	return errors.Wrap(errors.ErrCodeDecorator, e.Cause, "%s %s", e.Phase, e.Decorator)
}

// PanicError wraps a value recovered from a panicking decorator.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }
