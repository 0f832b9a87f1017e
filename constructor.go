package inject

import (
	"errors"
	"reflect"

	"github.com/junioryono/inject/internal/reflection"
)

// analyzer caches constructor signatures for every container in the process.
var analyzer = reflection.New()

// Constructor is a constructor function for a concrete type, optionally
// carrying the injection marker.
//
// The function must have the shape func(P1, ..., Pn) T or
// func(P1, ..., Pn) (T, error). Each parameter type is resolved through the
// container, in declaration order, when the constructor is selected.
type Constructor struct {
	fn     any
	marked bool
	info   *reflection.ConstructorInfo
	err    error
}

// Marked returns a constructor carrying the injection marker. A type with a
// marked constructor is always built through it.
//
//	func (*EventService) Constructors() []*inject.Constructor {
//	    return []*inject.Constructor{inject.Marked(NewEventService)}
//	}
func Marked(fn any) *Constructor {
	return newConstructor(fn, true)
}

// Unmarked returns a constructor without the injection marker. Unmarked
// constructors are only used when they take no parameters and no constructor
// of the type is marked.
func Unmarked(fn any) *Constructor {
	return newConstructor(fn, false)
}

func newConstructor(fn any, marked bool) *Constructor {
	c := &Constructor{fn: fn, marked: marked}

	info, err := analyzer.Analyze(fn)
	if err != nil {
		if errors.Is(err, reflection.ErrConstructorNil) {
			err = ErrConstructorNil
		}
		c.err = ReflectionAnalysisError{Constructor: fn, Cause: err}
		return c
	}

	c.info = info
	return c
}

// IsMarked reports whether the constructor carries the injection marker.
func (c *Constructor) IsMarked() bool {
	return c.marked
}

// Err returns the analysis error for an invalid constructor function.
func (c *Constructor) Err() error {
	return c.err
}

// Type returns the function type of the constructor, or nil if invalid.
func (c *Constructor) Type() reflect.Type {
	if c.info == nil {
		return nil
	}
	return c.info.Type
}

// ParameterTypes returns the parameter types in declaration order.
func (c *Constructor) ParameterTypes() []reflect.Type {
	if c.info == nil {
		return nil
	}
	return c.info.ParameterTypes()
}

// ResultType returns the type the constructor produces, or nil if invalid.
func (c *Constructor) ResultType() reflect.Type {
	if c.info == nil {
		return nil
	}
	return c.info.Result
}

func (c *Constructor) call(concrete reflect.Type, args []reflect.Value) (any, error) {
	result, err := c.info.Call(args)
	if err != nil {
		var panicErr *reflection.PanicError
		if errors.As(err, &panicErr) {
			return nil, ConstructorPanicError{
				Type:        concrete,
				Constructor: c.info.Type,
				Panic:       panicErr.Value,
				Stack:       panicErr.Stack,
			}
		}

		return nil, ConstructorInvocationError{
			Type:        concrete,
			Constructor: c.info.Type,
			Cause:       err,
		}
	}

	return result.Interface(), nil
}

// Constructible is implemented by types that declare their own constructors.
// Constructors is called on the zero value of the type (a nil pointer for
// pointer types), so it must not dereference its receiver.
//
// A type that declares constructors has no implicit zero-parameter
// constructor; include one explicitly if it should be used as a fallback.
type Constructible interface {
	Constructors() []*Constructor
}
