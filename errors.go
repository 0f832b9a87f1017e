package inject

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/junioryono/inject/internal/graph"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
// Typed errors below match these through errors.Is.

var (
	// Resolution errors.
	ErrBindingNotFound       = errors.New("binding not found")
	ErrConstructorAmbiguity  = errors.New("constructor ambiguity")
	ErrNoSuitableConstructor = errors.New("no suitable constructor")

	// Validation errors.
	ErrTypeNil        = errors.New("type cannot be nil")
	ErrProviderNil    = errors.New("provider cannot be nil")
	ErrConstructorNil = errors.New("constructor cannot be nil")
)

var (
	_ error = LifetimeError{}
	_ error = BindingNotFoundError{}
	_ error = ConstructorAmbiguityError{}
	_ error = NoSuitableConstructorError{}
	_ error = ConstructorInvocationError{}
	_ error = ConstructorPanicError{}
	_ error = TypeMismatchError{}
	_ error = ValidationError{}
	_ error = ReflectionAnalysisError{}
	_ error = CircularDependencyError{}
)

// ========================================
// Typed Errors for Rich Context
// ========================================

// CircularDependencyError is returned when resolving a type requires
// resolving that same type again.
type CircularDependencyError = graph.CircularDependencyError

// LifetimeError indicates an invalid lifetime value.
type LifetimeError struct {
	Value any
}

func (e LifetimeError) Error() string {
	return fmt.Sprintf("invalid lifetime: %v", e.Value)
}

// BindingNotFoundError indicates a type required for construction has no binding.
// Dependent is the concrete type whose constructor asked for it, or nil when
// the type was requested directly.
type BindingNotFoundError struct {
	Type      reflect.Type
	Dependent reflect.Type
}

func (e BindingNotFoundError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("binding not found: %s", formatType(e.Type)))
	if e.Dependent != nil {
		b.WriteString(fmt.Sprintf(" (required by %s)", formatType(e.Dependent)))
	}
	b.WriteString("\n\nMake sure the type is bound with Bind or BindSingleton before it is resolved.")
	return b.String()
}

func (e BindingNotFoundError) Is(target error) bool {
	return target == ErrBindingNotFound
}

// ConstructorAmbiguityError indicates a type declares more than one
// constructor carrying the injection marker.
type ConstructorAmbiguityError struct {
	Type   reflect.Type
	Marked []reflect.Type
}

func (e ConstructorAmbiguityError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("constructor ambiguity: %s declares %d injectable constructors\n",
		formatType(e.Type), len(e.Marked)))
	for _, c := range e.Marked {
		b.WriteString(fmt.Sprintf("  • %s\n", formatType(c)))
	}
	b.WriteString("\nMark exactly one constructor with inject.Marked.")
	return b.String()
}

func (e ConstructorAmbiguityError) Is(target error) bool {
	return target == ErrConstructorAmbiguity
}

// NoSuitableConstructorError indicates a type has no marked constructor
// and no zero-parameter constructor.
type NoSuitableConstructorError struct {
	Type reflect.Type
}

func (e NoSuitableConstructorError) Error() string {
	return fmt.Sprintf("no suitable constructor for %s: mark a constructor with inject.Marked or declare one without parameters",
		formatType(e.Type))
}

func (e NoSuitableConstructorError) Is(target error) bool {
	return target == ErrNoSuitableConstructor
}

// ConstructorInvocationError wraps an error returned by a constructor.
type ConstructorInvocationError struct {
	Type        reflect.Type
	Constructor reflect.Type
	Cause       error
}

func (e ConstructorInvocationError) Error() string {
	return fmt.Sprintf("failed to construct %s with %s: %v",
		formatType(e.Type), formatType(e.Constructor), e.Cause)
}

func (e ConstructorInvocationError) Unwrap() error {
	return e.Cause
}

// ConstructorPanicError indicates a constructor panicked during invocation.
// It captures the panic value and stack trace for debugging.
type ConstructorPanicError struct {
	Type        reflect.Type
	Constructor reflect.Type
	Panic       any
	Stack       []byte
}

func (e ConstructorPanicError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("constructor %s for %s panicked: %v\n",
		formatType(e.Constructor), formatType(e.Type), e.Panic))

	if len(e.Stack) > 0 {
		b.WriteString("\nStack trace:\n")
		b.Write(e.Stack)
	}

	return b.String()
}

// Unwrap returns the panic value when it is an error.
func (e ConstructorPanicError) Unwrap() error {
	if err, ok := e.Panic.(error); ok {
		return err
	}
	return nil
}

// TypeMismatchError indicates a type assertion or assignability check failed.
type TypeMismatchError struct {
	Expected reflect.Type
	Actual   reflect.Type
	Context  string // "binding", "constructor result", "provider result"
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Context, formatType(e.Expected), formatType(e.Actual))
}

// ValidationError indicates invalid input to the container.
type ValidationError struct {
	Type  reflect.Type
	Cause error
}

func (e ValidationError) Error() string {
	if e.Type != nil {
		return fmt.Sprintf("%s: %v", formatType(e.Type), e.Cause)
	}
	return e.Cause.Error()
}

func (e ValidationError) Unwrap() error {
	return e.Cause
}

// ReflectionAnalysisError indicates a constructor function could not be analyzed.
type ReflectionAnalysisError struct {
	Constructor any
	Cause       error
}

func (e ReflectionAnalysisError) Error() string {
	return fmt.Sprintf("reflection analysis failed for constructor %T: %v", e.Constructor, e.Cause)
}

func (e ReflectionAnalysisError) Unwrap() error {
	return e.Cause
}

// IsBindingNotFound reports whether err is a missing binding.
func IsBindingNotFound(err error) bool {
	return errors.Is(err, ErrBindingNotFound)
}

// IsConstructorAmbiguity reports whether err is a constructor ambiguity.
func IsConstructorAmbiguity(err error) bool {
	return errors.Is(err, ErrConstructorAmbiguity)
}

// IsNoSuitableConstructor reports whether err is a missing constructor.
func IsNoSuitableConstructor(err error) bool {
	return errors.Is(err, ErrNoSuitableConstructor)
}

// IsCircularDependency reports whether err is a circular dependency.
func IsCircularDependency(err error) bool {
	var cycle CircularDependencyError
	return errors.As(err, &cycle)
}

// formatType returns a short, readable name for t.
func formatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "*" + elem.Name()
		}
		return t.String()
	case reflect.Func:
		return t.String()
	default:
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	}
}
