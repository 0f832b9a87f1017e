package reflection

import (
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
	"sync"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

var (
	ErrConstructorNil    = errors.New("constructor cannot be nil")
	ErrNotFunction       = errors.New("constructor must be a function")
	ErrVariadic          = errors.New("variadic constructors are not supported")
	ErrNoReturn          = errors.New("constructor must return a value")
	ErrTooManyReturns    = errors.New("constructor must return a value and an optional error")
	ErrSecondNotError    = errors.New("second return value must be error")
	ErrFirstReturnsError = errors.New("first return value cannot be error")
)

// Analyzer performs reflection-based analysis of constructor functions.
// Signatures are cached by function type, so closures sharing code
// never share an invocation target.
type Analyzer struct {
	mu    sync.RWMutex
	cache map[reflect.Type]*Signature
}

// Signature is the analyzed shape of a constructor function type.
type Signature struct {
	Type           reflect.Type
	Parameters     []ParameterInfo
	Result         reflect.Type
	HasErrorReturn bool
}

// ParameterInfo describes one constructor parameter.
type ParameterInfo struct {
	Type  reflect.Type
	Index int
}

// ConstructorInfo binds an analyzed signature to a callable function value.
type ConstructorInfo struct {
	*Signature
	Value reflect.Value
}

// PanicError is returned by Call when the constructor panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("constructor panicked: %v", e.Value)
}

// New creates a new Analyzer.
func New() *Analyzer {
	return &Analyzer{
		cache: make(map[reflect.Type]*Signature),
	}
}

// Analyze validates a constructor function and extracts its signature.
func (a *Analyzer) Analyze(constructor any) (*ConstructorInfo, error) {
	if constructor == nil {
		return nil, ErrConstructorNil
	}

	val, ok := constructor.(reflect.Value)
	if !ok {
		val = reflect.ValueOf(constructor)
	}

	if !val.IsValid() {
		return nil, ErrConstructorNil
	}

	if val.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w, got %v", ErrNotFunction, val.Type())
	}

	if val.IsNil() {
		return nil, ErrConstructorNil
	}

	sig, err := a.signature(val.Type())
	if err != nil {
		return nil, err
	}

	return &ConstructorInfo{Signature: sig, Value: val}, nil
}

func (a *Analyzer) signature(fnType reflect.Type) (*Signature, error) {
	a.mu.RLock()
	if cached, ok := a.cache[fnType]; ok {
		a.mu.RUnlock()
		return cached, nil
	}
	a.mu.RUnlock()

	if fnType.IsVariadic() {
		return nil, ErrVariadic
	}

	sig := &Signature{Type: fnType}

	switch fnType.NumOut() {
	case 0:
		return nil, ErrNoReturn
	case 1:
	case 2:
		if fnType.Out(1) != errType {
			return nil, ErrSecondNotError
		}
		sig.HasErrorReturn = true
	default:
		return nil, ErrTooManyReturns
	}

	if fnType.Out(0) == errType {
		return nil, ErrFirstReturnsError
	}
	sig.Result = fnType.Out(0)

	sig.Parameters = make([]ParameterInfo, fnType.NumIn())
	for i := 0; i < fnType.NumIn(); i++ {
		sig.Parameters[i] = ParameterInfo{
			Type:  fnType.In(i),
			Index: i,
		}
	}

	a.mu.Lock()
	a.cache[fnType] = sig
	a.mu.Unlock()

	return sig, nil
}

// ParameterTypes returns the parameter types in declaration order.
func (s *Signature) ParameterTypes() []reflect.Type {
	types := make([]reflect.Type, len(s.Parameters))
	for i, p := range s.Parameters {
		types[i] = p.Type
	}
	return types
}

// Call invokes the constructor. An error returned by the constructor is
// passed through as is; a panic is converted into a *PanicError.
func (info *ConstructorInfo) Call(args []reflect.Value) (result reflect.Value, err error) {
	if len(args) != len(info.Parameters) {
		return reflect.Value{}, fmt.Errorf("expected %d arguments, got %d", len(info.Parameters), len(args))
	}

	defer func() {
		if r := recover(); r != nil {
			result = reflect.Value{}
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	results := info.Value.Call(args)

	if info.HasErrorReturn {
		if last := results[1]; !last.IsNil() {
			return reflect.Value{}, last.Interface().(error)
		}
	}

	return results[0], nil
}
