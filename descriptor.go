package inject

import (
	"fmt"
	"reflect"
)

var constructibleType = reflect.TypeOf((*Constructible)(nil)).Elem()

// TypeDescriptor exposes the constructors of a concrete type.
type TypeDescriptor interface {
	// Type returns the concrete type being described.
	Type() reflect.Type

	// Constructors returns the public constructors of the type.
	Constructors() []*Constructor
}

type typeDescriptor struct {
	typ          reflect.Type
	constructors []*Constructor
}

func (d *typeDescriptor) Type() reflect.Type           { return d.typ }
func (d *typeDescriptor) Constructors() []*Constructor { return d.constructors }

// Describe returns a descriptor listing the given constructors for t.
// Use it with WithDescriptor for types that cannot implement Constructible.
func Describe(t reflect.Type, constructors ...*Constructor) TypeDescriptor {
	return &typeDescriptor{typ: t, constructors: constructors}
}

// DescriptorOf returns the descriptor for t derived from the type itself:
//   - types implementing Constructible (directly or through their pointer
//     type) list exactly the constructors they declare;
//   - other structs and pointers to structs have one implicit
//     zero-parameter constructor returning the zero value;
//   - every other type, interfaces included, has no constructors.
func DescriptorOf(t reflect.Type) (TypeDescriptor, error) {
	if t == nil {
		return nil, ValidationError{Cause: ErrTypeNil}
	}

	if t.Kind() != reflect.Interface {
		var receiver reflect.Value
		switch {
		case t.Implements(constructibleType):
			receiver = reflect.Zero(t)
		case t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(constructibleType):
			receiver = reflect.New(t)
		}

		if receiver.IsValid() {
			constructors, err := declaredConstructors(t, receiver)
			if err != nil {
				return nil, err
			}
			return Describe(t, constructors...), nil
		}
	}

	if isStructOrStructPointer(t) {
		return Describe(t, defaultConstructor(t)), nil
	}

	return Describe(t), nil
}

func declaredConstructors(t reflect.Type, receiver reflect.Value) (constructors []*Constructor, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ValidationError{Type: t, Cause: fmt.Errorf("Constructors panicked: %v", r)}
		}
	}()

	return receiver.Interface().(Constructible).Constructors(), nil
}

func isStructOrStructPointer(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// defaultConstructor builds the implicit func() T for a struct type
// or a pointer to one.
func defaultConstructor(t reflect.Type) *Constructor {
	fnType := reflect.FuncOf(nil, []reflect.Type{t}, false)
	fn := reflect.MakeFunc(fnType, func([]reflect.Value) []reflect.Value {
		if t.Kind() == reflect.Pointer {
			return []reflect.Value{reflect.New(t.Elem())}
		}
		return []reflect.Value{reflect.New(t).Elem()}
	})
	return Unmarked(fn)
}

// selectConstructor picks the constructor used to build the described type:
// the single marked constructor, else the first zero-parameter one. Only
// those candidates are checked; an unusable unmarked constructor with
// parameters is ignored.
func selectConstructor(d TypeDescriptor) (*Constructor, error) {
	concrete := d.Type()

	var (
		marked   []*Constructor
		fallback *Constructor
	)

	for _, c := range d.Constructors() {
		switch {
		case c == nil:
		case c.marked:
			if err := checkConstructor(concrete, c); err != nil {
				return nil, err
			}
			marked = append(marked, c)
		case fallback == nil && c.err == nil && len(c.info.Parameters) == 0:
			fallback = c
		}
	}

	switch {
	case len(marked) > 1:
		types := make([]reflect.Type, len(marked))
		for i, c := range marked {
			types[i] = c.Type()
		}
		return nil, ConstructorAmbiguityError{Type: concrete, Marked: types}
	case len(marked) == 1:
		return marked[0], nil
	case fallback != nil:
		if err := checkConstructor(concrete, fallback); err != nil {
			return nil, err
		}
		return fallback, nil
	default:
		return nil, NoSuitableConstructorError{Type: concrete}
	}
}

func checkConstructor(concrete reflect.Type, c *Constructor) error {
	if c.err != nil {
		return ValidationError{Type: concrete, Cause: c.err}
	}

	if !c.ResultType().AssignableTo(concrete) {
		return TypeMismatchError{
			Expected: concrete,
			Actual:   c.ResultType(),
			Context:  "constructor result",
		}
	}

	return nil
}
