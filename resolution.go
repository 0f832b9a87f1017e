package inject

import (
	"reflect"

	"github.com/junioryono/inject/internal/graph"
	"go.uber.org/zap"
)

// resolution tracks the abstract types being resolved along one call chain.
type resolution struct {
	stack []reflect.Type
}

func newResolution() *resolution {
	return &resolution{}
}

func (r *resolution) enter(t reflect.Type) error {
	for _, s := range r.stack {
		if s == t {
			return CircularDependencyError{Node: t, Path: graph.CyclePath(r.stack, t)}
		}
	}
	r.stack = append(r.stack, t)
	return nil
}

func (r *resolution) leave() {
	r.stack = r.stack[:len(r.stack)-1]
}

// recipeFor returns the construction recipe for concrete. The constructor is
// selected again on every invocation.
func (c *Container) recipeFor(concrete reflect.Type) recipe {
	return func(r *resolution) (any, error) {
		return c.construct(r, concrete)
	}
}

// construct selects a constructor for concrete, resolves its parameters
// left to right and invokes it.
func (c *Container) construct(r *resolution, concrete reflect.Type) (any, error) {
	descriptor, err := c.descriptor(concrete)
	if err != nil {
		return nil, err
	}

	ctor, err := selectConstructor(descriptor)
	if err != nil {
		return nil, err
	}

	params := ctor.ParameterTypes()

	// Every parameter must have a validated provider before any argument
	// is materialized.
	providers := make([]resolvable, len(params))
	for i, param := range params {
		p, err := c.getProvider(r, param)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, BindingNotFoundError{Type: param, Dependent: concrete}
		}
		providers[i] = p
	}

	args := make([]reflect.Value, len(params))
	for i, p := range providers {
		instance, err := p.get(r)
		if err != nil {
			return nil, err
		}
		args[i] = argument(instance, params[i])
	}

	instance, err := ctor.call(concrete, args)
	if err != nil {
		c.logger.Debug("construction failed",
			zap.Stringer("type", concrete),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Debug("constructed",
		zap.Stringer("type", concrete),
		zap.Int("dependencies", len(params)),
	)

	return instance, nil
}

// getProvider looks up the provider for t and performs one trial
// construction with it. Unbound types yield nil without error.
func (c *Container) getProvider(r *resolution, t reflect.Type) (resolvable, error) {
	p := c.lookup(t)
	if p == nil {
		return nil, nil
	}

	if _, err := p.get(r); err != nil {
		return nil, err
	}

	return p, nil
}

// argument converts a resolved instance into a call argument of type t.
// A nil instance becomes the zero value of t.
func argument(instance any, t reflect.Type) reflect.Value {
	if instance == nil {
		return reflect.Zero(t)
	}
	return reflect.ValueOf(instance)
}
