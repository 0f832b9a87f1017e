package inject

import (
	"errors"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/junioryono/inject/internal/graph"
	"go.uber.org/zap"
)

// Container maps abstract types to providers and constructs object graphs
// on demand.
//
// Registration is expected to finish before concurrent resolution begins.
// Singleton providers are safe for concurrent use.
type Container struct {
	id     string
	logger *zap.Logger

	mu          sync.RWMutex
	providers   map[reflect.Type]resolvable
	descriptors map[reflect.Type]TypeDescriptor

	// Descriptors derived from the types themselves.
	derived sync.Map // map[reflect.Type]TypeDescriptor
}

// New creates an empty container.
func New(opts ...Option) *Container {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(o)
		}
	}

	logger := o.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Container{
		id:          uuid.NewString(),
		providers:   make(map[reflect.Type]resolvable),
		descriptors: make(map[reflect.Type]TypeDescriptor),
	}
	c.logger = logger.With(zap.String("container", c.id))

	for _, d := range o.descriptors {
		c.descriptors[d.Type()] = d
	}

	return c
}

// ID returns the unique identifier of the container.
func (c *Container) ID() string {
	return c.id
}

// Bind registers a transient provider building concrete for abstract.
// Nothing is constructed until the provider is requested. A previous
// binding for abstract is replaced.
//
// Each Get of a transient provider constructs anew, including the trial
// constructions GetProvider performs for every parameter.
func (c *Container) Bind(abstract, concrete reflect.Type) error {
	return c.bind(abstract, concrete, Transient)
}

// BindSingleton registers a singleton provider building concrete for abstract.
// Nothing is constructed until the provider is requested. A previous
// binding for abstract is replaced.
func (c *Container) BindSingleton(abstract, concrete reflect.Type) error {
	return c.bind(abstract, concrete, Singleton)
}

func (c *Container) bind(abstract, concrete reflect.Type, lifetime Lifetime) error {
	if abstract == nil || concrete == nil {
		return ValidationError{Type: abstract, Cause: ErrTypeNil}
	}

	if !concrete.AssignableTo(abstract) {
		return TypeMismatchError{
			Expected: abstract,
			Actual:   concrete,
			Context:  "binding",
		}
	}

	p := newProvider(abstract, concrete, lifetime, c.recipeFor(concrete), func() error {
		return c.checkAcyclic(abstract, concrete)
	})

	c.mu.Lock()
	previous := c.providers[abstract]
	c.providers[abstract] = p
	c.mu.Unlock()

	fields := []zap.Field{
		zap.Stringer("abstract", abstract),
		zap.Stringer("concrete", concrete),
		zap.Stringer("lifetime", lifetime),
	}
	if previous != nil {
		c.logger.Debug("binding replaced", append(fields, zap.Stringer("previous", previous.Implementation()))...)
	} else {
		c.logger.Debug("bound", fields...)
	}

	return nil
}

// Unbind removes the binding for abstract. It reports whether one existed.
func (c *Container) Unbind(abstract reflect.Type) bool {
	c.mu.Lock()
	_, ok := c.providers[abstract]
	delete(c.providers, abstract)
	c.mu.Unlock()

	if ok {
		c.logger.Debug("unbound", zap.Stringer("abstract", abstract))
	}
	return ok
}

// IsBound reports whether abstract has a binding.
func (c *Container) IsBound(abstract reflect.Type) bool {
	return c.lookup(abstract) != nil
}

// Bindings returns the bound abstract types sorted by name.
func (c *Container) Bindings() []reflect.Type {
	c.mu.RLock()
	types := make([]reflect.Type, 0, len(c.providers))
	for t := range c.providers {
		types = append(types, t)
	}
	c.mu.RUnlock()

	sort.Slice(types, func(i, j int) bool { return types[i].String() < types[j].String() })
	return types
}

// Lookup returns the provider bound to abstract without constructing
// anything, or nil if abstract is unbound.
func (c *Container) Lookup(abstract reflect.Type) Provider {
	if p := c.lookup(abstract); p != nil {
		return p
	}
	return nil
}

func (c *Container) lookup(abstract reflect.Type) resolvable {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.providers[abstract]
}

// Validate performs one trial construction with p. For singleton providers
// this creates the shared instance.
func (c *Container) Validate(p Provider) error {
	if p == nil {
		return ValidationError{Cause: ErrProviderNil}
	}

	if r, ok := p.(resolvable); ok {
		_, err := r.get(newResolution())
		return err
	}

	_, err := p.Get()
	return err
}

// GetProvider returns the provider bound to abstract after validating it
// with one trial construction, so that a missing or ambiguous constructor
// or a missing transitive binding is reported here rather than on first use.
//
// The trial runs constructors. A singleton trial creates the shared
// instance. Every construction also validates each parameter provider with
// its own trial before building the argument, so a chain of n transient
// bindings runs the innermost constructor 2^n times per construction.
// Use Lookup to obtain a provider without side effects.
//
// An unbound type yields (nil, nil). Any failure of the trial construction
// is returned unchanged.
func (c *Container) GetProvider(abstract reflect.Type) (Provider, error) {
	if abstract == nil {
		return nil, ValidationError{Cause: ErrTypeNil}
	}

	p, err := c.getProvider(newResolution(), abstract)
	if err != nil {
		c.logger.Warn("provider validation failed",
			zap.Stringer("abstract", abstract),
			zap.Error(err),
		)
		return nil, err
	}

	if p == nil {
		return nil, nil
	}
	return p, nil
}

// ValidateAll checks every binding without constructing anything: each
// bound concrete type must have a selectable constructor whose parameters
// are all bound, and the bindings must not depend on each other in a cycle.
// All problems found are joined into the returned error.
func (c *Container) ValidateAll() error {
	g, errs := c.dependencyGraph()
	if err := g.DetectCycles(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Order returns the bound abstract types ordered so that every type follows
// the types its constructor depends on.
func (c *Container) Order() ([]reflect.Type, error) {
	g, errs := c.dependencyGraph()
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return g.TopologicalSort()
}

func (c *Container) dependencyGraph() (*graph.DependencyGraph, []error) {
	g := graph.New()
	var errs []error

	for _, abstract := range c.Bindings() {
		p := c.lookup(abstract)
		if p == nil {
			continue
		}

		params, err := c.parameters(p.Implementation())
		if err != nil {
			errs = append(errs, err)
		}

		for _, param := range params {
			if !c.IsBound(param) {
				errs = append(errs, BindingNotFoundError{Type: param, Dependent: p.Implementation()})
			}
		}

		g.Add(abstract, params)
	}

	return g, errs
}

// checkAcyclic walks the bindings reachable from abstract, built with
// concrete, and returns the first dependency cycle among them. Bindings
// whose constructor cannot be selected end the walk; resolving them
// reports that error instead.
func (c *Container) checkAcyclic(abstract, concrete reflect.Type) error {
	g := graph.New()

	params, _ := c.parameters(concrete)
	g.Add(abstract, params)

	seen := map[reflect.Type]bool{abstract: true}
	queue := append([]reflect.Type(nil), params...)

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		if seen[t] {
			continue
		}
		seen[t] = true

		p := c.lookup(t)
		if p == nil {
			continue
		}

		deps, _ := c.parameters(p.Implementation())
		g.Add(t, deps)
		queue = append(queue, deps...)
	}

	return g.DetectCycles()
}

// parameters returns the parameter types of the constructor selected for concrete.
func (c *Container) parameters(concrete reflect.Type) ([]reflect.Type, error) {
	descriptor, err := c.descriptor(concrete)
	if err != nil {
		return nil, err
	}

	ctor, err := selectConstructor(descriptor)
	if err != nil {
		return nil, err
	}

	return ctor.ParameterTypes(), nil
}

// descriptor returns the registered descriptor for concrete, or the one
// derived from the type itself.
func (c *Container) descriptor(concrete reflect.Type) (TypeDescriptor, error) {
	c.mu.RLock()
	d, ok := c.descriptors[concrete]
	c.mu.RUnlock()
	if ok {
		return d, nil
	}

	if cached, ok := c.derived.Load(concrete); ok {
		return cached.(TypeDescriptor), nil
	}

	d, err := DescriptorOf(concrete)
	if err != nil {
		return nil, err
	}

	actual, _ := c.derived.LoadOrStore(concrete, d)
	return actual.(TypeDescriptor), nil
}

// Bind registers a transient binding from A to C.
func Bind[A, C any](c *Container) error {
	return c.Bind(reflect.TypeFor[A](), reflect.TypeFor[C]())
}

// BindSingleton registers a singleton binding from A to C.
func BindSingleton[A, C any](c *Container) error {
	return c.BindSingleton(reflect.TypeFor[A](), reflect.TypeFor[C]())
}

// GetProvider returns the validated provider for T, or nil if T is unbound.
func GetProvider[T any](c *Container) (*ProviderOf[T], error) {
	p, err := c.GetProvider(reflect.TypeFor[T]())
	if err != nil || p == nil {
		return nil, err
	}
	return NewProviderOf[T](p), nil
}

// Resolve constructs or returns an instance of T through its provider.
// Unlike GetProvider there is no separate trial construction, and an
// unbound T is a BindingNotFoundError.
func Resolve[T any](c *Container) (T, error) {
	t := reflect.TypeFor[T]()

	p := c.Lookup(t)
	if p == nil {
		var zero T
		return zero, BindingNotFoundError{Type: t}
	}

	return NewProviderOf[T](p).Get()
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container) T {
	instance, err := Resolve[T](c)
	if err != nil {
		panic(err)
	}
	return instance
}
