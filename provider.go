package inject

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// Provider is a deferred, zero-argument factory for a bound abstract type.
type Provider interface {
	// Type returns the abstract type the provider is bound to.
	Type() reflect.Type

	// Implementation returns the concrete type the provider constructs.
	Implementation() reflect.Type

	// Lifetime returns how constructed instances are cached.
	Lifetime() Lifetime

	// Get returns an instance, constructing it if the lifetime requires.
	// Construction failures are returned, never swallowed.
	Get() (any, error)
}

// recipe builds one instance of the concrete type within a resolution.
type recipe func(r *resolution) (any, error)

// resolvable is implemented by the providers created by a Container, which
// take part in the caller's resolution for cycle detection.
type resolvable interface {
	Provider
	get(r *resolution) (any, error)
}

var (
	_ resolvable = (*transientProvider)(nil)
	_ resolvable = (*singletonProvider)(nil)
)

type binding struct {
	abstract reflect.Type
	concrete reflect.Type
	build    recipe

	// acyclic reports a dependency cycle reachable from the binding.
	acyclic func() error
}

func (b *binding) Type() reflect.Type           { return b.abstract }
func (b *binding) Implementation() reflect.Type { return b.concrete }

// transientProvider constructs a new instance on every call.
type transientProvider struct {
	binding
}

func (p *transientProvider) Lifetime() Lifetime { return Transient }

func (p *transientProvider) Get() (any, error) {
	return p.get(newResolution())
}

func (p *transientProvider) get(r *resolution) (any, error) {
	if err := r.enter(p.abstract); err != nil {
		return nil, err
	}
	defer r.leave()

	return p.build(r)
}

// singletonProvider constructs its instance once, on first request.
// A failed construction caches nothing; the next call tries again.
type singletonProvider struct {
	binding

	mu       sync.Mutex
	created  atomic.Bool
	instance any
}

func (p *singletonProvider) Lifetime() Lifetime { return Singleton }

func (p *singletonProvider) Get() (any, error) {
	return p.get(newResolution())
}

func (p *singletonProvider) get(r *resolution) (any, error) {
	// Cycle checks happen before locking: mu is not re-entrant, and on a
	// cycle another goroutine may hold a singleton this one is about to wait on.
	if err := r.enter(p.abstract); err != nil {
		return nil, err
	}
	defer r.leave()

	if !p.created.Load() {
		if err := p.acyclic(); err != nil {
			return nil, err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.created.Load() {
		return p.instance, nil
	}

	instance, err := p.build(r)
	if err != nil {
		return nil, err
	}

	p.instance = instance
	p.created.Store(true)
	return instance, nil
}

func newProvider(abstract, concrete reflect.Type, lifetime Lifetime, build recipe, acyclic func() error) resolvable {
	b := binding{
		abstract: abstract,
		concrete: concrete,
		build:    build,
		acyclic:  acyclic,
	}

	if lifetime == Singleton {
		return &singletonProvider{binding: b}
	}
	return &transientProvider{binding: b}
}

// ProviderOf is a Provider with a typed Get.
type ProviderOf[T any] struct {
	provider Provider
}

// NewProviderOf wraps p. It returns nil if p is nil.
func NewProviderOf[T any](p Provider) *ProviderOf[T] {
	if p == nil {
		return nil
	}
	return &ProviderOf[T]{provider: p}
}

// Get returns an instance as T.
func (p *ProviderOf[T]) Get() (T, error) {
	var zero T

	instance, err := p.provider.Get()
	if err != nil {
		return zero, err
	}

	if instance == nil {
		return zero, nil
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, TypeMismatchError{
			Expected: reflect.TypeFor[T](),
			Actual:   reflect.TypeOf(instance),
			Context:  "provider result",
		}
	}

	return typed, nil
}

// MustGet is like Get but panics on error.
func (p *ProviderOf[T]) MustGet() T {
	instance, err := p.Get()
	if err != nil {
		panic(err)
	}
	return instance
}

// Provider returns the untyped provider.
func (p *ProviderOf[T]) Provider() Provider {
	return p.provider
}
