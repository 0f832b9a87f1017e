// Package inject provides a minimal dependency injection container.
//
// A Container maps abstract types (usually interfaces) to concrete types.
// Binding is lazy: nothing is constructed until a provider is asked for an
// instance. Construction selects one constructor of the concrete type and
// resolves each of its parameters through the container, recursively.
//
// # Basic Usage
//
//	c := inject.New()
//	inject.BindSingleton[EventDAO, *InMemoryEventDAO](c)
//	inject.Bind[*EventService, *EventService](c)
//
//	p, err := inject.GetProvider[*EventService](c)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	service := p.MustGet()
//
// # Lifetimes
//
//   - Transient: every Get constructs a new instance
//   - Singleton: the first successful Get constructs the instance, later calls return it
//
// A singleton is constructed at most once even when many goroutines request
// it concurrently. A failed construction is not cached.
//
// # Constructors
//
// A type declares its constructors by implementing Constructible:
//
//	func (*EventService) Constructors() []*inject.Constructor {
//	    return []*inject.Constructor{inject.Marked(NewEventService)}
//	}
//
// The constructor used is the single one created with Marked. Without a
// marked constructor, the first zero-parameter constructor is used. Two
// marked constructors are a ConstructorAmbiguityError; neither option is a
// NoSuitableConstructorError. Structs that do not implement Constructible get
// an implicit zero-parameter constructor; interfaces have none.
//
// Types from other packages can be given constructors with WithConstructors.
//
// # Errors
//
// GetProvider performs one trial construction, so missing bindings,
// ambiguous or missing constructors, circular dependencies and constructor
// failures are reported there. Lookup returns the provider without
// constructing anything. Typed errors match their sentinels with errors.Is:
//
//	if errors.Is(err, inject.ErrBindingNotFound) {
//	    // ...
//	}
//
// ValidateAll checks every binding statically and joins all problems found.
//
// # Logging
//
// Containers log binding and construction events through zap when created
// with WithLogger. The default logger discards everything.
package inject
