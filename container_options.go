package inject

import (
	"reflect"

	"go.uber.org/zap"
)

// Option configures a Container.
type Option interface {
	apply(*options)
}

// options holds container configuration.
type options struct {
	logger      *zap.Logger
	descriptors []TypeDescriptor
}

// optionFunc adapts a function to Option.
type optionFunc func(*options)

func (f optionFunc) apply(opts *options) {
	f(opts)
}

// WithLogger sets the logger used for binding and construction events.
// The default logger discards everything.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(opts *options) {
		opts.logger = logger
	})
}

// WithDescriptor registers the constructors of a concrete type explicitly.
// It takes precedence over what the type declares itself.
func WithDescriptor(d TypeDescriptor) Option {
	return optionFunc(func(opts *options) {
		if d != nil {
			opts.descriptors = append(opts.descriptors, d)
		}
	})
}

// WithConstructors is shorthand for WithDescriptor(Describe(t, constructors...)).
//
//	c := inject.New(inject.WithConstructors(
//	    reflect.TypeFor[*http.Client](),
//	    inject.Unmarked(func() *http.Client { return &http.Client{Timeout: 5 * time.Second} }),
//	))
func WithConstructors(t reflect.Type, constructors ...*Constructor) Option {
	return WithDescriptor(Describe(t, constructors...))
}
