package testutil

import (
	"testing"

	"github.com/junioryono/inject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RequireProvider returns the validated provider for T, failing the test if
// T is unbound or its trial construction fails.
func RequireProvider[T any](t *testing.T, c *inject.Container) *inject.ProviderOf[T] {
	t.Helper()
	p, err := inject.GetProvider[T](c)
	require.NoError(t, err, "failed to get provider for %T", *new(T))
	require.NotNil(t, p, "no provider bound for %T", *new(T))
	return p
}

// RequireInstance returns an instance from p, failing the test on error.
func RequireInstance[T any](t *testing.T, p *inject.ProviderOf[T]) T {
	t.Helper()
	instance, err := p.Get()
	require.NoError(t, err, "failed to get instance of %T", *new(T))
	return instance
}

// AssertProviderError checks that GetProvider for T fails with target.
func AssertProviderError[T any](t *testing.T, c *inject.Container, target error) error {
	t.Helper()
	p, err := inject.GetProvider[T](c)
	assert.Nil(t, p, "expected no provider on failure")
	if assert.Error(t, err) {
		assert.ErrorIs(t, err, target)
	}
	return err
}

// AssertNoProvider checks that T is unbound: no provider and no error.
func AssertNoProvider[T any](t *testing.T, c *inject.Container) {
	t.Helper()
	p, err := inject.GetProvider[T](c)
	assert.NoError(t, err)
	assert.Nil(t, p)
}
