package inject

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Metadata(t *testing.T) {
	tests := []struct {
		name     string
		lifetime Lifetime
	}{
		{"transient", Transient},
		{"singleton", Singleton},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			mustBind(t, c, typeOf[TStore](), typeOf[*TMemoryStore](), tt.lifetime)

			p := c.Lookup(typeOf[TStore]())
			require.NotNil(t, p)
			assert.Equal(t, typeOf[TStore](), p.Type())
			assert.Equal(t, typeOf[*TMemoryStore](), p.Implementation())
			assert.Equal(t, tt.lifetime, p.Lifetime())
		})
	}
}

func TestTransientProvider(t *testing.T) {
	ctor, calls := countingConstructor()
	c := New(WithConstructors(typeOf[*TMemoryStore](), ctor))
	mustBind(t, c, typeOf[TStore](), typeOf[*TMemoryStore](), Transient)

	p := c.Lookup(typeOf[TStore]())
	require.NotNil(t, p)

	first, err := p.Get()
	require.NoError(t, err)
	second, err := p.Get()
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, "store-1", first.(TStore).Name())
	assert.Equal(t, "store-2", second.(TStore).Name())
	assert.Equal(t, int32(2), calls.Load())
}

func TestSingletonProvider(t *testing.T) {
	t.Run("constructs once", func(t *testing.T) {
		ctor, calls := countingConstructor()
		c := New(WithConstructors(typeOf[*TMemoryStore](), ctor))
		mustBind(t, c, typeOf[TStore](), typeOf[*TMemoryStore](), Singleton)

		p := c.Lookup(typeOf[TStore]())
		require.NotNil(t, p)

		for i := 0; i < 5; i++ {
			instance, err := p.Get()
			require.NoError(t, err)
			assert.Equal(t, "store-1", instance.(TStore).Name())
		}
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("lookup does not construct", func(t *testing.T) {
		ctor, calls := countingConstructor()
		c := New(WithConstructors(typeOf[*TMemoryStore](), ctor))
		mustBind(t, c, typeOf[TStore](), typeOf[*TMemoryStore](), Singleton)

		require.NotNil(t, c.Lookup(typeOf[TStore]()))
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("concurrent first access", func(t *testing.T) {
		const goroutines = 64

		var calls atomic.Int32
		c := New(WithConstructors(typeOf[*TMemoryStore](), Unmarked(func() *TMemoryStore {
			calls.Add(1)
			time.Sleep(20 * time.Millisecond)
			return &TMemoryStore{}
		})))
		mustBind(t, c, typeOf[TStore](), typeOf[*TMemoryStore](), Singleton)

		p := c.Lookup(typeOf[TStore]())
		require.NotNil(t, p)

		var (
			wg      sync.WaitGroup
			results sync.Map
		)
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				instance, err := p.Get()
				assert.NoError(t, err)
				results.Store(i, instance)
			}(i)
		}
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())

		first, _ := results.Load(0)
		results.Range(func(_, v any) bool {
			assert.Same(t, first, v)
			return true
		})
	})

	t.Run("failure is not cached", func(t *testing.T) {
		var attempts atomic.Int32
		c := New(WithConstructors(typeOf[*TMemoryStore](), Unmarked(func() (*TMemoryStore, error) {
			if attempts.Add(1) == 1 {
				return nil, errTest
			}
			return &TMemoryStore{name: "recovered"}, nil
		})))
		mustBind(t, c, typeOf[TStore](), typeOf[*TMemoryStore](), Singleton)

		p := c.Lookup(typeOf[TStore]())
		require.NotNil(t, p)

		_, err := p.Get()
		require.ErrorIs(t, err, errTest)

		instance, err := p.Get()
		require.NoError(t, err)
		assert.Equal(t, "recovered", instance.(TStore).Name())

		again, err := p.Get()
		require.NoError(t, err)
		assert.Same(t, instance, again)
		assert.Equal(t, int32(2), attempts.Load())
	})

	t.Run("nil instance is cached", func(t *testing.T) {
		var calls atomic.Int32
		c := New(WithConstructors(typeOf[*TMemoryStore](), Unmarked(func() *TMemoryStore {
			calls.Add(1)
			return nil
		})))
		mustBind(t, c, typeOf[*TMemoryStore](), typeOf[*TMemoryStore](), Singleton)

		p := c.Lookup(typeOf[*TMemoryStore]())
		require.NotNil(t, p)

		for i := 0; i < 3; i++ {
			instance, err := p.Get()
			require.NoError(t, err)
			assert.Nil(t, instance)
		}
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestSingletonProvider_SharedAcrossDependents(t *testing.T) {
	c := New()
	mustBind(t, c, typeOf[TStore](), typeOf[*TMemoryStore](), Singleton)
	mustBind(t, c, typeOf[*TClock](), typeOf[*TClock](), Transient)
	mustBind(t, c, typeOf[*TService](), typeOf[*TService](), Transient)
	mustBind(t, c, typeOf[*TServiceWithDeps](), typeOf[*TServiceWithDeps](), Transient)

	service, err := Resolve[*TService](c)
	require.NoError(t, err)
	withDeps := MustResolve[*TServiceWithDeps](c)

	assert.Same(t, service.Store, withDeps.Store)
	assert.NotNil(t, withDeps.Clock)
}

func TestProviderOf(t *testing.T) {
	t.Run("nil provider", func(t *testing.T) {
		assert.Nil(t, NewProviderOf[TStore](nil))
	})

	t.Run("typed get", func(t *testing.T) {
		c := New()
		mustBind(t, c, typeOf[TStore](), typeOf[*TMemoryStore](), Singleton)

		p := NewProviderOf[TStore](c.Lookup(typeOf[TStore]()))
		require.NotNil(t, p)

		store, err := p.Get()
		require.NoError(t, err)
		assert.IsType(t, &TMemoryStore{}, store)
		assert.Same(t, store, p.MustGet())
		assert.Equal(t, typeOf[TStore](), p.Provider().Type())
	})

	t.Run("type mismatch", func(t *testing.T) {
		c := New()
		mustBind(t, c, typeOf[TStore](), typeOf[*TMemoryStore](), Transient)

		p := NewProviderOf[*TClock](c.Lookup(typeOf[TStore]()))
		_, err := p.Get()

		var mismatch TypeMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "provider result", mismatch.Context)
		assert.Equal(t, typeOf[*TClock](), mismatch.Expected)
		assert.Equal(t, typeOf[*TMemoryStore](), mismatch.Actual)

		assert.Panics(t, func() { p.MustGet() })
	})

	t.Run("error is returned", func(t *testing.T) {
		c := New(WithConstructors(typeOf[*TMemoryStore](), Unmarked(func() (*TMemoryStore, error) {
			return nil, errTest
		})))
		mustBind(t, c, typeOf[TStore](), typeOf[*TMemoryStore](), Transient)

		p := NewProviderOf[TStore](c.Lookup(typeOf[TStore]()))
		store, err := p.Get()
		assert.ErrorIs(t, err, errTest)
		assert.Nil(t, store)
	})
}
