package inject

import (
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// ============================================================================
// Shared Test Types
// ============================================================================

// TStore is an interface bound in most tests.
type TStore interface {
	Name() string
}

// TMemoryStore uses the implicit zero-parameter constructor.
type TMemoryStore struct {
	name string
}

func (s *TMemoryStore) Name() string { return s.name }

// TClock is a second dependency.
type TClock struct {
	_ byte
}

// TService depends on TStore through its marked constructor.
type TService struct {
	Store TStore
}

func NewTService(store TStore) *TService {
	return &TService{Store: store}
}

func (*TService) Constructors() []*Constructor {
	return []*Constructor{Marked(NewTService)}
}

// TServiceWithDeps takes two parameters, resolved left to right.
type TServiceWithDeps struct {
	Store TStore
	Clock *TClock
}

func (*TServiceWithDeps) Constructors() []*Constructor {
	return []*Constructor{
		Marked(func(store TStore, clock *TClock) *TServiceWithDeps {
			return &TServiceWithDeps{Store: store, Clock: clock}
		}),
	}
}

// TValue is a non-pointer struct declaring constructors on its pointer type.
type TValue struct {
	N int
}

func (*TValue) Constructors() []*Constructor {
	return []*Constructor{Unmarked(func() TValue { return TValue{N: 7} })}
}

// TSelfCycle depends on itself.
type TSelfCycle struct{}

func (*TSelfCycle) Constructors() []*Constructor {
	return []*Constructor{Marked(func(*TSelfCycle) *TSelfCycle { return &TSelfCycle{} })}
}

// TSlowCycleA and TSlowCycleB depend on each other. Listing their
// constructors is slow, which widens the window for concurrent resolution.
type (
	TSlowCycleA struct{ B *TSlowCycleB }
	TSlowCycleB struct{ A *TSlowCycleA }
)

func (*TSlowCycleA) Constructors() []*Constructor {
	time.Sleep(50 * time.Millisecond)
	return []*Constructor{Marked(func(b *TSlowCycleB) *TSlowCycleA { return &TSlowCycleA{B: b} })}
}

func (*TSlowCycleB) Constructors() []*Constructor {
	time.Sleep(50 * time.Millisecond)
	return []*Constructor{Marked(func(a *TSlowCycleA) *TSlowCycleB { return &TSlowCycleB{A: a} })}
}

// TPanickingDescriptor panics while listing its constructors.
type TPanickingDescriptor struct{}

func (*TPanickingDescriptor) Constructors() []*Constructor {
	panic("listing failed")
}

var errTest = errors.New("test error")

// ============================================================================
// Helpers
// ============================================================================

// newObservedContainer returns a container logging at debug level into an observer.
func newObservedContainer(t *testing.T, opts ...Option) (*Container, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	c := New(append([]Option{WithLogger(zap.New(core))}, opts...)...)
	return c, logs
}

// countingConstructor returns an unmarked zero-parameter constructor for
// *TMemoryStore and the counter it increments.
func countingConstructor() (*Constructor, *atomic.Int32) {
	var calls atomic.Int32
	return Unmarked(func() *TMemoryStore {
		n := calls.Add(1)
		return &TMemoryStore{name: fmt.Sprintf("store-%d", n)}
	}), &calls
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

func mustBind(t *testing.T, c *Container, abstract, concrete reflect.Type, lifetime Lifetime) {
	t.Helper()
	var err error
	if lifetime == Singleton {
		err = c.BindSingleton(abstract, concrete)
	} else {
		err = c.Bind(abstract, concrete)
	}
	require.NoError(t, err)
}
