// Package testutil holds the domain fixtures shared by the container tests.
package testutil

import (
	"errors"

	"github.com/junioryono/inject"
)

// Entity is a stored domain object.
type Entity struct {
	ID string
}

// EventDAO reads events.
type EventDAO interface {
	Events() []Entity
}

// InMemoryEventDAO is an EventDAO with no backing store.
// It uses the implicit zero-parameter constructor.
type InMemoryEventDAO struct {
	// Keeps the struct non-zero-sized so distinct instances have distinct addresses.
	_ byte
}

func (*InMemoryEventDAO) Events() []Entity { return []Entity{} }

// ProfileDAO reads profiles.
type ProfileDAO interface {
	Profiles() []Entity
}

// InMemoryProfileDAO is a ProfileDAO with no backing store.
type InMemoryProfileDAO struct {
	_ byte
}

func (*InMemoryProfileDAO) Profiles() []Entity { return []Entity{} }

// EventService depends on an EventDAO through its marked constructor.
type EventService struct {
	dao EventDAO
}

// NewEventService is the injectable constructor of EventService.
func NewEventService(dao EventDAO) *EventService {
	return &EventService{dao: dao}
}

func (*EventService) Constructors() []*inject.Constructor {
	return []*inject.Constructor{inject.Marked(NewEventService)}
}

// DAO returns the injected EventDAO.
func (s *EventService) DAO() EventDAO { return s.dao }

// InjectAmbiguityService marks two constructors and so cannot be resolved.
type InjectAmbiguityService struct {
	eventDAO   EventDAO
	profileDAO ProfileDAO
}

func NewInjectAmbiguityServiceWithEvents(dao EventDAO) *InjectAmbiguityService {
	return &InjectAmbiguityService{eventDAO: dao}
}

func NewInjectAmbiguityServiceWithProfiles(dao ProfileDAO) *InjectAmbiguityService {
	return &InjectAmbiguityService{profileDAO: dao}
}

func (*InjectAmbiguityService) Constructors() []*inject.Constructor {
	return []*inject.Constructor{
		inject.Marked(NewInjectAmbiguityServiceWithEvents),
		inject.Marked(NewInjectAmbiguityServiceWithProfiles),
	}
}

// NoSuitableConstructorService has neither a marked nor a zero-parameter constructor.
type NoSuitableConstructorService struct {
	dao EventDAO
}

func NewNoSuitableConstructorService(dao EventDAO) *NoSuitableConstructorService {
	return &NoSuitableConstructorService{dao: dao}
}

func (*NoSuitableConstructorService) Constructors() []*inject.Constructor {
	return []*inject.Constructor{inject.Unmarked(NewNoSuitableConstructorService)}
}

// ReportService depends on both DAOs, resolved left to right.
type ReportService struct {
	Events   EventDAO
	Profiles ProfileDAO
}

func NewReportService(events EventDAO, profiles ProfileDAO) *ReportService {
	return &ReportService{Events: events, Profiles: profiles}
}

func (*ReportService) Constructors() []*inject.Constructor {
	return []*inject.Constructor{
		inject.Unmarked(func() *ReportService { return &ReportService{} }),
		inject.Marked(NewReportService),
	}
}

// ErrStoreUnavailable is returned by constructors simulating a failed backing store.
var ErrStoreUnavailable = errors.New("event store unavailable")
