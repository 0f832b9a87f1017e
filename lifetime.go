package inject

import (
	"encoding/json"
	"fmt"
)

// Lifetime specifies how a provider caches the instances it constructs.
type Lifetime int

const (
	// Transient specifies that a new instance is constructed on every request.
	// The container keeps no reference to it.
	Transient Lifetime = iota

	// Singleton specifies that a single instance is constructed on first
	// request and shared for the lifetime of the provider.
	// Concurrent first requests block until the one construction completes.
	Singleton
)

// String returns the string representation of the Lifetime.
func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "Transient"
	case Singleton:
		return "Singleton"
	default:
		return fmt.Sprintf("Unknown(%d)", int(l))
	}
}

// IsValid checks if the lifetime is valid.
func (l Lifetime) IsValid() bool {
	return l >= Transient && l <= Singleton
}

// MarshalText implements encoding.TextMarshaler.
func (l Lifetime) MarshalText() ([]byte, error) {
	if !l.IsValid() {
		return nil, LifetimeError{Value: int(l)}
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Lifetime) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Transient", "transient":
		*l = Transient
	case "Singleton", "singleton":
		*l = Singleton
	default:
		return LifetimeError{Value: string(text)}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l Lifetime) MarshalJSON() ([]byte, error) {
	text, err := l.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Lifetime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	return l.UnmarshalText([]byte(s))
}
