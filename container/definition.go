package container

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/beankit/beankit/marker"
	"github.com/beankit/beankit/meta"
)

// Lifetime controls when a component is constructed and how long the
// container keeps the instance.
type Lifetime int

const (
	// Singleton builds the component on first resolve and reuses the
	// instance afterwards. This is the default.
	Singleton Lifetime = iota
	// Eager builds the component during Register.
	Eager
	// Transient builds a fresh instance on every resolve.
	Transient
)

func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Eager:
		return "eager"
	case Transient:
		return "transient"
	default:
		return "unknown"
	}
}

// Definition is the container's record of a registered component.
type Definition struct {
	desc     *meta.Type
	ctor     *meta.Constructor
	name     string
	lifetime Lifetime
	produces reflect.Type
	external bool

	mu       sync.Mutex
	built    atomic.Bool
	instance any
}

// provides reports whether the component's constructed value can satisfy a
// dependency of type t.
func (d *Definition) provides(t reflect.Type) bool {
	return d.produces != nil && d.produces.AssignableTo(t)
}

// DefinitionInfo is a read-only snapshot of a registered component, in the
// shape Definitions returns for introspection endpoints.
type DefinitionInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Lifetime    string `json:"lifetime"`
	Constructor string `json:"constructor"`
	Markers     string `json:"markers,omitempty"`
	Built       bool   `json:"built"`
}

// registration collects the per-component options passed to Register and
// RegisterInstance.
type registration struct {
	name     string
	lifetime Lifetime
	markers  []marker.Marker
	ctors    []*meta.Constructor
}

// RegisterOption customises a single registration.
type RegisterOption func(*registration)

// Named registers the component under an explicit name instead of its type
// name. Names must be unique within a container.
func Named(name string) RegisterOption {
	return func(r *registration) {
		r.name = name
	}
}

// WithLifetime sets the component lifetime.
func WithLifetime(l Lifetime) RegisterOption {
	return func(r *registration) {
		r.lifetime = l
	}
}

// AsEager is shorthand for WithLifetime(Eager).
func AsEager() RegisterOption {
	return WithLifetime(Eager)
}

// AsTransient is shorthand for WithLifetime(Transient).
func AsTransient() RegisterOption {
	return WithLifetime(Transient)
}

// WithMarkers attaches markers to the component type.
func WithMarkers(ms ...marker.Marker) RegisterOption {
	return func(r *registration) {
		r.markers = append(r.markers, ms...)
	}
}

// WithConstructors declares the component's constructors. Without this
// option struct types fall back to their synthetic zero-parameter
// constructor.
func WithConstructors(ctors ...*meta.Constructor) RegisterOption {
	return func(r *registration) {
		r.ctors = append(r.ctors, ctors...)
	}
}
