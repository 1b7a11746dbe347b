package bean

import (
	"github.com/beankit/beankit/marker"
)

// TypeDescriptor is the capability view of a candidate component type. The
// validator and resolver ask descriptors structural questions instead of
// inspecting types themselves, which keeps the rules independent of how the
// metadata was obtained.
//
// Descriptors are used as cache keys and must be comparable; implementations
// are typically pointers with one canonical value per described type.
type TypeDescriptor interface {
	// Name returns the diagnostic name of the type, e.g. "webapp.UserService".
	Name() string
	// TopLevel reports whether the type is a named, package-level type.
	TopLevel() bool
	// Abstract reports whether the type cannot be instantiated directly.
	Abstract() bool
	// Extension reports whether the type implements the container-extension
	// capability.
	Extension() bool
	// Markers returns the markers attached to the type itself.
	Markers() marker.Set
	// PackageMarkers returns the markers attached to the declaring package.
	PackageMarkers() marker.Set
	// Constructors returns the declared constructors in declaration order.
	Constructors() []ConstructorDescriptor
}

// ConstructorDescriptor describes one way to construct a component.
type ConstructorDescriptor interface {
	// ParamCount returns the number of declared parameters.
	ParamCount() int
	// Markers returns the markers attached to the constructor.
	Markers() marker.Set
	// String returns a diagnostic rendering of the constructor.
	String() string
}
