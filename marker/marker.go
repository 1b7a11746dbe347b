package marker

// Marker is a named attribute attached to a type, a package or a constructor.
type Marker string

// Standard markers understood by the registration core.
const (
	// Inject marks a constructor as usable for injection even though it
	// declares parameters.
	Inject Marker = "inject"
	// Vetoed excludes a type from registration. On a package it excludes
	// every type declared in that package.
	Vetoed Marker = "vetoed"
	// Decorator marks a type as a decorator, exempting it from the
	// concreteness rule.
	Decorator Marker = "decorator"
)

// String returns the marker name.
func (m Marker) String() string { return string(m) }
