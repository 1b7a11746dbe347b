package meta

import (
	"reflect"

	"github.com/beankit/beankit/bean"
	"github.com/beankit/beankit/marker"
)

// Type is the reflection-backed bean.TypeDescriptor. Values are created and
// interned by an Index; all fields are fixed at build time except package
// markers, which are looked up live so late vetoes still apply.
type Type struct {
	ix        *Index
	rtype     reflect.Type
	name      string
	pkgPath   string
	topLevel  bool
	abstract  bool
	extension bool
	markers   marker.Set
	declared  []*Constructor
	view      []bean.ConstructorDescriptor
}

// Name returns the diagnostic type name, e.g. "webapp.UserService".
func (t *Type) Name() string { return t.name }

// TopLevel reports whether the type is a named type. Anonymous types (struct
// literals, unnamed funcs, maps and slices) have no stable identity to
// register under and are the inner-type analog.
func (t *Type) TopLevel() bool { return t.topLevel }

// Abstract reports whether the type is an interface.
func (t *Type) Abstract() bool { return t.abstract }

// Extension reports whether the type, or a pointer to it, implements the
// Index capability interface.
func (t *Type) Extension() bool { return t.extension }

// Markers returns the markers declared for the type.
func (t *Type) Markers() marker.Set { return t.markers }

// PackageMarkers returns the markers registered for the declaring package.
func (t *Type) PackageMarkers() marker.Set { return t.ix.packageMarkers(t.pkgPath) }

// Constructors returns the declared constructors in declaration order.
func (t *Type) Constructors() []bean.ConstructorDescriptor { return t.view }

// Declared returns the constructors with their meta-level API intact.
func (t *Type) Declared() []*Constructor { return t.declared }

// Reflect returns the underlying reflect.Type after pointer normalization.
func (t *Type) Reflect() reflect.Type { return t.rtype }

// PkgPath returns the import path of the declaring package.
func (t *Type) PkgPath() string { return t.pkgPath }

// String returns the diagnostic type name.
func (t *Type) String() string { return t.name }
