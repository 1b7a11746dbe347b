package meta

import (
	"reflect"
	"sync"

	"github.com/beankit/beankit/bean"
	"github.com/beankit/beankit/errors"
	"github.com/beankit/beankit/marker"
)

// Index builds and interns type descriptors. It also carries the package
// marker registry and the extension capability interface, so descriptors can
// answer the structural questions the validator asks without the caller
// touching reflection.
type Index struct {
	mu         sync.RWMutex
	types      map[reflect.Type]*Type
	packages   map[string]marker.Set
	capability reflect.Type
}

// IndexOption configures a new Index.
type IndexOption func(*Index)

// WithCapability sets the interface that marks a type as a container
// extension. The argument must be an interface type; anything else leaves the
// capability unset and no type is ever reported as an extension.
func WithCapability(iface reflect.Type) IndexOption {
	return func(ix *Index) {
		if iface != nil && iface.Kind() == reflect.Interface {
			ix.capability = iface
		}
	}
}

// NewIndex creates an empty Index.
func NewIndex(opts ...IndexOption) *Index {
	ix := &Index{
		types:    make(map[reflect.Type]*Type),
		packages: make(map[string]marker.Set),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Option configures a single Describe call.
type Option func(*describeOptions)

type describeOptions struct {
	markers []marker.Marker
	ctors   []*Constructor
}

// WithMarkers attaches markers to the described type.
func WithMarkers(ms ...marker.Marker) Option {
	return func(o *describeOptions) { o.markers = append(o.markers, ms...) }
}

// WithConstructors declares the type's constructors in declaration order.
func WithConstructors(ctors ...*Constructor) Option {
	return func(o *describeOptions) { o.ctors = append(o.ctors, ctors...) }
}

// Describe returns the interned descriptor for t, building it on first use.
// Pointer types are normalized to their element type first. Re-describing an
// already interned type with options is rejected with CodeTypeRedefined, so
// a type's metadata cannot silently diverge between call sites.
func (ix *Index) Describe(t reflect.Type, opts ...Option) (*Type, error) {
	if t == nil {
		return nil, errors.InvalidDescriptor("nil reflect.Type")
	}
	t = Normalize(t)

	var o describeOptions
	for _, opt := range opts {
		opt(&o)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if existing, ok := ix.types[t]; ok {
		if len(opts) > 0 {
			return nil, errors.TypeRedefined(existing.name)
		}
		return existing, nil
	}

	built, err := ix.build(t, o)
	if err != nil {
		return nil, err
	}
	ix.types[t] = built
	return built, nil
}

// DescribeOf is Describe for prototypes: a value of the type, a typed nil
// pointer such as (*Store)(nil), or a reflect.Type.
func (ix *Index) DescribeOf(prototype any, opts ...Option) (*Type, error) {
	switch p := prototype.(type) {
	case nil:
		return nil, errors.InvalidDescriptor("nil prototype")
	case reflect.Type:
		return ix.Describe(p, opts...)
	default:
		return ix.Describe(reflect.TypeOf(prototype), opts...)
	}
}

// MarkPackage attaches markers to every type declared in the given import
// path. Calls merge, so repeated marking is cumulative and idempotent.
func (ix *Index) MarkPackage(pkgPath string, ms ...marker.Marker) {
	if pkgPath == "" || len(ms) == 0 {
		return
	}
	ix.mu.Lock()
	ix.packages[pkgPath] = ix.packages[pkgPath].Union(marker.NewSet(ms...))
	ix.mu.Unlock()
}

// MarkPackageOf marks the package that declares the prototype's type.
func (ix *Index) MarkPackageOf(prototype any, ms ...marker.Marker) {
	if prototype == nil {
		return
	}
	t := Normalize(reflect.TypeOf(prototype))
	ix.MarkPackage(t.PkgPath(), ms...)
}

func (ix *Index) packageMarkers(pkgPath string) marker.Set {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.packages[pkgPath]
}

// build constructs a descriptor. Caller holds the write lock.
func (ix *Index) build(t reflect.Type, o describeOptions) (*Type, error) {
	typ := &Type{
		ix:        ix,
		rtype:     t,
		name:      t.String(),
		pkgPath:   t.PkgPath(),
		topLevel:  t.Name() != "",
		abstract:  t.Kind() == reflect.Interface,
		extension: ix.implementsCapability(t),
		markers:   marker.NewSet(o.markers...),
	}

	declared := o.ctors
	if len(declared) == 0 && t.Kind() == reflect.Struct {
		// A struct with no declared constructors is constructible by zero
		// value, the analog of a default constructor.
		declared = []*Constructor{syntheticConstructor(t)}
	}
	for _, c := range declared {
		if err := validateConstructor(typ.name, t, c); err != nil {
			return nil, err
		}
	}

	typ.declared = declared
	typ.view = make([]bean.ConstructorDescriptor, len(declared))
	for i, c := range declared {
		typ.view[i] = c
	}
	return typ, nil
}

func (ix *Index) implementsCapability(t reflect.Type) bool {
	if ix.capability == nil {
		return false
	}
	return t.Implements(ix.capability) || reflect.PointerTo(t).Implements(ix.capability)
}

// Normalize strips pointer layers so *T and T describe the same component.
func Normalize(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
