package bean

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/beankit/beankit/errors"
	"github.com/beankit/beankit/marker"
)

// fakeCtor implements ConstructorDescriptor for rule tests.
type fakeCtor struct {
	label   string
	params  int
	markers marker.Set
}

func (f *fakeCtor) ParamCount() int     { return f.params }
func (f *fakeCtor) Markers() marker.Set { return f.markers }
func (f *fakeCtor) String() string      { return f.label }

// fakeType implements TypeDescriptor and counts constructor enumerations so
// tests can observe how often the resolver scans.
type fakeType struct {
	name         string
	topLevel     bool
	abstract     bool
	extension    bool
	markers      marker.Set
	pkgMarkers   marker.Set
	ctors        []ConstructorDescriptor
	enumerations atomic.Int64
}

func (f *fakeType) Name() string               { return f.name }
func (f *fakeType) TopLevel() bool             { return f.topLevel }
func (f *fakeType) Abstract() bool             { return f.abstract }
func (f *fakeType) Extension() bool            { return f.extension }
func (f *fakeType) Markers() marker.Set        { return f.markers }
func (f *fakeType) PackageMarkers() marker.Set { return f.pkgMarkers }

func (f *fakeType) Constructors() []ConstructorDescriptor {
	f.enumerations.Add(1)
	return f.ctors
}

// eligible returns a descriptor that passes every rule.
func eligible(name string) *fakeType {
	return &fakeType{
		name:     name,
		topLevel: true,
		ctors:    []ConstructorDescriptor{&fakeCtor{label: "zero", params: 0}},
	}
}

func TestValidator_EligibleType_Passes(t *testing.T) {
	v := NewValidator(NewResolver())
	if err := v.ValidateManagedType(eligible("pkg.Service")); err != nil {
		t.Fatalf("expected eligible type to validate, got %v", err)
	}
}

func TestValidator_NilDescriptor_Rejected(t *testing.T) {
	v := NewValidator(nil)
	err := v.ValidateManagedType(nil)
	if errors.CodeOf(err) != errors.CodeInvalidDescriptor {
		t.Errorf("expected INVALID_DESCRIPTOR, got %v", err)
	}
}

func TestValidator_Rules_Table(t *testing.T) {
	tests := []struct {
		name string
		desc *fakeType
		code errors.Code
	}{
		{
			name: "inner type",
			desc: &fakeType{name: "anon", topLevel: false,
				ctors: []ConstructorDescriptor{&fakeCtor{params: 0}}},
			code: errors.CodeInnerType,
		},
		{
			name: "abstract type",
			desc: &fakeType{name: "pkg.Reader", topLevel: true, abstract: true,
				ctors: []ConstructorDescriptor{&fakeCtor{params: 0}}},
			code: errors.CodeAbstractType,
		},
		{
			name: "extension type",
			desc: &fakeType{name: "pkg.Ext", topLevel: true, extension: true,
				ctors: []ConstructorDescriptor{&fakeCtor{params: 0}}},
			code: errors.CodeExtensionType,
		},
		{
			name: "vetoed type",
			desc: &fakeType{name: "pkg.Old", topLevel: true, markers: marker.NewSet(marker.Vetoed),
				ctors: []ConstructorDescriptor{&fakeCtor{params: 0}}},
			code: errors.CodeVetoedType,
		},
		{
			name: "vetoed via package",
			desc: &fakeType{name: "legacy.Old", topLevel: true, pkgMarkers: marker.NewSet(marker.Vetoed),
				ctors: []ConstructorDescriptor{&fakeCtor{params: 0}}},
			code: errors.CodeVetoedType,
		},
		{
			name: "no eligible constructor",
			desc: &fakeType{name: "pkg.NoCtor", topLevel: true,
				ctors: []ConstructorDescriptor{&fakeCtor{params: 2}}},
			code: errors.CodeNoEligibleConstructor,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := NewValidator(NewResolver())
			err := v.ValidateManagedType(tc.desc)
			if errors.CodeOf(err) != tc.code {
				t.Errorf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestValidator_RuleOrder_FirstViolationWins(t *testing.T) {
	// Violates both the top-level rule and the veto rule; the earlier rule
	// must be the one reported.
	desc := &fakeType{
		name:     "anon",
		topLevel: false,
		markers:  marker.NewSet(marker.Vetoed),
	}
	v := NewValidator(nil)
	err := v.ValidateManagedType(desc)
	if errors.CodeOf(err) != errors.CodeInnerType {
		t.Errorf("expected INNER_TYPE to win over VETOED_TYPE, got %v", err)
	}
}

func TestValidator_DecoratorMarker_ExemptsAbstract(t *testing.T) {
	desc := &fakeType{
		name:     "pkg.LoggingDecorator",
		topLevel: true,
		abstract: true,
		markers:  marker.NewSet(marker.Decorator),
		ctors:    []ConstructorDescriptor{&fakeCtor{params: 0}},
	}
	v := NewValidator(nil)
	if err := v.ValidateManagedType(desc); err != nil {
		t.Errorf("expected decorator-marked abstract type to pass, got %v", err)
	}
}

func TestValidator_PackageVeto_MatchesDirectVeto(t *testing.T) {
	direct := &fakeType{name: "pkg.A", topLevel: true, markers: marker.NewSet(marker.Vetoed)}
	viaPkg := &fakeType{name: "pkg.B", topLevel: true, pkgMarkers: marker.NewSet(marker.Vetoed)}

	v := NewValidator(nil)
	errDirect := v.ValidateManagedType(direct)
	errPkg := v.ValidateManagedType(viaPkg)

	if errors.CodeOf(errDirect) != errors.CodeVetoedType || errors.CodeOf(errPkg) != errors.CodeVetoedType {
		t.Fatalf("expected both vetoes to report VETOED_TYPE, got %v / %v", errDirect, errPkg)
	}

	defDirect, _ := errors.AsDefinition(errDirect)
	defPkg, _ := errors.AsDefinition(errPkg)
	if defDirect.Details["vetoed_via"] != "type" {
		t.Errorf("expected direct veto via type, got %v", defDirect.Details["vetoed_via"])
	}
	if defPkg.Details["vetoed_via"] != "package" {
		t.Errorf("expected package veto via package, got %v", defPkg.Details["vetoed_via"])
	}
}

func TestValidator_SharesResolverCache(t *testing.T) {
	desc := eligible("pkg.Shared")
	r := NewResolver()
	v := NewValidator(r)

	if err := v.ValidateManagedType(desc); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if _, err := r.ResolveConstructor(desc); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got := desc.enumerations.Load(); got != 1 {
		t.Errorf("expected a single enumeration across validate+resolve, got %d", got)
	}
}

func TestResolver_PrefersHighestParamCountInjectable(t *testing.T) {
	zero := &fakeCtor{label: "zero", params: 0}
	two := &fakeCtor{label: "two", params: 2, markers: marker.NewSet(marker.Inject)}
	three := &fakeCtor{label: "three", params: 3} // most params but not injectable

	desc := &fakeType{name: "pkg.S", topLevel: true,
		ctors: []ConstructorDescriptor{zero, two, three}}

	got, err := NewResolver().ResolveConstructor(desc)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got != two {
		t.Errorf("expected the 2-param inject constructor, got %v", got)
	}
}

func TestResolver_ZeroParamFallback(t *testing.T) {
	zero := &fakeCtor{label: "zero", params: 0}
	desc := &fakeType{name: "pkg.S", topLevel: true,
		ctors: []ConstructorDescriptor{&fakeCtor{label: "four", params: 4}, zero}}

	got, err := NewResolver().ResolveConstructor(desc)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got != zero {
		t.Errorf("expected the zero-param constructor, got %v", got)
	}
}

func TestResolver_TieBreak_FirstDeclaredWins(t *testing.T) {
	first := &fakeCtor{label: "first", params: 1, markers: marker.NewSet(marker.Inject)}
	second := &fakeCtor{label: "second", params: 1, markers: marker.NewSet(marker.Inject)}
	desc := &fakeType{name: "pkg.S", topLevel: true,
		ctors: []ConstructorDescriptor{first, second}}

	got, err := NewResolver().ResolveConstructor(desc)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got != first {
		t.Errorf("expected the first-declared constructor on a tie, got %v", got)
	}
}

func TestResolver_DoesNotMutateDeclaredOrder(t *testing.T) {
	a := &fakeCtor{label: "a", params: 0}
	b := &fakeCtor{label: "b", params: 2, markers: marker.NewSet(marker.Inject)}
	declared := []ConstructorDescriptor{a, b}
	desc := &fakeType{name: "pkg.S", topLevel: true, ctors: declared}

	if _, err := NewResolver().ResolveConstructor(desc); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if declared[0] != a || declared[1] != b {
		t.Error("resolver must not reorder the declared constructor slice")
	}
}

func TestResolver_MemoizesSuccess(t *testing.T) {
	desc := eligible("pkg.Cached")
	r := NewResolver()

	first, err := r.ResolveConstructor(desc)
	if err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	second, err := r.ResolveConstructor(desc)
	if err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}

	if first != second {
		t.Error("expected identical constructor descriptor on repeat resolve")
	}
	if got := desc.enumerations.Load(); got != 1 {
		t.Errorf("expected one enumeration, got %d", got)
	}

	stats := r.Stats()
	if stats.Entries != 1 || stats.Misses != 1 || stats.Hits != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestResolver_FailureRetriesNextCall(t *testing.T) {
	desc := &fakeType{name: "pkg.Bad", topLevel: true,
		ctors: []ConstructorDescriptor{&fakeCtor{params: 3}}}
	r := NewResolver()

	if _, err := r.ResolveConstructor(desc); errors.CodeOf(err) != errors.CodeNoEligibleConstructor {
		t.Fatalf("expected NO_ELIGIBLE_CONSTRUCTOR, got %v", err)
	}
	if _, err := r.ResolveConstructor(desc); errors.CodeOf(err) != errors.CodeNoEligibleConstructor {
		t.Fatalf("expected NO_ELIGIBLE_CONSTRUCTOR on retry, got %v", err)
	}

	if got := desc.enumerations.Load(); got != 2 {
		t.Errorf("expected failed resolution to re-enumerate, got %d enumerations", got)
	}
	if stats := r.Stats(); stats.Entries != 0 {
		t.Errorf("expected failures to be evicted, got %d entries", stats.Entries)
	}
}

func TestResolver_IndependentCaches(t *testing.T) {
	desc := eligible("pkg.Shared")
	r1 := NewResolver()
	r2 := NewResolver()

	if _, err := r1.ResolveConstructor(desc); err != nil {
		t.Fatalf("resolve on r1 failed: %v", err)
	}
	if _, err := r2.ResolveConstructor(desc); err != nil {
		t.Fatalf("resolve on r2 failed: %v", err)
	}

	if got := desc.enumerations.Load(); got != 2 {
		t.Errorf("expected each resolver to enumerate once, got %d", got)
	}
}

func TestResolver_ConcurrentResolve_SingleEnumeration(t *testing.T) {
	desc := eligible("pkg.Hot")
	r := NewResolver()

	const goroutines = 32
	results := make([]ConstructorDescriptor, goroutines)
	errs := make([]error, goroutines)

	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer done.Done()
			start.Wait()
			results[i], errs[i] = r.ResolveConstructor(desc)
		}(i)
	}
	start.Done()
	done.Wait()

	for i := 0; i < goroutines; i++ {
		if errs[i] != nil {
			t.Fatalf("goroutine %d failed: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Fatalf("goroutine %d observed a different constructor", i)
		}
	}
	if got := desc.enumerations.Load(); got != 1 {
		t.Errorf("expected exactly one enumeration under contention, got %d", got)
	}
	if stats := r.Stats(); stats.Hits+stats.Misses != goroutines {
		t.Errorf("expected %d accounted calls, got %+v", goroutines, stats)
	}
}
