package bean

import (
	"github.com/beankit/beankit/errors"
	"github.com/beankit/beankit/marker"
)

// Validator decides whether a candidate type is eligible to become a managed
// component. It applies a fixed, ordered list of structural rules and stops at
// the first violation, so a type breaking several rules always reports the
// earliest one.
type Validator struct {
	resolver *Resolver
}

// NewValidator creates a Validator backed by the given resolver. The
// constructor rule delegates to it, so a type that passes validation has its
// constructor decision already cached. A nil resolver gets a fresh one.
func NewValidator(resolver *Resolver) *Validator {
	if resolver == nil {
		resolver = NewResolver()
	}
	return &Validator{resolver: resolver}
}

type ruleFunc func(t TypeDescriptor) *errors.DefinitionError

// structuralRules run in declaration order; the first failure wins. The
// constructor rule is not listed here because it delegates to the resolver.
var structuralRules = []ruleFunc{
	checkTopLevel,
	checkConcrete,
	checkNotExtension,
	checkNotVetoed,
}

func checkTopLevel(t TypeDescriptor) *errors.DefinitionError {
	if t.TopLevel() {
		return nil
	}
	return errors.InnerType(t.Name())
}

func checkConcrete(t TypeDescriptor) *errors.DefinitionError {
	if !t.Abstract() || t.Markers().Has(marker.Decorator) {
		return nil
	}
	return errors.AbstractType(t.Name())
}

func checkNotExtension(t TypeDescriptor) *errors.DefinitionError {
	if !t.Extension() {
		return nil
	}
	return errors.ExtensionType(t.Name())
}

func checkNotVetoed(t TypeDescriptor) *errors.DefinitionError {
	if t.Markers().Has(marker.Vetoed) {
		return errors.VetoedType(t.Name(), "type")
	}
	if t.PackageMarkers().Has(marker.Vetoed) {
		return errors.VetoedType(t.Name(), "package")
	}
	return nil
}

// ValidateManagedType checks the candidate against every eligibility rule in
// order: the type must be top-level, concrete (or a decorator), not a
// container extension, not vetoed directly or via its package, and must
// declare a usable constructor. Returns nil when the type is eligible.
func (v *Validator) ValidateManagedType(t TypeDescriptor) error {
	if t == nil {
		return errors.InvalidDescriptor("nil descriptor")
	}
	for _, check := range structuralRules {
		if err := check(t); err != nil {
			return err
		}
	}
	if _, err := v.resolver.ResolveConstructor(t); err != nil {
		return err
	}
	return nil
}
