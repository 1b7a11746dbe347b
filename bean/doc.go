// Package bean implements the registration core of the beankit container:
// deciding whether a candidate type may become a managed component, and
// selecting the constructor the container must use to build it.
//
// The core never touches reflection. Candidate types arrive as TypeDescriptor
// values, a capability view that answers the structural questions the rules
// ask. The meta package provides the reflection-backed implementation.
//
// # Validation
//
//	resolver := bean.NewResolver()
//	validator := bean.NewValidator(resolver)
//	if err := validator.ValidateManagedType(desc); err != nil {
//	    // errors.CodeOf(err) names the violated rule
//	}
//
// # Constructor resolution
//
//	ctor, err := resolver.ResolveConstructor(desc)
//
// Resolution results are memoized per descriptor in a cache owned by the
// Resolver, so a validated type has its constructor decision already made.
package bean
