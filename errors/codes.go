package errors

// Code represents a machine-readable error code.
type Code string

// Eligibility codes, one per structural rule of the managed-type validator.
const (
	// CodeInvalidDescriptor indicates a nil or degenerate type descriptor.
	CodeInvalidDescriptor Code = "INVALID_DESCRIPTOR"
	// CodeInnerType indicates the candidate is not a top-level named type.
	CodeInnerType Code = "INNER_TYPE"
	// CodeAbstractType indicates the candidate is abstract and not a decorator.
	CodeAbstractType Code = "ABSTRACT_TYPE"
	// CodeExtensionType indicates the candidate implements the container-extension capability.
	CodeExtensionType Code = "EXTENSION_TYPE"
	// CodeVetoedType indicates the candidate is vetoed, directly or via its package.
	CodeVetoedType Code = "VETOED_TYPE"
	// CodeNoEligibleConstructor indicates no usable constructor was found.
	CodeNoEligibleConstructor Code = "NO_ELIGIBLE_CONSTRUCTOR"
)

// Descriptor construction codes
const (
	// CodeInvalidConstructor indicates a constructor function with an unusable signature.
	CodeInvalidConstructor Code = "INVALID_CONSTRUCTOR"
	// CodeTypeRedefined indicates a type was described a second time with different metadata.
	CodeTypeRedefined Code = "TYPE_REDEFINED"
)

// Container codes
const (
	// CodeDuplicateComponent indicates the type or name is already registered.
	CodeDuplicateComponent Code = "DUPLICATE_COMPONENT"
	// CodeUnknownComponent indicates no registration matches the requested type or name.
	CodeUnknownComponent Code = "UNKNOWN_COMPONENT"
	// CodeUnresolvableDependency indicates a constructor parameter could not be satisfied.
	CodeUnresolvableDependency Code = "UNRESOLVABLE_DEPENDENCY"
	// CodeCircularDependency indicates the build walked into a dependency cycle.
	CodeCircularDependency Code = "CIRCULAR_DEPENDENCY"
	// CodeConstructorFailed indicates a constructor ran and returned an error.
	CodeConstructorFailed Code = "CONSTRUCTOR_FAILED"
	// CodeInitializerFailed indicates a post-construction initializer returned an error.
	CodeInitializerFailed Code = "INITIALIZER_FAILED"
	// CodeExtensionFailed indicates a container extension failed during bootstrap.
	CodeExtensionFailed Code = "EXTENSION_FAILED"
	// CodeAlreadyResolved indicates a mutation arrived after the instance was built.
	CodeAlreadyResolved Code = "ALREADY_RESOLVED"
	// CodeContainerClosed indicates the container was closed before the call.
	CodeContainerClosed Code = "CONTAINER_CLOSED"
)

var eligibilityCodes = map[Code]bool{
	CodeInvalidDescriptor:     true,
	CodeInnerType:             true,
	CodeAbstractType:          true,
	CodeExtensionType:         true,
	CodeVetoedType:            true,
	CodeNoEligibleConstructor: true,
}

// IsEligibilityCode returns true if the code names a managed-type
// eligibility rule violation rather than a runtime container failure.
func IsEligibilityCode(code Code) bool {
	return eligibilityCodes[code]
}
