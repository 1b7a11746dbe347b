package errors

import (
	"fmt"
	"strings"
)

// DefinitionError is the unified error type for component definition and
// resolution failures.
type DefinitionError struct {
	// Code is a machine-readable error code.
	Code Code `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *DefinitionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *DefinitionError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *DefinitionError) WithCause(cause error) *DefinitionError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *DefinitionError) WithDetails(details map[string]any) *DefinitionError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *DefinitionError) WithDetail(key string, value any) *DefinitionError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new DefinitionError with the given code and message.
func New(code Code, message string) *DefinitionError {
	return &DefinitionError{Code: code, Message: message}
}

// --- Eligibility Rule Constructors ---

// InvalidDescriptor creates a DefinitionError for a nil or unusable type descriptor.
func InvalidDescriptor(reason string) *DefinitionError {
	return &DefinitionError{
		Code: CodeInvalidDescriptor, Message: fmt.Sprintf("invalid type descriptor: %s", reason),
	}
}

// InnerType creates a DefinitionError for a type that is not top-level.
func InnerType(typeName string) *DefinitionError {
	return &DefinitionError{
		Code: CodeInnerType, Message: fmt.Sprintf("type %s must not be an inner type", typeName),
		Details: map[string]any{"type": typeName},
	}
}

// AbstractType creates a DefinitionError for an abstract type that is not a decorator.
func AbstractType(typeName string) *DefinitionError {
	return &DefinitionError{
		Code: CodeAbstractType, Message: fmt.Sprintf("type %s must be a concrete type", typeName),
		Details: map[string]any{"type": typeName},
	}
}

// ExtensionType creates a DefinitionError for a type implementing the extension capability.
func ExtensionType(typeName string) *DefinitionError {
	return &DefinitionError{
		Code: CodeExtensionType, Message: fmt.Sprintf("type %s must not implement the extension capability", typeName),
		Details: map[string]any{"type": typeName},
	}
}

// VetoedType creates a DefinitionError for a vetoed type. Via reports what
// carried the veto marker: "type" or "package".
func VetoedType(typeName, via string) *DefinitionError {
	return &DefinitionError{
		Code: CodeVetoedType, Message: fmt.Sprintf("type %s must not be vetoed, directly or via its package", typeName),
		Details: map[string]any{"type": typeName, "vetoed_via": via},
	}
}

// NoEligibleConstructor creates a DefinitionError for a type without a usable constructor.
func NoEligibleConstructor(typeName string) *DefinitionError {
	return &DefinitionError{
		Code:    CodeNoEligibleConstructor,
		Message: fmt.Sprintf("type %s declares no zero-parameter constructor and no constructor carrying the inject marker", typeName),
		Details: map[string]any{"type": typeName},
	}
}

// --- Descriptor Construction Constructors ---

// InvalidConstructor creates a DefinitionError for a constructor with an unusable signature.
func InvalidConstructor(typeName, reason string) *DefinitionError {
	return &DefinitionError{
		Code: CodeInvalidConstructor, Message: fmt.Sprintf("invalid constructor for type %s: %s", typeName, reason),
		Details: map[string]any{"type": typeName},
	}
}

// TypeRedefined creates a DefinitionError for a type described twice with different metadata.
func TypeRedefined(typeName string) *DefinitionError {
	return &DefinitionError{
		Code: CodeTypeRedefined, Message: fmt.Sprintf("type %s is already described; redefining its metadata is not allowed", typeName),
		Details: map[string]any{"type": typeName},
	}
}

// --- Container Constructors ---

// DuplicateComponent creates a DefinitionError for a type or name registered twice.
func DuplicateComponent(what string) *DefinitionError {
	return &DefinitionError{
		Code: CodeDuplicateComponent, Message: fmt.Sprintf("component %s is already registered", what),
		Details: map[string]any{"component": what},
	}
}

// UnknownComponent creates a DefinitionError for a resolve of an unregistered component.
func UnknownComponent(what string) *DefinitionError {
	return &DefinitionError{
		Code: CodeUnknownComponent, Message: fmt.Sprintf("no component registered for %s", what),
		Details: map[string]any{"component": what},
	}
}

// UnresolvableDependency creates a DefinitionError for a constructor parameter
// that could not be satisfied while building owner.
func UnresolvableDependency(owner, param, reason string) *DefinitionError {
	return &DefinitionError{
		Code:    CodeUnresolvableDependency,
		Message: fmt.Sprintf("cannot satisfy dependency %s of %s: %s", param, owner, reason),
		Details: map[string]any{"component": owner, "dependency": param},
	}
}

// CircularDependency creates a DefinitionError carrying the dependency cycle path.
func CircularDependency(path []string) *DefinitionError {
	return &DefinitionError{
		Code: CodeCircularDependency, Message: fmt.Sprintf("circular dependency: %s", strings.Join(path, " -> ")),
		Details: map[string]any{"path": path},
	}
}

// ConstructorFailed creates a DefinitionError for a constructor that returned an error.
func ConstructorFailed(typeName string, cause error) *DefinitionError {
	return &DefinitionError{
		Code: CodeConstructorFailed, Message: fmt.Sprintf("constructor for %s failed", typeName),
		Details: map[string]any{"type": typeName}, Cause: cause,
	}
}

// InitializerFailed creates a DefinitionError for an initializer hook that returned an error.
func InitializerFailed(typeName string, cause error) *DefinitionError {
	return &DefinitionError{
		Code: CodeInitializerFailed, Message: fmt.Sprintf("initializer for %s failed", typeName),
		Details: map[string]any{"type": typeName}, Cause: cause,
	}
}

// ExtensionFailed creates a DefinitionError for a container extension that failed during bootstrap.
func ExtensionFailed(name string, cause error) *DefinitionError {
	return &DefinitionError{
		Code: CodeExtensionFailed, Message: fmt.Sprintf("container extension %s failed", name),
		Details: map[string]any{"extension": name}, Cause: cause,
	}
}

// AlreadyResolved creates a DefinitionError for a mutation after the instance was built.
func AlreadyResolved(what string) *DefinitionError {
	return &DefinitionError{
		Code: CodeAlreadyResolved, Message: fmt.Sprintf("component %s is already resolved; late changes are not applied", what),
		Details: map[string]any{"component": what},
	}
}

// ContainerClosed creates a DefinitionError for an operation on a closed container.
func ContainerClosed() *DefinitionError {
	return &DefinitionError{
		Code: CodeContainerClosed, Message: "container is closed",
	}
}
