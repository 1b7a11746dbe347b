package container

import (
	"context"
	"reflect"
)

// Extension hooks into the container during New, after options are applied
// and before New returns. Types implementing Extension are excluded from
// managed registration and must be installed through WithExtensions.
type Extension interface {
	// Extend configures the container. Returning an error aborts New.
	Extend(c *Container) error
}

// Initializer is invoked on a freshly constructed component after decorators
// run and before the instance is handed out or cached.
type Initializer interface {
	Initialize(ctx context.Context) error
}

// extensionInterface is the capability the type index uses to recognise
// extension types.
var extensionInterface = reflect.TypeOf((*Extension)(nil)).Elem()

// ExtensionInterface returns the reflect type of the Extension capability.
// Pass it to meta.WithCapability when building a custom index for a
// container.
func ExtensionInterface() reflect.Type {
	return extensionInterface
}

func extensionName(ext Extension) string {
	t := reflect.TypeOf(ext)
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
