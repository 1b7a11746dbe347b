package meta

import (
	"fmt"
	"reflect"

	"github.com/beankit/beankit/errors"
	"github.com/beankit/beankit/marker"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Constructor describes one way to build a component: a constructor function
// plus its markers. It implements bean.ConstructorDescriptor and carries the
// call machinery the container uses.
type Constructor struct {
	fn      reflect.Value
	markers marker.Set
	// newType is set for synthetic zero-value constructors; Call then builds
	// a pointer to a fresh zero value instead of invoking fn.
	newType reflect.Type
}

// Ctor wraps a constructor function and its markers. The function signature
// is validated when the owning type is described: it must be a non-variadic
// func returning (T) or (T, error) with T assignable to the component type.
func Ctor(fn any, ms ...marker.Marker) *Constructor {
	return &Constructor{fn: reflect.ValueOf(fn), markers: marker.NewSet(ms...)}
}

// syntheticConstructor builds the implicit zero-parameter constructor a
// struct type gets when it declares none: the equivalent of a default
// constructor producing *T.
func syntheticConstructor(t reflect.Type) *Constructor {
	return &Constructor{newType: t}
}

// ParamCount returns the number of declared parameters.
func (c *Constructor) ParamCount() int {
	if c.newType != nil || !c.fn.IsValid() {
		return 0
	}
	return c.fn.Type().NumIn()
}

// Markers returns the markers attached to the constructor.
func (c *Constructor) Markers() marker.Set { return c.markers }

// String returns a diagnostic rendering of the constructor signature.
func (c *Constructor) String() string {
	if c.newType != nil {
		return fmt.Sprintf("func() *%s", c.newType)
	}
	if !c.fn.IsValid() {
		return "invalid constructor"
	}
	return c.fn.Type().String()
}

// ParamTypes returns the parameter types in order. Synthetic constructors
// have none.
func (c *Constructor) ParamTypes() []reflect.Type {
	if c.newType != nil || !c.fn.IsValid() {
		return nil
	}
	ft := c.fn.Type()
	params := make([]reflect.Type, ft.NumIn())
	for i := range params {
		params[i] = ft.In(i)
	}
	return params
}

// ResultType returns the type the constructor produces. Synthetic
// constructors produce a pointer to their struct type.
func (c *Constructor) ResultType() reflect.Type {
	if c.newType != nil {
		return reflect.PointerTo(c.newType)
	}
	if !c.fn.IsValid() {
		return nil
	}
	return c.fn.Type().Out(0)
}

// Call invokes the constructor with the given arguments and unpacks the
// (T) or (T, error) results.
func (c *Constructor) Call(args []reflect.Value) (any, error) {
	if c.newType != nil {
		return reflect.New(c.newType).Interface(), nil
	}

	results := c.fn.Call(args)
	switch len(results) {
	case 1:
		return results[0].Interface(), nil
	case 2:
		instance := results[0].Interface()
		if err := results[1].Interface(); err != nil {
			return nil, err.(error)
		}
		return instance, nil
	default:
		return nil, fmt.Errorf("constructor must return either (instance) or (instance, error)")
	}
}

// validateConstructor checks a declared constructor against the component
// type it is supposed to build.
func validateConstructor(typeName string, rtype reflect.Type, c *Constructor) *errors.DefinitionError {
	if c == nil {
		return errors.InvalidConstructor(typeName, "nil constructor")
	}
	if c.newType != nil {
		return nil
	}
	if !c.fn.IsValid() || c.fn.Kind() != reflect.Func {
		return errors.InvalidConstructor(typeName, "constructor must be a function")
	}

	ft := c.fn.Type()
	if ft.IsVariadic() {
		return errors.InvalidConstructor(typeName, "variadic constructors are not supported")
	}

	switch ft.NumOut() {
	case 1:
	case 2:
		if ft.Out(1) != errorType {
			return errors.InvalidConstructor(typeName, "second result must be error")
		}
	default:
		return errors.InvalidConstructor(typeName, "constructor must return (T) or (T, error)")
	}

	out := ft.Out(0)
	if !assignableToComponent(out, rtype) {
		return errors.InvalidConstructor(typeName,
			fmt.Sprintf("result %s is not assignable to %s", out, rtype))
	}
	return nil
}

// assignableToComponent reports whether a constructor result can stand in
// for the component type: the type itself, a pointer to it, or for interface
// components any implementation.
func assignableToComponent(result, component reflect.Type) bool {
	if result.AssignableTo(component) {
		return true
	}
	if component.Kind() != reflect.Interface && result.AssignableTo(reflect.PointerTo(component)) {
		return true
	}
	return false
}
