package container

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/beankit/beankit/errors"
	"github.com/beankit/beankit/logger"
	"github.com/beankit/beankit/meta"
	"github.com/beankit/beankit/observability"
)

// DecorateFunc wraps or replaces a freshly constructed instance. The
// returned value must remain assignable to the dependency types the
// component satisfies.
type DecorateFunc func(instance any) any

var (
	contextType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	containerType = reflect.TypeOf((*Container)(nil))
)

// ResolveType returns the component for the requested type, building it and
// its dependencies first when needed. The type may be the registered
// component type, a pointer to it, or an interface a single registered
// component satisfies.
func (c *Container) ResolveType(t reflect.Type) (any, error) {
	start := time.Now()
	instance, err := c.resolveDef(func() (*Definition, error) {
		return c.findByType(t)
	})
	c.observeResolution(err, time.Since(start))
	return instance, err
}

// ResolveNamed returns the component registered under the given name.
func (c *Container) ResolveNamed(name string) (any, error) {
	start := time.Now()
	instance, err := c.resolveDef(func() (*Definition, error) {
		return c.findByName(name)
	})
	c.observeResolution(err, time.Since(start))
	return instance, err
}

func (c *Container) resolveDef(find func() (*Definition, error)) (any, error) {
	def, err := find()
	if err != nil {
		return nil, err
	}
	if c.tracer == nil {
		return c.build(def, nil)
	}
	_, span := c.tracer.Start(c.baseCtx, observability.SpanResolve, trace.WithAttributes(
		attribute.String(observability.AttrComponent, def.name),
		attribute.String(observability.AttrLifetime, def.lifetime.String()),
	))
	defer span.End()
	instance, err := c.build(def, nil)
	if err != nil {
		span.RecordError(err)
	}
	return instance, err
}

// findByType locates the definition for a requested type. An exact hit on
// the registered component type wins; otherwise every definition whose
// constructed value is assignable to t is considered, which is how interface
// lookups resolve. More than one assignable definition is an error, named
// resolution disambiguates those.
func (c *Container) findByType(t reflect.Type) (*Definition, error) {
	if t == nil {
		return nil, errors.InvalidDescriptor("nil type")
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, errors.ContainerClosed()
	}
	if def, ok := c.defs[meta.Normalize(t)]; ok {
		return def, nil
	}
	var matches []*Definition
	for _, def := range c.order {
		if def.provides(t) {
			matches = append(matches, def)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, errors.UnknownComponent(t.String())
	default:
		names := make([]string, len(matches))
		for i, def := range matches {
			names[i] = def.name
		}
		return nil, errors.New(errors.CodeUnresolvableDependency,
			fmt.Sprintf("%d components can provide %s", len(matches), t)).
			WithDetail("candidates", names)
	}
}

func (c *Container) findByName(name string) (*Definition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, errors.ContainerClosed()
	}
	def, ok := c.byName[name]
	if !ok {
		return nil, errors.UnknownComponent(name)
	}
	return def, nil
}

// build returns the component instance for def, constructing it when the
// lifetime requires. The stack carries the names of components currently
// under construction in this resolve call and trips the cycle detector.
func (c *Container) build(def *Definition, stack []string) (any, error) {
	for _, frame := range stack {
		if frame == def.name {
			return nil, errors.CircularDependency(append(stack, def.name))
		}
	}
	stack = append(stack, def.name)

	if def.lifetime == Transient {
		return c.construct(def, stack)
	}

	def.mu.Lock()
	defer def.mu.Unlock()
	if def.built.Load() {
		return def.instance, nil
	}
	instance, err := c.construct(def, stack)
	if err != nil {
		return nil, err
	}
	def.instance = instance
	def.built.Store(true)
	if c.metrics != nil {
		c.metrics.AddInstances(c.baseCtx, 1)
	}
	c.log.Debug("component built", logger.Fields(
		"component", def.name,
		"lifetime", def.lifetime.String(),
	))
	return instance, nil
}

// construct invokes the component's constructor with injected arguments,
// then applies decorators and runs the Initialize hook.
func (c *Container) construct(def *Definition, stack []string) (any, error) {
	if def.external {
		return def.instance, nil
	}

	params := def.ctor.ParamTypes()
	args := make([]reflect.Value, len(params))
	for i, param := range params {
		value, err := c.resolveParam(def, param, stack)
		if err != nil {
			return nil, err
		}
		args[i] = value
	}

	instance, err := def.ctor.Call(args)
	if err != nil {
		return nil, errors.ConstructorFailed(def.desc.Name(), err)
	}
	instance = c.applyExtenders(def, instance)
	if init, ok := instance.(Initializer); ok {
		if err := init.Initialize(c.baseCtx); err != nil {
			return nil, errors.InitializerFailed(def.desc.Name(), err)
		}
	}
	return instance, nil
}

// resolveParam produces the argument for a single constructor parameter.
// context.Context receives the container's base context and *Container the
// container itself; everything else is resolved as a dependency.
func (c *Container) resolveParam(owner *Definition, param reflect.Type, stack []string) (reflect.Value, error) {
	switch param {
	case contextType:
		return reflect.ValueOf(c.baseCtx), nil
	case containerType:
		return reflect.ValueOf(c), nil
	}

	dep, err := c.findByType(param)
	if err != nil {
		if errors.HasCode(err, errors.CodeUnknownComponent) {
			return reflect.Value{}, errors.UnresolvableDependency(
				owner.name, param.String(), "no registered component provides it").WithCause(err)
		}
		return reflect.Value{}, err
	}
	instance, err := c.build(dep, stack)
	if err != nil {
		return reflect.Value{}, err
	}
	value := reflect.ValueOf(instance)
	if !value.IsValid() || !value.Type().AssignableTo(param) {
		return reflect.Value{}, errors.UnresolvableDependency(
			owner.name, param.String(),
			fmt.Sprintf("component %s produced an incompatible %T", dep.name, instance))
	}
	return value, nil
}

func (c *Container) applyExtenders(def *Definition, instance any) any {
	c.mu.RLock()
	extenders := c.extenders[def.desc.Reflect()]
	c.mu.RUnlock()
	for _, extend := range extenders {
		instance = extend(instance)
	}
	return instance
}

func (c *Container) observeResolution(err error, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.metrics.RecordResolution(c.baseCtx, outcome, elapsed)
}

// Resolve returns the component assignable to T, building it when needed.
func Resolve[T any](c *Container) (T, error) {
	var zero T
	instance, err := c.ResolveType(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, errors.UnresolvableDependency(
			"resolve", reflect.TypeOf((*T)(nil)).Elem().String(),
			fmt.Sprintf("component produced an incompatible %T", instance))
	}
	return typed, nil
}

// MustResolve is Resolve, panicking on error. Intended for wiring at
// startup where a missing component is a programming error.
func MustResolve[T any](c *Container) T {
	instance, err := Resolve[T](c)
	if err != nil {
		panic(fmt.Sprintf("container: resolve %s: %v",
			reflect.TypeOf((*T)(nil)).Elem(), err))
	}
	return instance
}

// TryResolve is Resolve with an ok flag instead of an error.
func TryResolve[T any](c *Container) (T, bool) {
	instance, err := Resolve[T](c)
	return instance, err == nil
}

// ResolveByName returns the component registered under name, asserted to T.
func ResolveByName[T any](c *Container, name string) (T, error) {
	var zero T
	instance, err := c.ResolveNamed(name)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, errors.UnresolvableDependency(
			name, reflect.TypeOf((*T)(nil)).Elem().String(),
			fmt.Sprintf("component produced an incompatible %T", instance))
	}
	return typed, nil
}
