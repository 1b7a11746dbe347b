package container

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/beankit/beankit/bean"
	"github.com/beankit/beankit/errors"
	"github.com/beankit/beankit/logger"
	"github.com/beankit/beankit/meta"
	"github.com/beankit/beankit/observability"
)

// Container registers managed components, validates their eligibility and
// builds them on demand with constructor injection. All methods are safe for
// concurrent use.
type Container struct {
	id        string
	name      string
	baseCtx   context.Context
	log       *logger.Logger
	index     *meta.Index
	resolver  *bean.Resolver
	validator *bean.Validator
	metrics   *observability.ContainerMetrics
	tracer    trace.Tracer

	mu        sync.RWMutex
	defs      map[reflect.Type]*Definition
	byName    map[string]*Definition
	order     []*Definition
	extenders map[reflect.Type][]DecorateFunc
	closed    bool
}

type containerOptions struct {
	name       string
	baseCtx    context.Context
	log        *logger.Logger
	index      *meta.Index
	metrics    *observability.ContainerMetrics
	tracer     trace.Tracer
	extensions []Extension
}

// Option configures a container during New.
type Option func(*containerOptions)

// WithName sets the container name used in logs and introspection output.
func WithName(name string) Option {
	return func(o *containerOptions) {
		o.name = name
	}
}

// WithContext sets the base context passed to constructors and initializers.
func WithContext(ctx context.Context) Option {
	return func(o *containerOptions) {
		o.baseCtx = ctx
	}
}

// WithLogger sets the logger. Defaults to the global logger scoped to the
// "container" component.
func WithLogger(l *logger.Logger) Option {
	return func(o *containerOptions) {
		o.log = l
	}
}

// WithIndex supplies a pre-built type index, typically one shared between
// containers or created with extra options. The index should carry the
// Extension capability, see ExtensionInterface.
func WithIndex(ix *meta.Index) Option {
	return func(o *containerOptions) {
		o.index = ix
	}
}

// WithMetrics enables container metrics.
func WithMetrics(m *observability.ContainerMetrics) Option {
	return func(o *containerOptions) {
		o.metrics = m
	}
}

// WithTracer enables a span per top-level resolve.
func WithTracer(t trace.Tracer) Option {
	return func(o *containerOptions) {
		o.tracer = t
	}
}

// WithExtensions installs extensions. They run in order during New, after
// all other options are applied.
func WithExtensions(exts ...Extension) Option {
	return func(o *containerOptions) {
		o.extensions = append(o.extensions, exts...)
	}
}

// New creates a container and runs the configured extensions.
func New(opts ...Option) (*Container, error) {
	o := containerOptions{
		name:    "container",
		baseCtx: context.Background(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Container{
		id:        uuid.NewString(),
		name:      o.name,
		baseCtx:   o.baseCtx,
		log:       o.log,
		index:     o.index,
		metrics:   o.metrics,
		tracer:    o.tracer,
		defs:      make(map[reflect.Type]*Definition),
		byName:    make(map[string]*Definition),
		extenders: make(map[reflect.Type][]DecorateFunc),
	}
	if c.log == nil {
		c.log = logger.WithComponent("container")
	}
	c.log = c.log.WithFields(logger.Fields("container_id", c.id, "container", c.name))
	if c.index == nil {
		c.index = meta.NewIndex(meta.WithCapability(extensionInterface))
	}
	c.resolver = bean.NewResolver()
	c.validator = bean.NewValidator(c.resolver)

	for _, ext := range o.extensions {
		if ext == nil {
			continue
		}
		if err := ext.Extend(c); err != nil {
			return nil, errors.ExtensionFailed(extensionName(ext), err)
		}
	}
	c.log.Debug("container ready", logger.Fields("extensions", len(o.extensions)))
	return c, nil
}

// ID returns the container's unique id.
func (c *Container) ID() string { return c.id }

// Name returns the container name.
func (c *Container) Name() string { return c.name }

// Index returns the container's type index, for marking packages or
// pre-describing types.
func (c *Container) Index() *meta.Index { return c.index }

// Register offers a prototype as a managed component. The prototype can be
// a value, a pointer or a reflect.Type; pointers are unwrapped so &T{} and
// T{} register the same component. The type is described, checked against
// the eligibility rules and, when eligible, stored with its resolved
// constructor. Eager components are built before Register returns.
func (c *Container) Register(prototype any, opts ...RegisterOption) error {
	var reg registration
	for _, opt := range opts {
		opt(&reg)
	}

	rt, err := prototypeType(prototype)
	if err != nil {
		return err
	}
	if err := c.precheck(rt, reg.name); err != nil {
		return err
	}

	var metaOpts []meta.Option
	if len(reg.markers) > 0 {
		metaOpts = append(metaOpts, meta.WithMarkers(reg.markers...))
	}
	if len(reg.ctors) > 0 {
		metaOpts = append(metaOpts, meta.WithConstructors(reg.ctors...))
	}
	desc, err := c.index.Describe(rt, metaOpts...)
	if err != nil {
		c.observeRegistration("error", errors.CodeOf(err))
		return err
	}

	if err := c.validator.ValidateManagedType(desc); err != nil {
		c.log.Warn("component rejected", logger.Fields(
			"type", desc.Name(),
			"rule", string(errors.CodeOf(err)),
		))
		c.observeRegistration("rejected", errors.CodeOf(err))
		return err
	}
	resolved, err := c.resolver.ResolveConstructor(desc)
	if err != nil {
		c.observeRegistration("rejected", errors.CodeOf(err))
		return err
	}
	ctor, ok := resolved.(*meta.Constructor)
	if !ok {
		return errors.InvalidConstructor(desc.Name(), "unsupported constructor descriptor")
	}

	name := reg.name
	if name == "" {
		name = desc.Name()
	}
	def := &Definition{
		desc:     desc,
		ctor:     ctor,
		name:     name,
		lifetime: reg.lifetime,
		produces: ctor.ResultType(),
	}

	if reg.lifetime == Eager {
		if _, err := c.build(def, nil); err != nil {
			c.observeRegistration("error", errors.CodeOf(err))
			return err
		}
	}

	if err := c.store(rt, def); err != nil {
		c.discard(def)
		return err
	}

	c.log.Debug("component registered", logger.Fields(
		"component", def.name,
		"type", desc.Name(),
		"lifetime", def.lifetime.String(),
		"constructor", ctor.String(),
	))
	c.observeRegistration("registered", "")
	return nil
}

// RegisterInstance stores an already constructed value as a singleton
// component. The instance bypasses eligibility validation and constructor
// resolution, and Close never closes it; whoever built it owns it.
func (c *Container) RegisterInstance(instance any, opts ...RegisterOption) error {
	if instance == nil {
		return errors.InvalidDescriptor("nil instance")
	}
	var reg registration
	for _, opt := range opts {
		opt(&reg)
	}

	it := reflect.TypeOf(instance)
	rt := meta.Normalize(it)
	if err := c.precheck(rt, reg.name); err != nil {
		return err
	}
	desc, err := c.index.Describe(rt)
	if err != nil {
		return err
	}

	name := reg.name
	if name == "" {
		name = desc.Name()
	}
	def := &Definition{
		desc:     desc,
		name:     name,
		lifetime: Singleton,
		produces: it,
		external: true,
		instance: instance,
	}
	def.built.Store(true)

	if err := c.store(rt, def); err != nil {
		return err
	}
	if c.metrics != nil {
		c.metrics.AddInstances(c.baseCtx, 1)
	}
	c.log.Debug("instance registered", logger.Fields(
		"component", def.name,
		"type", desc.Name(),
	))
	c.observeRegistration("registered", "")
	return nil
}

// precheck rejects registrations that are doomed before the type is
// described, so Describe does not intern types for duplicates.
func (c *Container) precheck(rt reflect.Type, name string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.ContainerClosed()
	}
	if existing, ok := c.defs[rt]; ok {
		return errors.DuplicateComponent(existing.name)
	}
	if name != "" {
		if _, ok := c.byName[name]; ok {
			return errors.DuplicateComponent(name)
		}
	}
	return nil
}

// store commits a definition, re-checking the duplicate guards under the
// write lock.
func (c *Container) store(rt reflect.Type, def *Definition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.ContainerClosed()
	}
	if existing, ok := c.defs[rt]; ok {
		return errors.DuplicateComponent(existing.name)
	}
	if _, ok := c.byName[def.name]; ok {
		return errors.DuplicateComponent(def.name)
	}
	c.defs[rt] = def
	c.byName[def.name] = def
	c.order = append(c.order, def)
	return nil
}

// discard closes an instance that was eagerly built but lost the store
// race.
func (c *Container) discard(def *Definition) {
	if !def.built.Load() {
		return
	}
	if closer, ok := def.instance.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			c.log.Warn("discarded instance close failed", logger.Fields(
				"component", def.name,
				"error", err.Error(),
			))
		}
	}
}

// Decorate appends a decorator for the component of the target type.
// Decorators run in registration order when the component is built, singleton
// decorators once and transient decorators on every build. Decorating a
// singleton that is already built fails with CodeAlreadyResolved.
func (c *Container) Decorate(target any, decorate DecorateFunc) error {
	if decorate == nil {
		return errors.InvalidDescriptor("nil decorator")
	}
	rt, err := prototypeType(target)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.ContainerClosed()
	}
	if def, ok := c.defs[rt]; ok && def.lifetime != Transient && def.built.Load() {
		return errors.AlreadyResolved(def.name)
	}
	c.extenders[rt] = append(c.extenders[rt], decorate)
	return nil
}

// Definitions returns a snapshot of all registered components in
// registration order.
func (c *Container) Definitions() []DefinitionInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	infos := make([]DefinitionInfo, 0, len(c.order))
	for _, def := range c.order {
		info := DefinitionInfo{
			Name:     def.name,
			Type:     def.desc.Name(),
			Lifetime: def.lifetime.String(),
			Built:    def.built.Load(),
		}
		if ms := def.desc.Markers(); ms.Len() > 0 {
			info.Markers = ms.String()
		}
		if def.external {
			info.Constructor = "(external instance)"
		} else {
			info.Constructor = def.ctor.String()
		}
		infos = append(infos, info)
	}
	return infos
}

// BuiltInstances returns the built singleton instances keyed by component
// name. Transient components are never tracked.
func (c *Container) BuiltInstances() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any)
	for _, def := range c.order {
		if def.lifetime != Transient && def.built.Load() {
			out[def.name] = def.instance
		}
	}
	return out
}

// CacheStats reports the constructor resolution cache counters.
func (c *Container) CacheStats() bean.CacheStats {
	return c.resolver.Stats()
}

// Close marks the container closed and closes built singletons implementing
// io.Closer in reverse registration order. Externally registered instances
// are skipped. Close errors are joined and returned after every component
// has been visited.
func (c *Container) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.ContainerClosed()
	}
	c.closed = true
	order := make([]*Definition, len(c.order))
	copy(order, c.order)
	c.mu.Unlock()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		def := order[i]
		if def.external || !def.built.Load() {
			continue
		}
		def.mu.Lock()
		closer, ok := def.instance.(io.Closer)
		def.mu.Unlock()
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", def.name, err))
			c.log.Error("component close failed", logger.Fields(
				"component", def.name,
				"error", err.Error(),
			))
		}
	}
	c.log.Info("container closed", logger.Fields("components", len(order)))
	return stderrors.Join(errs...)
}

// prototypeType extracts the component type from a registration prototype.
func prototypeType(prototype any) (reflect.Type, error) {
	switch p := prototype.(type) {
	case nil:
		return nil, errors.InvalidDescriptor("nil prototype")
	case reflect.Type:
		if p == nil {
			return nil, errors.InvalidDescriptor("nil reflect.Type")
		}
		return meta.Normalize(p), nil
	default:
		return meta.Normalize(reflect.TypeOf(prototype)), nil
	}
}

func (c *Container) observeRegistration(outcome string, rule errors.Code) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordRegistration(c.baseCtx, outcome, string(rule))
}
