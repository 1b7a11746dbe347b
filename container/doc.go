// Package container provides the managed-component container built on top of
// the bean registration core. Components are offered as prototypes, validated
// against the eligibility rules, and instantiated through their resolved
// constructors with dependencies injected by type.
//
// # Registration
//
//	c, _ := container.New(container.WithName("app"))
//	err := c.Register(&UserService{},
//	    container.WithConstructors(meta.Ctor(NewUserService, marker.Inject)))
//
// # Resolution
//
//	svc, err := container.Resolve[*UserService](c)
//
// Lifetimes are singleton by default; Eager builds at registration and
// Transient builds on every resolve. Close tears built singletons down in
// reverse registration order.
package container
