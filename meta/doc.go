// Package meta provides the reflection-backed implementation of the bean
// descriptor interfaces. An Index turns Go types into interned TypeDescriptor
// values, carries package-level markers, and knows which interface counts as
// the container-extension capability.
//
//	ix := meta.NewIndex()
//	desc, err := ix.DescribeOf(&UserService{},
//	    meta.WithConstructors(meta.Ctor(NewUserService, marker.Inject)))
//
// Descriptors are interned per reflect.Type: describing the same type twice
// returns the same value, which is what lets the bean resolver cache key on
// descriptor identity.
package meta
