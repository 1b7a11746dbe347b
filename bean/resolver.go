package bean

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/beankit/beankit/errors"
	"github.com/beankit/beankit/marker"
)

// Resolver selects the constructor a container must use to build a component
// and memoizes the decision per descriptor. Each Resolver owns its cache;
// independent resolvers never share state.
type Resolver struct {
	mu      sync.Mutex
	entries map[TypeDescriptor]*resolution
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// resolution is a cache entry. The once gate guarantees the enumeration and
// scan run exactly once no matter how many goroutines race on the same
// descriptor.
type resolution struct {
	once sync.Once
	ctor ConstructorDescriptor
	err  *errors.DefinitionError
}

// NewResolver creates a Resolver with an empty cache.
func NewResolver() *Resolver {
	return &Resolver{entries: make(map[TypeDescriptor]*resolution)}
}

// CacheStats is a snapshot of resolver cache activity.
type CacheStats struct {
	// Entries is the number of descriptors currently cached.
	Entries int `json:"entries"`
	// Hits counts calls answered from the cache.
	Hits uint64 `json:"hits"`
	// Misses counts calls that had to run the constructor scan.
	Misses uint64 `json:"misses"`
}

// ResolveConstructor returns the constructor to use for the given type.
//
// On a cache miss it enumerates the declared constructors once, sorts them by
// parameter count descending (stable, so first-declared wins among ties) and
// picks the first that either has zero parameters or carries the inject
// marker. Successful picks are cached forever; failures are shared by callers
// racing on the same descriptor but evicted afterwards, so a later call
// retries.
func (r *Resolver) ResolveConstructor(t TypeDescriptor) (ConstructorDescriptor, error) {
	if t == nil {
		return nil, errors.InvalidDescriptor("nil descriptor")
	}

	r.mu.Lock()
	entry, ok := r.entries[t]
	if !ok {
		entry = &resolution{}
		r.entries[t] = entry
	}
	r.mu.Unlock()

	if ok {
		r.hits.Add(1)
	} else {
		r.misses.Add(1)
	}

	entry.once.Do(func() {
		entry.ctor, entry.err = selectConstructor(t)
	})

	if entry.err != nil {
		// Failures are not memoized. Drop the entry so the next call
		// re-enumerates, but only if it is still ours.
		r.mu.Lock()
		if r.entries[t] == entry {
			delete(r.entries, t)
		}
		r.mu.Unlock()
		return nil, entry.err
	}
	return entry.ctor, nil
}

// Stats returns a snapshot of the cache counters.
func (r *Resolver) Stats() CacheStats {
	r.mu.Lock()
	entries := len(r.entries)
	r.mu.Unlock()
	return CacheStats{
		Entries: entries,
		Hits:    r.hits.Load(),
		Misses:  r.misses.Load(),
	}
}

// selectConstructor runs the scan: sort descending by parameter count on a
// copy of the declared slice, then take the first eligible constructor.
func selectConstructor(t TypeDescriptor) (ConstructorDescriptor, *errors.DefinitionError) {
	declared := t.Constructors()
	sorted := make([]ConstructorDescriptor, len(declared))
	copy(sorted, declared)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ParamCount() > sorted[j].ParamCount()
	})

	for _, ctor := range sorted {
		if ctor.ParamCount() == 0 || ctor.Markers().Has(marker.Inject) {
			return ctor, nil
		}
	}
	return nil, errors.NoEligibleConstructor(t.Name())
}
