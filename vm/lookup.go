package vm

// cacheKey identifies a dispatch cache entry: the receiver's class
// and the selector.
type cacheKey struct {
	class    *Class
	selector uint32
}

// DispatchCache memoizes vtable chain walks. A nil method is cached
// too: repeated sends of a missing selector skip the walk and go
// straight to doesNotUnderstand:. Installing a method resets the
// cache, so stale misses never shadow later definitions.
type DispatchCache struct {
	entries map[cacheKey]Method
	hits    uint64
	misses  uint64
}

// NewDispatchCache creates an empty cache.
func NewDispatchCache() *DispatchCache {
	return &DispatchCache{entries: make(map[cacheKey]Method)}
}

// Lookup resolves selector on class, consulting the cache first.
// found reports whether the entry existed; the method may still be
// nil when the chain has no definition.
func (c *DispatchCache) Lookup(class *Class, selector uint32) (Method, bool) {
	key := cacheKey{class, selector}
	if m, ok := c.entries[key]; ok {
		c.hits++
		return m, true
	}
	c.misses++
	m := class.VTable.Lookup(selector)
	c.entries[key] = m
	return m, m != nil
}

// Stats returns hit and miss counts.
func (c *DispatchCache) Stats() (hits, misses uint64) {
	return c.hits, c.misses
}

// Reset drops all entries and counters.
func (c *DispatchCache) Reset() {
	c.entries = make(map[cacheKey]Method)
	c.hits = 0
	c.misses = 0
}

// lookupMethod resolves selector starting at class, through the
// dispatch cache.
func (vm *VM) lookupMethod(class *Class, selector uint32) Method {
	m, _ := vm.cache.Lookup(class, selector)
	return m
}
