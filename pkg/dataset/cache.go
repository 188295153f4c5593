package dataset

import "sync"

// distanceCache memoizes one_to_one distances keyed by an unordered pair
// of indices, guarded by a sync.RWMutex. Lookups share the read lock;
// after a miss the caller computes the distance and put takes the write
// lock to store it. The lock does not prefer readers: a waiting writer
// blocks new readers until it has stored its entry.
type distanceCache[U any] struct {
	lock sync.RWMutex
	vals map[[2]int]U
}

func newDistanceCache[U any]() *distanceCache[U] {
	return &distanceCache[U]{vals: make(map[[2]int]U)}
}

func cacheKey(i, j int) [2]int {
	if i <= j {
		return [2]int{i, j}
	}
	return [2]int{j, i}
}

func (c *distanceCache[U]) get(i, j int) (U, bool) {
	c.lock.RLock()
	v, ok := c.vals[cacheKey(i, j)]
	c.lock.RUnlock()
	return v, ok
}

func (c *distanceCache[U]) put(i, j int, v U) {
	c.lock.Lock()
	c.vals[cacheKey(i, j)] = v
	c.lock.Unlock()
}

// invalidate drops all cached entries. Called after a permutation since
// cached entries are keyed by index, not instance identity.
func (c *distanceCache[U]) invalidate() {
	c.lock.Lock()
	c.vals = make(map[[2]int]U)
	c.lock.Unlock()
}
