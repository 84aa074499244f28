package lingo

import (
	"context"
	"sync"
)

// defaultVolatileMax bounds the in-process result cache.
const defaultVolatileMax = 2500

// flight is one shared in-progress translation. All concurrent requesters
// for the same key wait on done and observe the same state.
type flight struct {
	done  chan struct{}
	state State
}

// stateCache is the volatile result cache plus the in-flight registry.
//
// Resolved terminal states are kept in insertion order and evicted
// oldest-inserted-first once the bound is exceeded. In-flight entries
// guarantee at most one running producer per key; they are removed when
// the producer completes, success or failure.
type stateCache struct {
	mu      sync.Mutex
	max     int
	states  map[string]State
	order   []string
	flights map[string]*flight
}

func newStateCache(max int) *stateCache {
	if max <= 0 {
		max = defaultVolatileMax
	}
	return &stateCache{
		max:     max,
		states:  make(map[string]State),
		flights: make(map[string]*flight),
	}
}

// get returns the cached state for key, if any.
func (c *stateCache) get(key string) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.states[key]
	return st, ok
}

// put stores a terminal state and enforces the size bound. Overwriting an
// existing key keeps its original insertion position.
func (c *stateCache) put(key string, st State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.putLocked(key, st)
}

func (c *stateCache) putLocked(key string, st State) {
	if _, exists := c.states[key]; !exists {
		c.order = append(c.order, key)
	}
	c.states[key] = st
	for len(c.order) > c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.states, oldest)
	}
}

// request returns the cached state for key, joins an existing in-flight
// producer, or registers a new one. The producer runs exactly once per
// key; its terminal result is cached and handed to every waiter. A caller
// whose context ends while waiting abandons its subscription without
// cancelling the shared flight, which still completes and populates the
// cache for everyone else.
func (c *stateCache) request(ctx context.Context, key string, produce func() State) (State, error) {
	c.mu.Lock()
	if st, ok := c.states[key]; ok {
		c.mu.Unlock()
		return st, nil
	}
	if f, ok := c.flights[key]; ok {
		c.mu.Unlock()
		return c.wait(ctx, f)
	}

	f := &flight{done: make(chan struct{})}
	c.flights[key] = f
	c.mu.Unlock()

	go func() {
		st := produce()
		if !st.Terminal() {
			// A producer must never leave a key pending.
			st = Errored("translation aborted")
		}
		c.mu.Lock()
		delete(c.flights, key)
		c.putLocked(key, st)
		c.mu.Unlock()
		f.state = st
		close(f.done)
	}()

	return c.wait(ctx, f)
}

func (c *stateCache) wait(ctx context.Context, f *flight) (State, error) {
	select {
	case <-f.done:
		return f.state, nil
	case <-ctx.Done():
		return State{Kind: StatePending}, ctx.Err()
	}
}

// len reports the number of cached terminal states.
func (c *stateCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.states)
}

// inFlight reports the number of registered in-flight producers.
func (c *stateCache) inFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.flights)
}

// clear drops all cached terminal states. In-flight producers are left to
// complete; their results will land in the now-empty cache.
func (c *stateCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states = make(map[string]State)
	c.order = nil
}
