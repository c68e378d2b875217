package reconcile

import (
	"sync"
)

// seenGuard is a process-local cache of gateway references already observed in
// a terminal state. It is strictly a fast-path hint: a hit lets Reconcile skip
// the verify round-trip, but the answer returned to the caller is always
// recomputed from the ledger, which is the single source of truth. Misses are
// meaningless across instances and restarts.
type seenGuard struct {
	mu      sync.Mutex
	refs    map[string]struct{}
	order   []string
	maxSize int
}

func newSeenGuard(maxSize int) *seenGuard {
	if maxSize <= 0 {
		maxSize = 4096
	}
	return &seenGuard{
		refs:    make(map[string]struct{}, maxSize),
		maxSize: maxSize,
	}
}

func (g *seenGuard) Seen(ref string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.refs[ref]
	return ok
}

func (g *seenGuard) Mark(ref string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.refs[ref]; ok {
		return
	}

	// FIFO eviction keeps the cache bounded; evicted refs simply fall back
	// to the full verify path.
	if len(g.order) >= g.maxSize {
		oldest := g.order[0]
		g.order = g.order[1:]
		delete(g.refs, oldest)
	}

	g.refs[ref] = struct{}{}
	g.order = append(g.order, ref)
}
