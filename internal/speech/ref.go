package speech

import "sync"

// Ref is a non-owning handle to a Coordinator. The clipboard watcher
// holds a Ref instead of the coordinator itself, so it can neither keep
// the coordinator alive past its owner nor touch it after shutdown: on
// each use the handle is upgraded, and once the owner has released it,
// Get reports gone.
type Ref struct {
	mu sync.RWMutex
	c  *Coordinator
}

// NewRef creates a handle for the given coordinator. The caller remains
// the owner and must call Release when it tears the coordinator down.
func NewRef(c *Coordinator) *Ref {
	return &Ref{c: c}
}

// Get upgrades the handle. The second return value is false once the
// owner has released the coordinator; treating that as a skipped event
// is normal, not an error.
func (r *Ref) Get() (*Coordinator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.c, r.c != nil
}

// Release invalidates the handle. Called by the owner, never by the
// holder.
func (r *Ref) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.c = nil
}
