package tcp

import (
	"log/slog"
	"sync"
	"time"
)

// Peer is the part of a connection the routing table and forwarder need.
// They never own it: the handler goroutine that accepted it does.
type Peer interface {
	ID() string
	RemoteAddr() string
	Send(data []byte) error
}

// WorkerBinding is the current holder of the active-worker slot
type WorkerBinding struct {
	Identity string // declared worker token, or the connection ID when none was given
	Peer     Peer
	Since    time.Time
}

// WorkerRegistry holds zero or one active worker. Set always overwrites: when
// two connections declare themselves workers concurrently, whichever Set
// completes last holds the slot, regardless of which message arrived first.
type WorkerRegistry struct {
	mu     sync.RWMutex
	active *WorkerBinding
	logger *slog.Logger
}

func NewWorkerRegistry() *WorkerRegistry {
	return &WorkerRegistry{logger: slog.Default()}
}

// Set binds peer as the active worker and returns the binding it replaced, if any.
// Re-declaring the same peer under the same identity keeps the original Since.
func (r *WorkerRegistry) Set(identity string, peer Peer) (previous *WorkerBinding) {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous = r.active
	if previous != nil && previous.Peer.ID() == peer.ID() && previous.Identity == identity {
		return previous
	}

	r.active = &WorkerBinding{Identity: identity, Peer: peer, Since: time.Now()}

	switch {
	case previous == nil:
		r.logger.Info("worker_registered",
			"identity", identity,
			"client_id", peer.ID(),
		)
	case previous.Peer.ID() != peer.ID():
		r.logger.Warn("worker_slot_taken_over",
			"identity", identity,
			"client_id", peer.ID(),
			"previous_identity", previous.Identity,
			"previous_client_id", previous.Peer.ID(),
		)
	default:
		r.logger.Info("worker_identity_changed",
			"identity", identity,
			"previous_identity", previous.Identity,
			"client_id", peer.ID(),
		)
	}
	return previous
}

// Get returns the active worker, or (nil, false) when the slot is empty
func (r *WorkerRegistry) Get() (Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.active == nil {
		return nil, false
	}
	return r.active.Peer, true
}

// Active returns a copy of the current binding
func (r *WorkerRegistry) Active() (WorkerBinding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.active == nil {
		return WorkerBinding{}, false
	}
	return *r.active, true
}

// Release empties the slot only if peer still holds it, so a stale handler
// cannot evict a worker that took over after it.
func (r *WorkerRegistry) Release(peer Peer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil || r.active.Peer.ID() != peer.ID() {
		return false
	}
	r.logger.Info("worker_released",
		"identity", r.active.Identity,
		"client_id", peer.ID(),
	)
	r.active = nil
	return true
}
