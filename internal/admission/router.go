package admission

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Sh00ty/websocket-infra/pkg/healthprobe"
)

type Backend struct {
	ID    string
	Addr  healthprobe.BackendAddr
	State *BackendState

	drainDeadline time.Time
}

func (b *Backend) draining(now time.Time) bool {
	return !b.drainDeadline.IsZero() && now.Before(b.drainDeadline)
}

func (b *Backend) removed(now time.Time) bool {
	return !b.drainDeadline.IsZero() && !now.Before(b.drainDeadline)
}

// Router is the admission decision point: it picks a healthy backend
// for each client, honoring a valid affinity token over everything
// except health. New connections never land on a draining backend;
// pinned ones may, until the drain grace runs out.
type Router struct {
	guard      sync.RWMutex
	backends   map[string]*Backend
	signer     *AffinitySigner
	drainGrace time.Duration
	now        func() time.Time
}

func NewRouter(signer *AffinitySigner, drainGrace time.Duration) *Router {
	return &Router{
		backends:   make(map[string]*Backend),
		signer:     signer,
		drainGrace: drainGrace,
		now:        time.Now,
	}
}

func (r *Router) Register(id string, addr healthprobe.BackendAddr, state *BackendState) {
	r.guard.Lock()
	defer r.guard.Unlock()
	r.backends[id] = &Backend{
		ID:    id,
		Addr:  addr,
		State: state,
	}
}

// Deregister starts the drain grace period for a backend; after it
// elapses the backend is gone for pinned clients too.
func (r *Router) Deregister(id string) {
	r.guard.Lock()
	defer r.guard.Unlock()
	backend, ok := r.backends[id]
	if !ok {
		return
	}
	backend.drainDeadline = r.now().Add(r.drainGrace)
	log.Info().Msgf("backend %s deregistered, draining for %s", id, r.drainGrace)
}

// Backends returns the registered backends in stable id order.
func (r *Router) Backends() []*Backend {
	r.guard.RLock()
	defer r.guard.RUnlock()
	ids := make([]string, 0, len(r.backends))
	for id := range r.backends {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	result := make([]*Backend, 0, len(ids))
	for _, id := range ids {
		result = append(result, r.backends[id])
	}
	return result
}

// Pick selects the backend for one incoming connection and returns the
// affinity token the client must carry on its next connection.
func (r *Router) Pick(clientID, token string) (*Backend, string, error) {
	now := r.now()

	r.guard.Lock()
	for id, backend := range r.backends {
		if backend.removed(now) {
			delete(r.backends, id)
		}
	}
	r.guard.Unlock()

	r.guard.RLock()
	defer r.guard.RUnlock()

	if token != "" {
		if pinnedID, ok := r.signer.Verify(token, clientID); ok {
			if backend, exists := r.backends[pinnedID]; exists {
				if admitted, _ := backend.State.Info(); admitted {
					return backend, token, nil
				}
			}
		}
	}

	ids := make([]string, 0, len(r.backends))
	for id := range r.backends {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		backend := r.backends[id]
		if backend.draining(now) {
			continue
		}
		admitted, _ := backend.State.Info()
		if !admitted {
			continue
		}
		return backend, r.signer.Mint(clientID, id), nil
	}
	return nil, "", fmt.Errorf("no healthy backend in rotation")
}
