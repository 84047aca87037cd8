package deploy

import (
	"sync"

	"github.com/edvin/modelhost/internal/model"
)

// Registry is the single source of truth for deployment records. One mutex
// guards the whole map; it is held only for in-memory mutation, never across
// blocking I/O (signals, HTTP probes, socket binds). Construct one per
// controller; there is deliberately no package-level instance.
type Registry struct {
	mu      sync.Mutex
	records map[string]*model.Deployment
}

func NewRegistry() *Registry {
	return &Registry{records: make(map[string]*model.Deployment)}
}

// Insert registers a record, overwriting any record with the same id.
func (r *Registry) Insert(d model.Deployment) {
	c := d.Clone()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[d.ID] = &c
}

// Get returns a copy of the record, if present.
func (r *Registry) Get(id string) (model.Deployment, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.records[id]
	if !ok {
		return model.Deployment{}, false
	}
	return d.Clone(), true
}

// List returns copies of all records.
func (r *Registry) List() []model.Deployment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Deployment, 0, len(r.records))
	for _, d := range r.records {
		out = append(out, d.Clone())
	}
	return out
}

// Update applies fn to the record under the lock and reports whether the id
// was present. A missing id is a no-op, not an error: the background health
// monitor may outlive a deleted deployment and its late writes must land
// nowhere. fn must not block.
func (r *Registry) Update(id string, fn func(*model.Deployment)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.records[id]
	if !ok {
		return false
	}
	fn(d)
	return true
}

// Remove deletes the record and returns a copy of it.
func (r *Registry) Remove(id string) (model.Deployment, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.records[id]
	if !ok {
		return model.Deployment{}, false
	}
	delete(r.records, id)
	return d.Clone(), true
}

// Len returns the number of registered records.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Ports returns the ports held by records whose process may still bind them.
// Used to keep the allocator from handing the same port to two live
// deployments before the first process has bound it.
func (r *Registry) Ports() map[int]struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	ports := make(map[int]struct{}, len(r.records))
	for _, d := range r.records {
		switch d.Status {
		case model.StatusStarting, model.StatusRunning, model.StatusStopping:
			ports[d.Port] = struct{}{}
		}
	}
	return ports
}
