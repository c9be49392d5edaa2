package contact

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry keeps one Form per visitor id.
type Registry struct {
	newForm func() *Form

	mu    sync.Mutex
	forms map[string]*Form
}

// NewRegistry creates a registry that builds forms with newForm.
func NewRegistry(newForm func() *Form) *Registry {
	return &Registry{
		newForm: newForm,
		forms:   make(map[string]*Form),
	}
}

// Acquire returns the form for id, creating it when missing. Ids that are not
// UUIDs are replaced; the returned id is the one to remember.
func (r *Registry) Acquire(id string) (*Form, string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.forms[id]; ok {
		return f, id
	}
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	f := r.newForm()
	r.forms[id] = f
	return f, id
}

// Lookup returns the form for id without creating one.
func (r *Registry) Lookup(id string) (*Form, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.forms[id]
	return f, ok
}

// Len returns the number of live forms.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.forms)
}

// Sweep closes and drops forms untouched since cutoff. Forms with a submission
// in flight are kept.
func (r *Registry) Sweep(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, f := range r.forms {
		if f.idleSince(cutoff) {
			f.Close()
			delete(r.forms, id)
			n++
		}
	}
	return n
}

// Run sweeps forms idle longer than maxIdle every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Sweep(now.Add(-maxIdle))
		}
	}
}

// Close closes every form.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, f := range r.forms {
		f.Close()
		delete(r.forms, id)
	}
}
