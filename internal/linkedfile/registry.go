package linkedfile

import "github.com/figpreorders/figorders/pkg/enums"

// Registry holds at most one handle per collection kind.
type Registry struct {
	handles map[enums.CollectionKind]Handle
}

func NewRegistry() *Registry {
	return &Registry{handles: make(map[enums.CollectionKind]Handle)}
}

// Set installs h, replacing any previous handle for its kind.
func (r *Registry) Set(h Handle) {
	r.handles[h.Kind] = h
}

func (r *Registry) Get(kind enums.CollectionKind) (Handle, bool) {
	h, ok := r.handles[kind]
	return h, ok
}

// Clear drops the handle for kind and reports whether one existed.
func (r *Registry) Clear(kind enums.CollectionKind) bool {
	_, ok := r.handles[kind]
	delete(r.handles, kind)
	return ok
}

// Snapshot lists the linked handles in collection kind order.
func (r *Registry) Snapshot() []Handle {
	out := []Handle{}
	for _, kind := range enums.CollectionKinds() {
		if h, ok := r.handles[kind]; ok {
			out = append(out, h)
		}
	}
	return out
}
