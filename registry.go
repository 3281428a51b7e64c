package modelc

import (
	"fmt"
	"slices"
	"sync"
)

// Registry holds the compiled models and the relationship graph of a process.
// Entries are append-only; Freeze makes the registry read-only.
type Registry struct {
	mu            sync.RWMutex
	frozen        bool
	models        map[string]*ModelMetadata
	fingerprints  map[string]string
	order         []string
	relationships []RelationshipMetadata
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		models:       make(map[string]*ModelMetadata),
		fingerprints: make(map[string]string),
	}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// Register adds a model and its relationship entries. Registering a model
// identical to one already present is a no-op and reports false; registering
// a different model under the same qualified name fails.
func (r *Registry) Register(m *ModelMetadata) (bool, error) {
	fp, err := Fingerprint(m)
	if err != nil {
		return false, err
	}
	name := m.QualifiedName()
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.fingerprints[name]; ok {
		if prev == fp {
			return false, nil
		}
		return false, NewDeclarationError(m.Name, "", "", fmt.Sprintf("model %s is already registered with a different declaration", name))
	}
	if r.frozen {
		return false, fmt.Errorf("register %s: %w", name, ErrRegistryFrozen)
	}
	r.models[name] = m
	r.fingerprints[name] = fp
	r.order = append(r.order, name)
	r.relationships = append(r.relationships, m.Relationships...)
	return true, nil
}

// MustRegister registers models in the process-wide registry. It panics on
// conflicting declarations and is meant for init functions.
func MustRegister(models ...*ModelMetadata) {
	for _, m := range models {
		if _, err := defaultRegistry.Register(m); err != nil {
			panic(err)
		}
	}
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports if the registry is read-only.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Model returns the model registered under a qualified name ("app.Model"). A
// bare model name matches when exactly one app declares it.
func (r *Registry) Model(name string) (*ModelMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.models[name]; ok {
		return m, nil
	}
	var found *ModelMetadata
	for _, q := range r.order {
		if m := r.models[q]; m.Name == name {
			if found != nil {
				return nil, fmt.Errorf("modelc: model name %q is ambiguous, qualify it with an app label", name)
			}
			found = m
		}
	}
	if found == nil {
		return nil, NewNotFoundError("model", name)
	}
	return found, nil
}

// Lookup returns the model with the given key.
func (r *Registry) Lookup(key ModelKey) (*ModelMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[key.String()]
	return m, ok
}

// Fingerprint returns the fingerprint recorded for a qualified model name.
func (r *Registry) Fingerprint(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fp, ok := r.fingerprints[name]
	return fp, ok
}

// Models returns all models in registration order.
func (r *Registry) Models() []*ModelMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	models := make([]*ModelMetadata, len(r.order))
	for i, q := range r.order {
		models[i] = r.models[q]
	}
	return models
}

// ModelsForApp returns the models of an app in registration order.
func (r *Registry) ModelsForApp(label string) []*ModelMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var models []*ModelMetadata
	for _, q := range r.order {
		if m := r.models[q]; m.AppLabel == label {
			models = append(models, m)
		}
	}
	return models
}

// Relationships returns every relationship entry in insertion order.
func (r *Registry) Relationships() []RelationshipMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.relationships)
}

// RelationshipsFrom returns the entries whose source is the given qualified model.
func (r *Registry) RelationshipsFrom(model string) []RelationshipMetadata {
	return r.filter(func(rel RelationshipMetadata) bool { return rel.FromModel == model })
}

// RelationshipsTo returns the entries whose target is the given qualified model.
func (r *Registry) RelationshipsTo(model string) []RelationshipMetadata {
	return r.filter(func(rel RelationshipMetadata) bool { return rel.ToModel == model })
}

func (r *Registry) filter(fn func(RelationshipMetadata) bool) []RelationshipMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var rels []RelationshipMetadata
	for _, rel := range r.relationships {
		if fn(rel) {
			rels = append(rels, rel)
		}
	}
	return rels
}

// Snapshot returns a copy of the registry contents.
func (r *Registry) Snapshot() *Snapshot {
	return &Snapshot{
		Version:       SnapshotVersion,
		Models:        r.Models(),
		Relationships: r.Relationships(),
	}
}

// LoadSnapshot registers every model of a snapshot. Relationship entries come
// from the models themselves.
func (r *Registry) LoadSnapshot(s *Snapshot) error {
	var errs []error
	for _, m := range s.Models {
		if _, err := r.Register(m); err != nil {
			errs = append(errs, err)
		}
	}
	return NewAggregateError(errs...)
}

// Reset drops every entry and unfreezes the registry.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = false
	r.models = make(map[string]*ModelMetadata)
	r.fingerprints = make(map[string]string)
	r.order = nil
	r.relationships = nil
}
