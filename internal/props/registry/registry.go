package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Registry maintains all registered property descriptors in
// registration order and derives the category/subcategory ordering used
// by persistence and rendering.
type Registry struct {
	mu         sync.RWMutex
	props      []*Descriptor
	byKey      map[string]*Descriptor
	categories []string
	subs       map[string][]string
	validate   *validator.Validate
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byKey:    make(map[string]*Descriptor),
		subs:     make(map[string][]string),
		validate: validator.New(),
	}
}

// Register validates the descriptor, fills unset optional fields with
// their kind defaults, and appends it to the ordered property list.
// A duplicate key is rejected with ErrDuplicateKey. The returned
// pointer is the registry's own copy, usable for fluent follow-up.
func (r *Registry) Register(desc Descriptor) (*Descriptor, error) {
	if err := r.validate.Struct(&desc); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return nil, &ValidationError{Key: desc.Key, Field: fe.Field(), Message: "required"}
		}
		return nil, err
	}
	if err := desc.check(); err != nil {
		return nil, err
	}
	if err := desc.normalize(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byKey[desc.Key]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, desc.Key)
	}

	d := &desc
	r.props = append(r.props, d)
	r.byKey[d.Key] = d

	if _, seen := r.subs[d.Category]; !seen {
		r.categories = append(r.categories, d.Category)
		r.subs[d.Category] = nil
	}
	if d.Subcategory != "" && !contains(r.subs[d.Category], d.Subcategory) {
		r.subs[d.Category] = append(r.subs[d.Category], d.Subcategory)
	}

	return d, nil
}

// MustRegister registers a descriptor and panics on error. Useful for
// registering built-in properties at startup.
func (r *Registry) MustRegister(desc Descriptor) *Descriptor {
	d, err := r.Register(desc)
	if err != nil {
		panic(err)
	}
	return d
}

// Get returns the descriptor for a key, or nil when not registered.
func (r *Registry) Get(key string) *Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byKey[key]
}

// Has reports whether a key is registered.
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byKey[key]
	return ok
}

// Len returns the number of registered properties.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.props)
}

// All returns every descriptor in registration order.
func (r *Registry) All() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, len(r.props))
	copy(out, r.props)
	return out
}

// Categories returns category names in first-registration order.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.categories))
	copy(out, r.categories)
	return out
}

// Subcategories returns a category's subcategory names in first-seen
// order. Ungrouped properties are not represented here.
func (r *Registry) Subcategories(category string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	subs := r.subs[category]
	out := make([]string, len(subs))
	copy(out, subs)
	return out
}

// ByCategory returns the category's descriptors in registration order.
func (r *Registry) ByCategory(category string) []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Descriptor
	for _, d := range r.props {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

// SetHidden flips the one mutable descriptor field. Returns
// ErrNotFound for unknown keys.
func (r *Registry) SetHidden(key string, hidden bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byKey[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	d.Hidden = hidden
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
