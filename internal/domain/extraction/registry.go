package extraction

import (
	"sort"
	"sync"
)

// Registry maps merchant identifiers to adapters. Adapters can only be
// added; an id is never re-bound once registered.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]*MerchantAdapter
}

// NewRegistry creates a registry pre-populated with adapters.
func NewRegistry(adapters ...*MerchantAdapter) (*Registry, error) {
	r := &Registry{adapters: make(map[string]*MerchantAdapter, len(adapters))}
	for _, a := range adapters {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds an adapter. Registering an id twice is an error.
func (r *Registry) Register(adapter *MerchantAdapter) error {
	if adapter == nil {
		return NewError(KindInvalidInput, "adapter is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[adapter.ID()]; exists {
		return NewError(KindInvalidInput, "merchant "+adapter.ID()+" is already registered")
	}
	r.adapters[adapter.ID()] = adapter
	return nil
}

// Resolve returns the adapter for merchantID or UnsupportedMerchant.
func (r *Registry) Resolve(merchantID string) (*MerchantAdapter, error) {
	id := NormalizeMerchantID(merchantID)
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[id]
	if !ok {
		return nil, NewError(KindUnsupportedMerchant, "merchant "+id+" is not supported")
	}
	return adapter, nil
}

// List returns all adapters ordered by id.
func (r *Registry) List() []*MerchantAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*MerchantAdapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Len returns the number of registered merchants.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.adapters)
}
