// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package modules

import (
	"sync"
)

// Registry event names emitted when the set of callable modules changes.
const (
	// EventRegister fires after a module is added to the registry.
	EventRegister = "register"

	// EventUnregister fires after a module is removed from the registry.
	EventUnregister = "unregister"
)

// EventCallback receives the module ID of a register/unregister event.
type EventCallback func(moduleID string)

// Registry is the module catalog consumed by the MCP bridge.
//
// Note: On has no corresponding removal; subscribers that need to go quiet
// must gate their own callbacks (see server.RegistryListener).
type Registry interface {
	// GetDefinition returns the full descriptor for a module, or nil when
	// the module is not (or no longer) registered.
	GetDefinition(moduleID string) *Descriptor

	// ListIDs returns the IDs of all registered modules.
	ListIDs() []string

	// On subscribes a callback to a registry event.
	On(event string, cb EventCallback)
}

// InMemoryRegistry is a minimal thread-safe Registry implementation used by
// the local module host and by tests.
type InMemoryRegistry struct {
	mu        sync.RWMutex
	modules   map[string]*Descriptor
	callbacks map[string][]EventCallback
}

// NewInMemoryRegistry creates an empty registry.
func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{
		modules:   make(map[string]*Descriptor),
		callbacks: make(map[string][]EventCallback),
	}
}

// Register adds or replaces a module descriptor and fires EventRegister.
func (r *InMemoryRegistry) Register(d *Descriptor) {
	r.mu.Lock()
	r.modules[d.ID] = d
	cbs := append([]EventCallback(nil), r.callbacks[EventRegister]...)
	r.mu.Unlock()

	for _, cb := range cbs {
		cb(d.ID)
	}
}

// Unregister removes a module and fires EventUnregister. Removing an unknown
// module is a no-op and fires no event.
func (r *InMemoryRegistry) Unregister(moduleID string) {
	r.mu.Lock()
	_, existed := r.modules[moduleID]
	delete(r.modules, moduleID)
	cbs := append([]EventCallback(nil), r.callbacks[EventUnregister]...)
	r.mu.Unlock()

	if !existed {
		return
	}
	for _, cb := range cbs {
		cb(moduleID)
	}
}

// GetDefinition returns the descriptor for a module, or nil if absent.
func (r *InMemoryRegistry) GetDefinition(moduleID string) *Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.modules[moduleID]
}

// ListIDs returns the IDs of all registered modules.
func (r *InMemoryRegistry) ListIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.modules))
	for id := range r.modules {
		ids = append(ids, id)
	}
	return ids
}

// On subscribes a callback to a registry event.
func (r *InMemoryRegistry) On(event string, cb EventCallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[event] = append(r.callbacks[event], cb)
}
