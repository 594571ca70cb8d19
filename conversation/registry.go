// Package conversation provides the process-local registry of live
// conversations. Conversations are created on first contact and never
// deleted; durable retention is the memory layer's concern.
package conversation

import (
	"sort"
	"sync"

	"github.com/thependalorian/salesflow/core"
)

// Registry is a thread-safe map of conversation ID to conversation. The
// registry hands out the live pointer; per-turn serialization happens above
// it in the engine.
type Registry struct {
	mu            sync.RWMutex
	conversations map[string]*core.Conversation
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{conversations: make(map[string]*core.Conversation)}
}

// GetOrCreate returns the conversation for id, creating it on first contact.
// The boolean reports whether the conversation already existed.
func (r *Registry) GetOrCreate(id, customerID, channel string) (*core.Conversation, bool) {
	r.mu.RLock()
	conv, ok := r.conversations[id]
	r.mu.RUnlock()
	if ok {
		return conv, true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if conv, ok := r.conversations[id]; ok {
		return conv, true
	}
	conv = core.NewConversation(id, customerID, channel)
	r.conversations[id] = conv
	return conv, false
}

// Get returns the conversation for id, if present.
func (r *Registry) Get(id string) (*core.Conversation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conv, ok := r.conversations[id]
	return conv, ok
}

// Len returns the number of live conversations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conversations)
}

// IDs returns the live conversation IDs in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.conversations))
	for id := range r.conversations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
