package memory

import (
	"context"
	"strings"
	"sync"
	"time"
)

// InMemoryStore is a process-local Store. Records live in a
// namespace -> key -> record map protected by an RWMutex. Search performs a
// linear scan with substring matching over keys and string values; suitable
// for tests and single-node deployments, swap for memory/bolt when records
// must survive a restart.
type InMemoryStore struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]Record
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{namespaces: make(map[string]map[string]Record)}
}

// Get returns the record for (namespace, key) or (nil, nil) on a miss.
func (s *InMemoryStore) Get(_ context.Context, namespace, key string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ns, ok := s.namespaces[namespace]
	if !ok {
		return nil, nil
	}
	rec, ok := ns[key]
	if !ok {
		return nil, nil
	}
	out := rec.clone()
	return &out, nil
}

// Put stores a record, replacing any prior value for the key.
func (s *InMemoryStore) Put(_ context.Context, namespace, key string, value map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.namespaces[namespace]
	if !ok {
		ns = make(map[string]Record)
		s.namespaces[namespace] = ns
	}
	ns[key] = Record{
		Namespace: namespace,
		Key:       key,
		Value:     copyValue(value),
		Timestamp: time.Now().UTC(),
	}
	return nil
}

// Search performs a simple substring match over keys and string values of a
// namespace. Results are returned in unspecified order.
func (s *InMemoryStore) Search(_ context.Context, namespace, query string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ns, ok := s.namespaces[namespace]
	if !ok {
		return []Record{}, nil
	}
	results := make([]Record, 0, len(ns))
	for key, rec := range ns {
		if query == "" || strings.Contains(key, query) || valueMatches(rec.Value, query) {
			results = append(results, rec.clone())
		}
	}
	return results, nil
}

func valueMatches(value map[string]any, query string) bool {
	for _, v := range value {
		if s, ok := v.(string); ok && strings.Contains(s, query) {
			return true
		}
	}
	return false
}

func copyValue(value map[string]any) map[string]any {
	out := make(map[string]any, len(value))
	for k, v := range value {
		out[k] = v
	}
	return out
}

func (r Record) clone() Record {
	r.Value = copyValue(r.Value)
	return r
}
