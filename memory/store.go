package memory

import (
	"context"
	"time"
)

// NamespaceConversationMemories is the namespace the engine persists
// interaction records under, keyed by customer id.
const NamespaceConversationMemories = "conversation_memories"

// Record is a versioned fact remembered about a customer. Within a namespace
// the key is unique; a write replaces the prior value for that key.
type Record struct {
	Namespace string         `json:"namespace"`
	Key       string         `json:"key"`
	Value     map[string]any `json:"value"`
	Timestamp time.Time      `json:"timestamp"`
}

// Store defines durable persistence + retrieval for memory records.
// Implementations must provide last-write-wins semantics per (namespace, key)
// and be safe for concurrent use.
//
// Get returns (nil, nil) on a clean miss; errors are reserved for backend
// failures. Search matching is implementation-defined (substring/keyword).
type Store interface {
	Get(ctx context.Context, namespace, key string) (*Record, error)
	Put(ctx context.Context, namespace, key string, value map[string]any) error
	Search(ctx context.Context, namespace, query string) ([]Record, error)
}
