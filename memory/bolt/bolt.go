// Package bolt implements memory.Store on a local BoltDB file. Each
// namespace maps to one bucket; records are JSON-encoded. BoltDB's
// single-writer transactions give the last-write-wins semantics the Store
// contract requires without any extra coordination.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/thependalorian/salesflow/memory"
)

// Options configures the Bolt store.
type Options struct {
	// FileMode for the database file.
	FileMode os.FileMode
	// OpenTimeout bounds how long Open waits for the file lock.
	OpenTimeout time.Duration
}

// Store is a durable memory.Store backed by a single BoltDB file.
type Store struct {
	db *bbolt.DB
}

var _ memory.Store = (*Store)(nil)

// Open opens (creating if necessary) the database at path.
func Open(path string, optFns ...func(o *Options)) (*Store, error) {
	opts := Options{FileMode: 0o600, OpenTimeout: 2 * time.Second}
	for _, fn := range optFns {
		fn(&opts)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := bbolt.Open(path, opts.FileMode, &bbolt.Options{Timeout: opts.OpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Get returns the record for (namespace, key) or (nil, nil) on a miss.
func (s *Store) Get(ctx context.Context, namespace, key string) (*memory.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rec *memory.Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(namespace))
		if b == nil {
			return nil
		}
		v := b.Get([]byte(key))
		if len(v) == 0 {
			return nil
		}
		var decoded memory.Record
		if err := json.Unmarshal(v, &decoded); err != nil {
			return fmt.Errorf("decode record %s/%s: %w", namespace, key, err)
		}
		rec = &decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Put stores a record, replacing any prior value for the key.
func (s *Store) Put(ctx context.Context, namespace, key string, value map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec := memory.Record{
		Namespace: namespace,
		Key:       key,
		Value:     value,
		Timestamp: time.Now().UTC(),
	}
	enc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %s/%s: %w", namespace, key, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(namespace))
		if err != nil {
			return err
		}
		return b.Put([]byte(key), enc)
	})
}

// Search scans a namespace bucket matching the query as a substring of keys
// and string values. Malformed entries are skipped instead of failing the
// whole scan.
func (s *Store) Search(ctx context.Context, namespace, query string) ([]memory.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results := []memory.Record{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(namespace))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var rec memory.Record
			if json.Unmarshal(v, &rec) != nil {
				return nil
			}
			if query == "" || strings.Contains(string(k), query) || stringValueMatches(rec.Value, query) {
				results = append(results, rec)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func stringValueMatches(value map[string]any, query string) bool {
	for _, v := range value {
		if s, ok := v.(string); ok && strings.Contains(s, query) {
			return true
		}
	}
	return false
}
