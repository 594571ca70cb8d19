// Package testutil provides shared stubs for exercising the engine's
// failure modes: stores that fail on demand and models that only ever time
// out or error.
package testutil

import (
	"context"
	"sync"

	"github.com/thependalorian/salesflow/memory"
	"github.com/thependalorian/salesflow/model"
)

// PutCall records one write observed by a FlakyStore.
type PutCall struct {
	Namespace string
	Key       string
}

// FlakyStore wraps a Store and fails the first FailPuts writes, recording
// every attempt. Reads delegate untouched.
type FlakyStore struct {
	mu       sync.Mutex
	inner    memory.Store
	failPuts int
	putErr   error
	puts     []PutCall
}

// NewFlakyStore wraps inner; the first failPuts writes return putErr.
func NewFlakyStore(inner memory.Store, failPuts int, putErr error) *FlakyStore {
	return &FlakyStore{inner: inner, failPuts: failPuts, putErr: putErr}
}

// Get implements memory.Store.
func (s *FlakyStore) Get(ctx context.Context, namespace, key string) (*memory.Record, error) {
	return s.inner.Get(ctx, namespace, key)
}

// Put implements memory.Store.
func (s *FlakyStore) Put(ctx context.Context, namespace, key string, value map[string]any) error {
	s.mu.Lock()
	s.puts = append(s.puts, PutCall{Namespace: namespace, Key: key})
	fail := s.failPuts > 0
	if fail {
		s.failPuts--
	}
	s.mu.Unlock()

	if fail {
		return s.putErr
	}
	return s.inner.Put(ctx, namespace, key, value)
}

// Search implements memory.Store.
func (s *FlakyStore) Search(ctx context.Context, namespace, query string) ([]memory.Record, error) {
	return s.inner.Search(ctx, namespace, query)
}

// Puts returns the writes observed so far, failed attempts included.
func (s *FlakyStore) Puts() []PutCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PutCall, len(s.puts))
	copy(out, s.puts)
	return out
}

var _ memory.Store = (*FlakyStore)(nil)

// ErrModel is a model whose every Generate call fails with the configured
// error.
type ErrModel struct {
	Err error

	mu    sync.Mutex
	calls int
}

// Generate implements model.Model.
func (m *ErrModel) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	respCh := make(chan model.Response)
	errCh := make(chan error, 1)
	errCh <- m.Err
	close(respCh)
	close(errCh)
	return respCh, errCh
}

// Info implements model.Model.
func (m *ErrModel) Info() model.Info {
	return model.Info{Name: "err", Provider: "mock"}
}

// Calls returns the number of Generate invocations observed.
func (m *ErrModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var _ model.Model = (*ErrModel)(nil)
