package model

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/thependalorian/salesflow/core"
)

// Request captures the normalized completion input produced by the classifier
// and stage handlers.
type Request struct {
	Instructions string         `json:"instructions"` // Leading system instruction
	Messages     []core.Message `json:"messages"`     // Ordered conversation history
	Stream       bool           `json:"stream,omitempty"`
}

// Response is a (partial or final) chunk emitted by a model.
type Response struct {
	Partial      bool   `json:"partial"`
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason,omitempty"` // "stop", "length", etc.
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface required to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// Collect drains a Generate channel pair and returns the final assistant
// text. Partial chunks are concatenated only when no final chunk arrives;
// providers that emit a final non-partial response win. An error on the error
// channel aborts collection.
func Collect(ctx context.Context, respCh <-chan Response, errCh <-chan error) (string, error) {
	var partial strings.Builder
	var final string
	var haveFinal bool
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case err, ok := <-errCh:
			if ok && err != nil {
				return "", err
			}
			errCh = nil
		case resp, ok := <-respCh:
			if !ok {
				// A terminal error may still sit buffered when the response
				// channel closes first.
				if errCh != nil {
					select {
					case err, ok := <-errCh:
						if ok && err != nil {
							return "", err
						}
					default:
					}
				}
				if haveFinal {
					return final, nil
				}
				return partial.String(), nil
			}
			if resp.Partial {
				partial.WriteString(resp.Text)
				continue
			}
			final = resp.Text
			haveFinal = true
		}
	}
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Responses are keyed by the text of the last message; RespondFunc, when set,
// takes precedence and sees the full request. Call counting makes capability
// usage verifiable from tests.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	respond   func(Request) string
	calls     int
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input text.
func (m *MockModel) AddResponse(input, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[input] = response
}

// SetRespondFunc installs a request-aware responder. Useful when classifier
// and handler calls must be answered differently for the same message text.
func (m *MockModel) SetRespondFunc(fn func(Request) string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.respond = fn
}

// Calls returns the number of Generate invocations observed.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Generate implements Model; emits optional streaming rune chunks then the
// final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.calls++
	respond := m.respond
	var full string
	if respond != nil {
		full = respond(req)
	} else {
		var inputText string
		if len(req.Messages) > 0 {
			inputText = req.Messages[len(req.Messages)-1].Text
		}
		full = m.responses[inputText]
		if full == "" {
			full = fmt.Sprintf("Mock response to: %s", inputText)
		}
	}
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)
		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Partial: true, Text: string(r)}:
				}
			}
		}
		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- Response{Text: full, FinishReason: "stop"}:
		}
	}()
	return respCh, errCh
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
