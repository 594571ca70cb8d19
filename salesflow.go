// Package salesflow provides a high-level façade over the conversation
// orchestration engine that drives automated sales dialogues. Most
// applications interact with this package by:
//  1. Creating a Salesflow via New() (optionally overriding the in-memory
//     defaults with a model, a durable store, tools and a logger)
//  2. Seeding conversations with ProcessNewLead or answering inbound
//     messages with ProcessMessage / ProcessMessageStream
//  3. Reading aggregate performance via Metrics()
//
// The façade delegates orchestration to engine.Engine while keeping setup
// ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a real model provider, a
// durable store and a structured logger.
package salesflow

import (
	"context"
	"time"

	"github.com/thependalorian/salesflow/core"
	"github.com/thependalorian/salesflow/engine"
	"github.com/thependalorian/salesflow/logging"
	"github.com/thependalorian/salesflow/memory"
	"github.com/thependalorian/salesflow/model"
	"github.com/thependalorian/salesflow/monitor"
	"github.com/thependalorian/salesflow/tool"
)

// Options configures the Salesflow instance.
type Options struct {
	// Model drives classification and response generation. Nil runs every
	// turn on the stage fallback sentences.
	Model model.Model

	// Store is the durable memory backend (defaults to in-memory).
	Store memory.Store

	// Tools are the capabilities available to the tools stage.
	Tools []tool.Tool

	// Authorizer gates tool requests. Nil allows everything.
	Authorizer tool.Authorizer

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger

	// CallTimeout bounds each model call.
	CallTimeout time.Duration
}

// Salesflow is the high-level façade aggregating the underlying engine.
type Salesflow struct {
	engine *engine.Engine
}

// New creates a Salesflow instance with optional overrides. Any unset
// service is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) (*Salesflow, error) {
	opts := Options{
		Store:  memory.NewInMemoryStore(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	registry := tool.NewRegistry()
	for _, t := range opts.Tools {
		if err := registry.Register(t); err != nil {
			return nil, err
		}
	}

	eng, err := engine.New(func(o *engine.Options) {
		o.Model = opts.Model
		o.Store = opts.Store
		o.Tools = registry
		o.Authorizer = opts.Authorizer
		o.Logger = opts.Logger
		if opts.CallTimeout > 0 {
			o.CallTimeout = opts.CallTimeout
		}
	})
	if err != nil {
		return nil, err
	}
	return &Salesflow{engine: eng}, nil
}

// ProcessNewLead seeds a conversation for the lead and runs one full turn.
func (s *Salesflow) ProcessNewLead(ctx context.Context, lead core.Lead) *core.TurnResult {
	return s.engine.ProcessNewLead(ctx, lead)
}

// ProcessMessage answers one inbound customer message. onPartial, when
// non-nil, receives intermediate assistant messages before the final result.
func (s *Salesflow) ProcessMessage(ctx context.Context, conversationID, text string, onPartial func(string)) *core.TurnResult {
	return s.engine.ProcessMessage(ctx, conversationID, text, onPartial)
}

// ProcessMessageStream answers one inbound message with channel delivery:
// partial events in order, then exactly one final event.
func (s *Salesflow) ProcessMessageStream(ctx context.Context, conversationID, text string) <-chan core.StreamEvent {
	return s.engine.ProcessMessageStream(ctx, conversationID, text)
}

// Monitor returns the engine's performance monitor, for wiring exporters.
func (s *Salesflow) Monitor() *monitor.Monitor {
	return s.engine.Monitor()
}

// Metrics returns a snapshot of the engine's performance monitor.
func (s *Salesflow) Metrics() monitor.Metrics {
	return s.engine.Monitor().Snapshot()
}

// CacheStats returns the memory cache hit/miss counters.
func (s *Salesflow) CacheStats() memory.Stats {
	return s.engine.CacheStats()
}
