package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/thependalorian/salesflow/classify"
	"github.com/thependalorian/salesflow/conversation"
	"github.com/thependalorian/salesflow/core"
	"github.com/thependalorian/salesflow/logging"
	"github.com/thependalorian/salesflow/memory"
	"github.com/thependalorian/salesflow/model"
	"github.com/thependalorian/salesflow/monitor"
	"github.com/thependalorian/salesflow/router"
	"github.com/thependalorian/salesflow/stage"
	"github.com/thependalorian/salesflow/tool"
)

// Apology is the fixed response of the failure boundary. Like the stage
// fallbacks it is contract, not placeholder.
const Apology = "I'm sorry, something went wrong on our end. Please try again in a moment."

// Options configures an Engine.
type Options struct {
	// Model drives classification and the model-backed stages. Nil runs the
	// engine in degraded mode on stage fallbacks.
	Model model.Model

	// Store is the durable memory backend. Defaults to an in-memory store;
	// it is always wrapped in the write-through cache.
	Store memory.Store

	// Namespace is where interaction records are persisted.
	Namespace string

	// Monitor receives turn samples. Defaults to a fresh monitor.
	Monitor *monitor.Monitor

	// Tools is the capability registry for the tools stage.
	Tools *tool.Registry

	// Authorizer gates pending tool requests. Nil allows everything.
	Authorizer tool.Authorizer

	// Logger receives structured engine logs. Defaults to no-op.
	Logger logging.Logger

	// CallTimeout bounds each model call inside the stage handlers.
	CallTimeout time.Duration

	// Continuation overrides the router's post-stage continuation policy.
	Continuation router.ContinuationStrategy
}

// Engine is the conversation orchestrator.
type Engine struct {
	cache         *memory.Cache
	monitor       *monitor.Monitor
	router        *router.Router
	conversations *conversation.Registry
	logger        logging.Logger
	namespace     string
	locks         *keyedMutex
}

// New creates an Engine. The only possible construction failure is a
// misconfigured routing table.
func New(optFns ...func(o *Options)) (*Engine, error) {
	opts := Options{
		Store:       memory.NewInMemoryStore(),
		Namespace:   memory.NamespaceConversationMemories,
		Logger:      logging.NoOpLogger{},
		CallTimeout: stage.DefaultCallTimeout,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Monitor == nil {
		opts.Monitor = monitor.New()
	}
	if opts.Tools == nil {
		opts.Tools = tool.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	cache := memory.NewCache(opts.Store, func(o *memory.CacheOptions) {
		o.Logger = opts.Logger
	})

	stageOpts := func(o *stage.Options) {
		o.Model = opts.Model
		o.Memory = cache
		o.Namespace = opts.Namespace
		o.CallTimeout = opts.CallTimeout
	}
	handlers := []stage.Handler{
		stage.NewQualifyHandler(stageOpts),
		stage.NewObjectionHandler(stageOpts),
		stage.NewNurtureHandler(stageOpts),
		stage.NewCloseHandler(stageOpts),
		stage.NewFollowUpHandler(stageOpts),
		stage.NewEscalateHandler(),
		stage.NewAuthorizeHandler(opts.Authorizer),
		stage.NewToolsHandler(opts.Tools),
	}

	routerOpts := func(o *router.Options) {
		if opts.Continuation != nil {
			o.Continuation = opts.Continuation
		}
	}
	r, err := router.New(classify.New(opts.Model), handlers, routerOpts)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	return &Engine{
		cache:         cache,
		monitor:       opts.Monitor,
		router:        r,
		conversations: conversation.NewRegistry(),
		logger:        opts.Logger,
		namespace:     opts.Namespace,
		locks:         newKeyedMutex(),
	}, nil
}

// Monitor returns the engine's performance monitor.
func (e *Engine) Monitor() *monitor.Monitor { return e.monitor }

// CacheStats returns the memory cache hit/miss counters.
func (e *Engine) CacheStats() memory.Stats { return e.cache.Stats() }

// Conversation returns the live conversation for id, if one exists.
func (e *Engine) Conversation(id string) (*core.Conversation, bool) {
	return e.conversations.Get(id)
}

// ProcessNewLead seeds a conversation for the lead with a synthetic "new
// lead" system message and runs one full turn over it. The conversation key
// is derived from (customer, channel, today).
func (e *Engine) ProcessNewLead(ctx context.Context, lead core.Lead) *core.TurnResult {
	channel := lead.EffectiveChannel()
	conversationID := core.ConversationID(lead.CustomerID, channel, time.Now())

	unlock := e.locks.lock(conversationID)
	defer unlock()

	conv, existed := e.conversations.GetOrCreate(conversationID, lead.CustomerID, channel)
	if !existed {
		conv.SetContext(core.ContextLead, map[string]any{
			"customer_id": lead.CustomerID,
			"name":        lead.Name,
			"channel":     channel,
			"source":      lead.Source,
			"metadata":    lead.Metadata,
		})
		conv.AppendMessage(core.NewSystemMessage(newLeadSeed(lead)))
		e.hydrate(ctx, conv)
	}

	return e.runTurn(ctx, conv, nil)
}

// ProcessMessage appends one customer message to the conversation and runs a
// full turn. Unknown conversation IDs start a fresh conversation whose
// customer handle is derived from the ID. onPartial, when non-nil, receives
// each intermediate assistant message before the final result returns.
func (e *Engine) ProcessMessage(ctx context.Context, conversationID, text string, onPartial func(string)) *core.TurnResult {
	unlock := e.locks.lock(conversationID)
	defer unlock()

	customerID, channel := parseConversationID(conversationID)
	conv, existed := e.conversations.GetOrCreate(conversationID, customerID, channel)
	if !existed {
		e.hydrate(ctx, conv)
	}
	conv.AppendMessage(core.NewUserMessage(text))

	var emit func(core.StreamEvent)
	if onPartial != nil {
		emit = func(ev core.StreamEvent) {
			if p, ok := ev.(core.PartialEvent); ok {
				onPartial(p.Text)
			}
		}
	}
	return e.runTurn(ctx, conv, emit)
}

// ProcessMessageStream is ProcessMessage with channel delivery: zero or more
// PartialEvent values in order, then exactly one FinalEvent, then close.
func (e *Engine) ProcessMessageStream(ctx context.Context, conversationID, text string) <-chan core.StreamEvent {
	events := make(chan core.StreamEvent, 16)
	go func() {
		defer close(events)

		unlock := e.locks.lock(conversationID)
		defer unlock()

		customerID, channel := parseConversationID(conversationID)
		conv, existed := e.conversations.GetOrCreate(conversationID, customerID, channel)
		if !existed {
			e.hydrate(ctx, conv)
		}
		conv.AppendMessage(core.NewUserMessage(text))

		result := e.runTurn(ctx, conv, func(ev core.StreamEvent) {
			events <- ev
		})
		events <- core.FinalEvent{Result: *result}
	}()
	return events
}

// runTurn executes one router run inside the failure boundary. It always
// returns a well-formed TurnResult; no error and no panic crosses this
// function.
func (e *Engine) runTurn(ctx context.Context, conv *core.Conversation, emit func(core.StreamEvent)) (result *core.TurnResult) {
	turnID := core.NewID()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			e.monitor.RecordError()
			e.logger.Error("turn panicked",
				"conversationID", conv.ID,
				"turnID", turnID,
				"panic", fmt.Sprint(r),
			)
			result = e.failedResult(turnID, conv, fmt.Sprintf("panic: %v", r))
		}
	}()

	tc := core.NewTurnContext(ctx, turnID, conv, emit, e.logger)
	out, err := e.router.Run(tc)
	if err != nil {
		e.monitor.RecordError()
		e.logger.Error("turn failed",
			"conversationID", conv.ID,
			"turnID", turnID,
			"error", err,
		)
		return e.failedResult(turnID, conv, err.Error())
	}

	e.monitor.RecordResponseTime(time.Since(start).Seconds())
	e.monitor.RecordConversion(out.Converted)
	if out.Degraded {
		e.monitor.RecordDegraded()
	}

	e.persist(ctx, conv, out)

	return &core.TurnResult{
		TurnID:         turnID,
		ConversationID: conv.ID,
		Response:       out.Response,
		Stage:          out.Stage,
		Confidence:     conv.Confidence(),
		NextAction:     out.NextAction,
		Success:        true,
		Retryable:      out.Retryable,
	}
}

func (e *Engine) failedResult(turnID string, conv *core.Conversation, errMsg string) *core.TurnResult {
	return &core.TurnResult{
		TurnID:         turnID,
		ConversationID: conv.ID,
		Response:       Apology,
		Stage:          conv.Stage(),
		Confidence:     conv.Confidence(),
		NextAction:     core.NextActionNone,
		Success:        false,
		Err:            errMsg,
	}
}

// persist writes the turn's interaction record through the cache. A lost
// write is counted and logged but never fails the turn; the customer already
// has the response.
func (e *Engine) persist(ctx context.Context, conv *core.Conversation, out *router.Outcome) {
	var lastUser string
	for _, m := range conv.Messages() {
		if m.Role == core.RoleUser {
			lastUser = m.Text
		}
	}
	value := map[string]any{
		"conversation_id": conv.ID,
		"customer_id":     conv.CustomerID,
		"channel":         conv.Channel,
		"stage":           string(out.Stage),
		"last_message":    lastUser,
		"last_response":   out.Response,
		"message_count":   conv.Len(),
		"requires_human":  conv.RequiresHuman(),
		"updated_at":      conv.Updated().Format(time.RFC3339),
	}
	if err := e.cache.Put(ctx, e.namespace, conv.CustomerID, value); err != nil {
		e.monitor.RecordStoreLoss()
		if sl, ok := e.logger.(*logging.SalesflowLogger); ok {
			sl.LogStoreLoss(e.namespace, conv.CustomerID, err)
			return
		}
		e.logger.Error("durable write lost",
			"namespace", e.namespace,
			"key", conv.CustomerID,
			"error", err,
		)
	}
}

// hydrate warms the conversation context with the customer's prior
// interaction record, if one exists. Failures are silent; memory is an
// enrichment.
func (e *Engine) hydrate(ctx context.Context, conv *core.Conversation) {
	rec, err := e.cache.Get(ctx, e.namespace, conv.CustomerID)
	if err != nil || rec == nil {
		return
	}
	conv.SetContext(core.ContextMemory, rec.Value)
}

// parseConversationID extracts the customer handle and channel from a
// customer:channel:day key. IDs without the separator double as the customer
// handle on the default channel.
func parseConversationID(id string) (customerID, channel string) {
	parts := strings.SplitN(id, ":", 3)
	if len(parts) >= 2 {
		return parts[0], parts[1]
	}
	return id, "chat"
}

func newLeadSeed(lead core.Lead) string {
	name := lead.Name
	if name == "" {
		name = lead.CustomerID
	}
	seed := fmt.Sprintf("New lead: %s reached out via %s.", name, lead.EffectiveChannel())
	if lead.Source != "" {
		seed += fmt.Sprintf(" Source: %s.", lead.Source)
	}
	return seed
}
