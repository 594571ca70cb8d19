package stage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/thependalorian/salesflow/core"
	"github.com/thependalorian/salesflow/memory"
	"github.com/thependalorian/salesflow/model"
)

// Options configures the model-backed handlers.
type Options struct {
	// Model generates the stage response. Nil degrades every turn to the
	// stage's fallback sentence.
	Model model.Model

	// Memory, when set, is consulted for one prior interaction record that
	// seeds the stage instructions with customer context.
	Memory memory.Store

	// Namespace selects where interaction records live in Memory.
	Namespace string

	// CallTimeout bounds each model call.
	CallTimeout time.Duration
}

// ModelHandler is the shared core of the qualify, objection, nurture, close
// and follow-up stages. It prepends a stage-specific system instruction when
// the transcript has none, calls the model over the full history, and appends
// the answer as the next assistant message.
type ModelHandler struct {
	stage        core.Stage
	instructions string
	fallback     string
	model        model.Model
	memory       memory.Store
	namespace    string
	callTimeout  time.Duration
}

func newModelHandler(stage core.Stage, instructions, fallback string, optFns []func(o *Options)) *ModelHandler {
	opts := Options{
		Namespace:   memory.NamespaceConversationMemories,
		CallTimeout: DefaultCallTimeout,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	return &ModelHandler{
		stage:        stage,
		instructions: instructions,
		fallback:     fallback,
		model:        opts.Model,
		memory:       opts.Memory,
		namespace:    opts.Namespace,
		callTimeout:  opts.CallTimeout,
	}
}

// NewQualifyHandler builds the lead qualification stage.
func NewQualifyHandler(optFns ...func(o *Options)) *ModelHandler {
	return newModelHandler(core.StageQualify,
		"You are a friendly sales assistant qualifying a new lead. "+
			"Ask about budget, decision authority, concrete needs and timeline, "+
			"one question at a time, and keep the tone warm and low pressure.",
		FallbackQualify, optFns)
}

// NewObjectionHandler builds the objection handling stage.
func NewObjectionHandler(optFns ...func(o *Options)) *ModelHandler {
	return newModelHandler(core.StageObjection,
		"You are a sales assistant addressing a customer objection. "+
			"Acknowledge the concern sincerely, answer it honestly, and offer a "+
			"concrete next step. Never argue and never overpromise.",
		FallbackObjection, optFns)
}

// NewNurtureHandler builds the relationship nurturing stage.
func NewNurtureHandler(optFns ...func(o *Options)) *ModelHandler {
	return newModelHandler(core.StageNurture,
		"You are a sales assistant keeping a not-yet-ready lead engaged. "+
			"Be helpful without selling: share relevant information, answer "+
			"questions, and leave the door open.",
		FallbackNurture, optFns)
}

// NewCloseHandler builds the deal closing stage.
func NewCloseHandler(optFns ...func(o *Options)) *ModelHandler {
	return newModelHandler(core.StageClose,
		"You are a sales assistant guiding a ready customer to commitment. "+
			"Summarize what was agreed, confirm the details, and propose the "+
			"concrete closing step.",
		FallbackClose, optFns)
}

// NewFollowUpHandler builds the follow-up scheduling stage.
func NewFollowUpHandler(optFns ...func(o *Options)) *ModelHandler {
	return newModelHandler(core.StageFollowUp,
		"You are a sales assistant arranging a follow-up. Propose a specific "+
			"time or next touchpoint and confirm it suits the customer.",
		FallbackFollowUp, optFns)
}

// Stage implements Handler.
func (h *ModelHandler) Stage() core.Stage { return h.stage }

// Fallback returns the stage's degraded-mode sentence.
func (h *ModelHandler) Fallback() string { return h.fallback }

// Handle implements Handler.
func (h *ModelHandler) Handle(tc *core.TurnContext) (Result, error) {
	conv := tc.Conversation

	instructions := h.instructions
	if memoryLine := h.memoryContext(tc); memoryLine != "" {
		instructions += "\n\n" + memoryLine
	}
	if !conv.HasLeadingSystem() {
		conv.PrependSystem(instructions)
	}

	if h.model == nil {
		tc.LogWarn("stage degraded, no model configured",
			"stage", string(h.stage),
			"turnID", tc.TurnID,
		)
		conv.AppendMessage(core.NewAssistantMessage(h.fallback))
		return Result{Text: h.fallback, Degraded: true}, nil
	}

	ctx, cancel := context.WithTimeout(tc.Context, h.callTimeout)
	defer cancel()

	respCh, errCh := h.model.Generate(ctx, model.Request{
		Instructions: instructions,
		Messages:     conv.Messages(),
	})
	text, err := model.Collect(ctx, respCh, errCh)
	if err != nil {
		if core.IsTimeout(err) {
			tc.LogWarn("stage degraded, model call timed out",
				"stage", string(h.stage),
				"turnID", tc.TurnID,
				"timeout", h.callTimeout,
			)
			conv.AppendMessage(core.NewAssistantMessage(h.fallback))
			return Result{Text: h.fallback, Degraded: true, Retryable: true}, nil
		}
		return Result{}, core.NewCapabilityError(core.CapabilityCompletion, err)
	}

	conv.AppendMessage(core.NewAssistantMessage(text))
	tc.LogDebug("stage responded",
		"stage", string(h.stage),
		"turnID", tc.TurnID,
		"chars", len(text),
	)
	return Result{Text: text}, nil
}

// memoryContext loads at most one prior interaction record for the customer
// and renders it as an instruction line. Read failures are silent; memory is
// an enrichment, not a dependency.
func (h *ModelHandler) memoryContext(tc *core.TurnContext) string {
	conv := tc.Conversation

	var value map[string]any
	if v, ok := conv.GetContext(core.ContextMemory); ok {
		value, _ = v.(map[string]any)
	} else if h.memory != nil {
		rec, err := h.memory.Get(tc.Context, h.namespace, conv.CustomerID)
		if err != nil || rec == nil {
			return ""
		}
		value = rec.Value
		conv.SetContext(core.ContextMemory, value)
	}
	if len(value) == 0 {
		return ""
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("Known customer context from earlier interactions: %s", encoded)
}

var _ Handler = (*ModelHandler)(nil)
