package router

import (
	"context"
	"sync"
	"testing"

	"github.com/thependalorian/salesflow/core"
	"github.com/thependalorian/salesflow/stage"
	"github.com/thependalorian/salesflow/tool"
)

// fixedClassifier always yields the same category.
type fixedClassifier struct{ category core.Category }

func (f fixedClassifier) Classify(tc *core.TurnContext) core.Category {
	tc.Conversation.SetContext(core.ContextClassification, string(f.category))
	return f.category
}

// countingHandler wraps a Handler and counts executions.
type countingHandler struct {
	inner stage.Handler
	mu    sync.Mutex
	calls int
}

func (c *countingHandler) Stage() core.Stage { return c.inner.Stage() }

func (c *countingHandler) Handle(tc *core.TurnContext) (stage.Result, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.inner.Handle(tc)
}

func allHandlers() []stage.Handler {
	return []stage.Handler{
		stage.NewQualifyHandler(),
		stage.NewObjectionHandler(),
		stage.NewNurtureHandler(),
		stage.NewCloseHandler(),
		stage.NewFollowUpHandler(),
		stage.NewEscalateHandler(),
		stage.NewAuthorizeHandler(nil),
		stage.NewToolsHandler(tool.NewRegistry()),
	}
}

func newTurn() *core.TurnContext {
	conv := core.NewConversation("c1", "cust-1", "chat")
	conv.AppendMessage(core.NewUserMessage("hello"))
	return core.NewTurnContext(context.Background(), core.NewID(), conv, nil, nil)
}

func TestNewRejectsPartialTransitionTable(t *testing.T) {
	incomplete := map[core.Category]core.Stage{
		core.CategoryQualify: core.StageQualify,
	}
	_, err := New(fixedClassifier{core.CategoryQualify}, allHandlers(), func(o *Options) {
		o.Transitions = incomplete
	})
	if err == nil {
		t.Fatalf("expected construction to fail on a partial table")
	}
}

func TestNewRejectsMissingHandler(t *testing.T) {
	handlers := []stage.Handler{stage.NewQualifyHandler()}
	if _, err := New(fixedClassifier{core.CategoryQualify}, handlers); err == nil {
		t.Fatalf("expected construction to fail on missing handlers")
	}
}

func TestEveryCategoryReachesTerminalWithinBound(t *testing.T) {
	for _, category := range core.Categories() {
		counted := make([]*countingHandler, 0, 8)
		handlers := make([]stage.Handler, 0, 8)
		for _, h := range allHandlers() {
			c := &countingHandler{inner: h}
			counted = append(counted, c)
			handlers = append(handlers, c)
		}

		r, err := New(fixedClassifier{category}, handlers)
		if err != nil {
			t.Fatalf("%s: new failed: %v", category, err)
		}
		tc := newTurn()
		out, err := r.Run(tc)
		if err != nil {
			t.Fatalf("%s: run failed: %v", category, err)
		}

		total := 0
		for _, c := range counted {
			total += c.calls
		}
		if total > 3 {
			t.Fatalf("%s: %d handler executions exceeds the bound", category, total)
		}
		if out.Stage != Transitions[category] {
			t.Fatalf("%s: routed to %q, want %q", category, out.Stage, Transitions[category])
		}
		if s := tc.Conversation.Stage(); !s.Terminal() {
			t.Fatalf("%s: conversation left in non-terminal stage %q", category, s)
		}
	}
}

func TestEscalationIsTerminalWithHandoff(t *testing.T) {
	r, err := New(fixedClassifier{core.CategoryEscalate}, allHandlers())
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	tc := newTurn()
	out, err := r.Run(tc)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out.Response != stage.HandoffSentence {
		t.Fatalf("unexpected response: %q", out.Response)
	}
	if out.NextAction != core.NextActionHandoff {
		t.Fatalf("expected handoff next action, got %q", out.NextAction)
	}
	if !tc.Conversation.RequiresHuman() {
		t.Fatalf("requires-human flag not set")
	}
	if tc.Conversation.Stage() != core.StageEscalate {
		t.Fatalf("conversation must park in the escalation stage, got %q", tc.Conversation.Stage())
	}
}

func TestContinuationFollowUp(t *testing.T) {
	r, err := New(fixedClassifier{core.CategoryQualify}, allHandlers(), func(o *Options) {
		o.Continuation = ConstantContinuation(DecisionFollowUp)
	})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	tc := newTurn()
	out, err := r.Run(tc)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out.NextAction != core.NextActionFollowUp {
		t.Fatalf("expected follow-up next action, got %q", out.NextAction)
	}
	// the follow-up stage ran last, so its fallback is the response
	if out.Response != stage.FallbackFollowUp {
		t.Fatalf("unexpected response: %q", out.Response)
	}
}

func TestContinuationEndStopsAfterStage(t *testing.T) {
	r, err := New(fixedClassifier{core.CategoryObjection}, allHandlers(), func(o *Options) {
		o.Continuation = ConstantContinuation(DecisionEnd)
	})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	out, err := r.Run(newTurn())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out.Response != stage.FallbackObjection || !out.Degraded {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if out.NextAction != core.NextActionNone {
		t.Fatalf("expected no next action, got %q", out.NextAction)
	}
}

func TestCloseMarksConversion(t *testing.T) {
	r, err := New(fixedClassifier{core.CategoryClose}, allHandlers())
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	out, err := r.Run(newTurn())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !out.Converted {
		t.Fatalf("close stage must mark the turn converted")
	}
}

func TestPartialEventsEmittedInOrder(t *testing.T) {
	r, err := New(fixedClassifier{core.CategoryQualify}, allHandlers(), func(o *Options) {
		o.Continuation = ConstantContinuation(DecisionFollowUp)
	})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	var partials []string
	conv := core.NewConversation("c1", "cust-1", "chat")
	conv.AppendMessage(core.NewUserMessage("hello"))
	tc := core.NewTurnContext(context.Background(), core.NewID(), conv, func(ev core.StreamEvent) {
		if p, ok := ev.(core.PartialEvent); ok {
			partials = append(partials, p.Text)
		}
	}, nil)

	out, err := r.Run(tc)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(partials) != 2 {
		t.Fatalf("expected 2 partials (qualify, follow-up), got %v", partials)
	}
	if partials[0] != stage.FallbackQualify || partials[1] != stage.FallbackFollowUp {
		t.Fatalf("unexpected partial order: %v", partials)
	}
	if out.Response != partials[len(partials)-1] {
		t.Fatalf("final response must equal the last partial")
	}
}
