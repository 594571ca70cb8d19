package stage

import (
	"context"
	"errors"
	"testing"

	"github.com/thependalorian/salesflow/core"
	"github.com/thependalorian/salesflow/internal/testutil"
	"github.com/thependalorian/salesflow/memory"
	"github.com/thependalorian/salesflow/model"
)

func newTurn(message string) *core.TurnContext {
	conv := core.NewConversation("c1", "cust-1", "chat")
	if message != "" {
		conv.AppendMessage(core.NewUserMessage(message))
	}
	return core.NewTurnContext(context.Background(), core.NewID(), conv, nil, nil)
}

func TestModelHandlerFallbackWithoutModel(t *testing.T) {
	cases := []struct {
		handler  *ModelHandler
		fallback string
	}{
		{NewQualifyHandler(), FallbackQualify},
		{NewObjectionHandler(), FallbackObjection},
		{NewNurtureHandler(), FallbackNurture},
		{NewCloseHandler(), FallbackClose},
		{NewFollowUpHandler(), FallbackFollowUp},
	}
	for _, c := range cases {
		tc := newTurn("hello")
		res, err := c.handler.Handle(tc)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.handler.Stage(), err)
		}
		if res.Text != c.fallback || !res.Degraded || res.Retryable {
			t.Fatalf("%s: unexpected result: %+v", c.handler.Stage(), res)
		}
		if got, ok := tc.Conversation.LastAssistantText(); !ok || got != c.fallback {
			t.Fatalf("%s: fallback not appended to transcript: %q", c.handler.Stage(), got)
		}
	}
}

func TestModelHandlerPrependsInstructionsOnce(t *testing.T) {
	mock := model.NewMockModel("m")
	mock.SetRespondFunc(func(model.Request) string { return "sure thing" })

	h := NewQualifyHandler(func(o *Options) { o.Model = mock })
	tc := newTurn("hello")

	if _, err := h.Handle(tc); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if _, err := h.Handle(tc); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	msgs := tc.Conversation.Messages()
	if msgs[0].Role != core.RoleSystem {
		t.Fatalf("expected leading system instruction, got %+v", msgs[0])
	}
	systems := 0
	for _, m := range msgs {
		if m.Role == core.RoleSystem {
			systems++
		}
	}
	if systems != 1 {
		t.Fatalf("expected exactly one system message, got %d", systems)
	}
}

func TestModelHandlerAppendsModelAnswer(t *testing.T) {
	mock := model.NewMockModel("m")
	mock.SetRespondFunc(func(model.Request) string { return "We can absolutely work with that budget." })

	h := NewObjectionHandler(func(o *Options) { o.Model = mock })
	tc := newTurn("too expensive")
	res, err := h.Handle(tc)
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if res.Degraded || res.Text != "We can absolutely work with that budget." {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got, _ := tc.Conversation.LastAssistantText(); got != res.Text {
		t.Fatalf("answer not appended: %q", got)
	}
}

func TestModelHandlerTimeoutDegradesRetryable(t *testing.T) {
	h := NewNurtureHandler(func(o *Options) {
		o.Model = &testutil.ErrModel{Err: context.DeadlineExceeded}
	})
	tc := newTurn("hello")
	res, err := h.Handle(tc)
	if err != nil {
		t.Fatalf("timeout must not surface as an error: %v", err)
	}
	if res.Text != FallbackNurture || !res.Degraded || !res.Retryable {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestModelHandlerErrorSurfacesCapabilityError(t *testing.T) {
	h := NewNurtureHandler(func(o *Options) {
		o.Model = &testutil.ErrModel{Err: errors.New("provider down")}
	})
	_, err := h.Handle(newTurn("hello"))
	if err == nil {
		t.Fatalf("expected a capability error")
	}
	var capErr *core.CapabilityError
	if !errors.As(err, &capErr) || capErr.Capability != core.CapabilityCompletion {
		t.Fatalf("expected completion capability error, got %v", err)
	}
}

func TestModelHandlerReadsMemoryContext(t *testing.T) {
	store := memory.NewInMemoryStore()
	ctx := context.Background()
	_ = store.Put(ctx, memory.NamespaceConversationMemories, "cust-1", map[string]any{"note": "asked about pricing last week"})

	var seen model.Request
	mock := model.NewMockModel("m")
	mock.SetRespondFunc(func(req model.Request) string {
		seen = req
		return "welcome back"
	})

	h := NewNurtureHandler(func(o *Options) {
		o.Model = mock
		o.Memory = store
	})
	tc := newTurn("hi again")
	if _, err := h.Handle(tc); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if _, ok := tc.Conversation.GetContext(core.ContextMemory); !ok {
		t.Fatalf("memory record not staged in context")
	}
	if seen.Instructions == "" {
		t.Fatalf("expected instructions in request")
	}
}
