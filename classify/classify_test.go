package classify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/thependalorian/salesflow/core"
	"github.com/thependalorian/salesflow/internal/testutil"
	"github.com/thependalorian/salesflow/model"
)

func newTurn(t *testing.T, lastMessage string) *core.TurnContext {
	t.Helper()
	conv := core.NewConversation("c1", "cust-1", "chat")
	conv.AppendMessage(core.NewUserMessage(lastMessage))
	return core.NewTurnContext(context.Background(), core.NewID(), conv, nil, nil)
}

func TestClassifyNoModelFallsBackToNurture(t *testing.T) {
	c := New(nil)
	tc := newTurn(t, "anything at all")
	if got := c.Classify(tc); got != core.CategoryNurture {
		t.Fatalf("expected nurture, got %q", got)
	}
	if tc.Conversation.Confidence() != FallbackConfidence {
		t.Fatalf("expected zero confidence, got %v", tc.Conversation.Confidence())
	}
}

func TestClassifyValidLabel(t *testing.T) {
	mock := model.NewMockModel("classifier")
	mock.SetRespondFunc(func(model.Request) string { return " ObJection \n" })

	c := New(mock)
	tc := newTurn(t, "this seems too expensive")
	if got := c.Classify(tc); got != core.CategoryObjection {
		t.Fatalf("expected objection, got %q", got)
	}

	conv := tc.Conversation
	if v, _ := conv.GetContext(core.ContextClassification); v != "objection" {
		t.Fatalf("classification not recorded: %v", v)
	}
	if v, _ := conv.GetContext(core.ContextConfidence); v != DefaultConfidence {
		t.Fatalf("confidence not recorded: %v", v)
	}
	if conv.Confidence() != DefaultConfidence {
		t.Fatalf("expected confidence %v, got %v", DefaultConfidence, conv.Confidence())
	}
}

func TestClassifyUnknownLabelFallsBackToNurture(t *testing.T) {
	mock := model.NewMockModel("classifier")
	mock.SetRespondFunc(func(model.Request) string { return "definitely an objection, I think" })

	c := New(mock)
	if got := c.Classify(newTurn(t, "hm")); got != core.CategoryNurture {
		t.Fatalf("expected nurture, got %q", got)
	}
}

func TestClassifyModelErrorFallsBackToNurture(t *testing.T) {
	c := New(&testutil.ErrModel{Err: errors.New("provider down")})
	tc := newTurn(t, "hello")
	if got := c.Classify(tc); got != core.CategoryNurture {
		t.Fatalf("expected nurture, got %q", got)
	}
	if tc.Conversation.Confidence() != FallbackConfidence {
		t.Fatalf("expected zero confidence on degradation")
	}
}

func TestClassifyInstructionsNameEveryCategory(t *testing.T) {
	var seen model.Request
	mock := model.NewMockModel("classifier")
	mock.SetRespondFunc(func(req model.Request) string {
		seen = req
		return "qualify"
	})

	New(mock).Classify(newTurn(t, "we have budget approved"))
	for _, category := range core.Categories() {
		if !strings.Contains(seen.Instructions, string(category)) {
			t.Fatalf("instructions missing category %q", category)
		}
	}
}
