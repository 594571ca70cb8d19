package stage

import (
	"testing"

	"github.com/thependalorian/salesflow/core"
	"github.com/thependalorian/salesflow/model"
)

func TestEscalateReturnsHandoffSentence(t *testing.T) {
	h := NewEscalateHandler()
	tc := newTurn("I want to speak to a person")
	res, err := h.Handle(tc)
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if res.Text != HandoffSentence || res.Degraded {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got, _ := tc.Conversation.LastAssistantText(); got != HandoffSentence {
		t.Fatalf("hand-off sentence not appended: %q", got)
	}
}

func TestEscalateNeverCallsModel(t *testing.T) {
	// The escalation path must hold even while generation is broken, so the
	// handler has no model at all; a counting mock proves nothing reaches it.
	mock := model.NewMockModel("m")

	h := NewEscalateHandler()
	tc := newTurn("complaint")
	if _, err := h.Handle(tc); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if mock.Calls() != 0 {
		t.Fatalf("expected zero model calls, got %d", mock.Calls())
	}
	if h.Stage() != core.StageEscalate {
		t.Fatalf("unexpected stage %q", h.Stage())
	}
}
