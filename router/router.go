// Package router implements the turn state machine: it classifies the
// inbound message, dispatches the mapped stage handler, applies the
// continuation policy, and walks the graph to a terminal state. A turn makes
// at most three transitions by construction; a hard step guard backs the
// structural bound.
package router

import (
	"fmt"

	"github.com/thependalorian/salesflow/core"
	"github.com/thependalorian/salesflow/stage"
)

// maxHandlerSteps backs the structural transition bound. Reaching it means
// the transition table was misconfigured.
const maxHandlerSteps = 4

// Decision is the continuation outcome after a model-backed stage.
type Decision string

const (
	// DecisionTools continues into the tool invocation stage.
	DecisionTools Decision = "tools"
	// DecisionFollowUp continues into the follow-up stage.
	DecisionFollowUp Decision = "follow_up"
	// DecisionEnd completes the turn.
	DecisionEnd Decision = "end"
)

// ContinuationStrategy decides how a turn continues after one of the
// model-backed stages ran. It sees the mutated conversation.
type ContinuationStrategy func(conv *core.Conversation) Decision

// ConstantContinuation returns a strategy that always yields d. The constant
// DecisionTools strategy is the default policy; the tools stage is a no-op
// when no requests are pending.
func ConstantContinuation(d Decision) ContinuationStrategy {
	return func(*core.Conversation) Decision { return d }
}

// Transitions maps every classifier category onto its entry stage. The map is
// total over the category vocabulary; New rejects configurations that are
// not.
var Transitions = map[core.Category]core.Stage{
	core.CategoryQualify:   core.StageQualify,
	core.CategoryObjection: core.StageObjection,
	core.CategoryNurture:   core.StageNurture,
	core.CategoryClose:     core.StageClose,
	core.CategoryFollowUp:  core.StageFollowUp,
	core.CategoryEscalate:  core.StageEscalate,
	core.CategoryTools:     core.StageAuthorize,
}

// Classifier labels the latest message of a conversation.
type Classifier interface {
	Classify(tc *core.TurnContext) core.Category
}

// Outcome summarizes one completed router run.
type Outcome struct {
	// Response is the text of the last handler that produced one.
	Response string

	// Stage is the entry stage the classification routed to.
	Stage core.Stage

	NextAction core.NextAction

	// Degraded is set when any stage answered with its fallback sentence.
	Degraded bool

	// Retryable is set when the degradation came from a call timeout.
	Retryable bool

	// Converted is set when the turn reached the closing stage.
	Converted bool
}

// Options configures a Router.
type Options struct {
	// Transitions overrides the category-to-stage table.
	Transitions map[core.Category]core.Stage

	// Continuation overrides the post-stage continuation policy.
	Continuation ContinuationStrategy
}

// Router walks a turn through the stage graph.
type Router struct {
	classifier   Classifier
	handlers     map[core.Stage]stage.Handler
	transitions  map[core.Category]core.Stage
	continuation ContinuationStrategy
}

// New creates a Router over the given classifier and handlers. It fails fast
// when the transition table misses a category or routes to a stage with no
// handler, so a misconfiguration cannot surface mid-conversation.
func New(classifier Classifier, handlers []stage.Handler, optFns ...func(o *Options)) (*Router, error) {
	opts := Options{
		Transitions:  Transitions,
		Continuation: ConstantContinuation(DecisionTools),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	byStage := make(map[core.Stage]stage.Handler, len(handlers))
	for _, h := range handlers {
		if _, dup := byStage[h.Stage()]; dup {
			return nil, fmt.Errorf("duplicate handler for stage %q", h.Stage())
		}
		byStage[h.Stage()] = h
	}

	for _, category := range core.Categories() {
		target, ok := opts.Transitions[category]
		if !ok {
			return nil, fmt.Errorf("transition table misses category %q", category)
		}
		if _, ok := byStage[target]; !ok {
			return nil, fmt.Errorf("category %q routes to stage %q with no handler", category, target)
		}
	}
	// The default continuation and the authorization stage both require the
	// tool invocation stage to exist.
	if _, ok := byStage[core.StageTools]; !ok {
		return nil, fmt.Errorf("no handler for stage %q", core.StageTools)
	}

	return &Router{
		classifier:   classifier,
		handlers:     byStage,
		transitions:  opts.Transitions,
		continuation: opts.Continuation,
	}, nil
}

// Run executes one full turn: classification, stage dispatch, continuation,
// terminal state. The returned error is a capability failure for the engine
// boundary; every normal degradation resolves inside the Outcome.
func (r *Router) Run(tc *core.TurnContext) (*Outcome, error) {
	conv := tc.Conversation
	conv.SetStage(core.StageClassify)

	category := r.classifier.Classify(tc)
	entry := r.transitions[category]

	out := &Outcome{
		Stage:      entry,
		NextAction: core.NextActionNone,
	}

	current := entry
	steps := 0
	for current != core.StageEnd {
		steps++
		if steps > maxHandlerSteps {
			return nil, fmt.Errorf("turn exceeded %d stage executions at %q", maxHandlerSteps, current)
		}

		h, ok := r.handlers[current]
		if !ok {
			return nil, fmt.Errorf("no handler for stage %q", current)
		}

		conv.SetStage(current)
		res, err := h.Handle(tc)
		if err != nil {
			return nil, err
		}
		if res.Text != "" {
			out.Response = res.Text
			tc.EmitPartial(res.Text)
		}
		out.Degraded = out.Degraded || res.Degraded
		out.Retryable = out.Retryable || res.Retryable

		current = r.next(current, conv, out)
	}

	// An escalated conversation parks in the escalation stage so the
	// hand-off is visible on the conversation itself, not only in the
	// turn outcome.
	if out.NextAction == core.NextActionHandoff {
		conv.SetStage(core.StageEscalate)
	} else {
		conv.SetStage(core.StageEnd)
	}
	return out, nil
}

func (r *Router) next(current core.Stage, conv *core.Conversation, out *Outcome) core.Stage {
	switch current {
	case core.StageQualify, core.StageObjection, core.StageNurture, core.StageClose:
		if current == core.StageClose {
			out.Converted = true
		}
		switch r.continuation(conv) {
		case DecisionTools:
			return core.StageTools
		case DecisionFollowUp:
			out.NextAction = core.NextActionFollowUp
			return core.StageFollowUp
		default:
			return core.StageEnd
		}
	case core.StageFollowUp:
		if out.NextAction == core.NextActionNone {
			out.NextAction = core.NextActionFollowUp
		}
		return core.StageEnd
	case core.StageEscalate:
		conv.MarkRequiresHuman()
		out.NextAction = core.NextActionHandoff
		return core.StageEnd
	case core.StageAuthorize:
		return core.StageTools
	case core.StageTools:
		return core.StageEnd
	default:
		return core.StageEnd
	}
}
