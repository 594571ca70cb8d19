package classify

import (
	"fmt"
	"strings"

	"github.com/thependalorian/salesflow/core"
	"github.com/thependalorian/salesflow/model"
)

// DefaultConfidence is recorded with every successful model classification.
// The category labels carry no calibrated probability, so a single fixed
// score stands in until providers expose one.
const DefaultConfidence = 0.7

// FallbackConfidence is recorded when classification degrades to nurture.
const FallbackConfidence = 0.0

// Options configures a Classifier.
type Options struct {
	// Confidence is stored on the conversation after a successful
	// classification.
	Confidence float64
}

// Classifier labels inbound messages with a routing category.
type Classifier struct {
	model      model.Model
	confidence float64
}

// New creates a Classifier. A nil model is allowed; every classification then
// degrades to CategoryNurture.
func New(m model.Model, optFns ...func(o *Options)) *Classifier {
	opts := Options{Confidence: DefaultConfidence}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Classifier{model: m, confidence: opts.Confidence}
}

// Classify labels the latest message in the conversation and records the
// category and confidence in the conversation context. It never fails: any
// degradation yields CategoryNurture with zero confidence.
func (c *Classifier) Classify(tc *core.TurnContext) core.Category {
	conv := tc.Conversation

	category, confidence := c.classify(tc)

	conv.SetContext(core.ContextClassification, string(category))
	conv.SetContext(core.ContextConfidence, confidence)
	conv.SetConfidence(confidence)

	tc.LogDebug("message classified",
		"turnID", tc.TurnID,
		"category", string(category),
		"confidence", confidence,
	)
	return category
}

func (c *Classifier) classify(tc *core.TurnContext) (core.Category, float64) {
	if c.model == nil {
		tc.LogWarn("classifier has no model, falling back to nurture", "turnID", tc.TurnID)
		return core.CategoryNurture, FallbackConfidence
	}

	req := model.Request{
		Instructions: instructions(),
		Messages:     tc.Conversation.Messages(),
	}

	respCh, errCh := c.model.Generate(tc.Context, req)
	text, err := model.Collect(tc.Context, respCh, errCh)
	if err != nil {
		tc.LogWarn("classification failed, falling back to nurture",
			"turnID", tc.TurnID,
			"error", err,
		)
		return core.CategoryNurture, FallbackConfidence
	}

	category, ok := core.ParseCategory(text)
	if !ok {
		tc.LogWarn("classifier returned unknown label, falling back to nurture",
			"turnID", tc.TurnID,
			"label", text,
		)
		return core.CategoryNurture, FallbackConfidence
	}
	return category, c.confidence
}

func instructions() string {
	labels := make([]string, 0, len(core.Categories()))
	for _, c := range core.Categories() {
		labels = append(labels, string(c))
	}
	return fmt.Sprintf(
		"You are the intent classifier of a sales conversation engine. "+
			"Read the conversation and respond with exactly one of the following labels, "+
			"with no explanation and no punctuation: %s. "+
			"Use 'qualify' for budget, authority, need or timeline signals; "+
			"'objection' for pushback on price, timing or fit; "+
			"'close' for buying intent; 'follow_up' for scheduling; "+
			"'escalate' when a human must take over; "+
			"'tools' when the customer asks for data that requires a lookup; "+
			"'nurture' for everything else.",
		strings.Join(labels, ", "),
	)
}
