package core

// Lead captures the metadata a new sales conversation is seeded with.
// Channel defaults to "chat" when empty.
type Lead struct {
	CustomerID string         `json:"customer_id"`
	Name       string         `json:"name,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Source     string         `json:"source,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// EffectiveChannel returns the lead's channel or the "chat" default.
func (l Lead) EffectiveChannel() string {
	if l.Channel == "" {
		return "chat"
	}
	return l.Channel
}
