package core

// StreamEvent is the tagged delivery unit for streaming turn output: zero or
// more PartialEvent values in generation order, then exactly one FinalEvent.
// Concrete event types implement the unexported marker enabling a closed set.
type StreamEvent interface{ isStreamEvent() }

// PartialEvent carries one intermediate assistant message produced during a
// turn. It is delivered at most once per message, synchronously, in order.
type PartialEvent struct {
	Text string
}

func (PartialEvent) isStreamEvent() {}

// FinalEvent terminates a stream. Its result's Response always equals the
// text of the last PartialEvent, when any was delivered.
type FinalEvent struct {
	Result TurnResult
}

func (FinalEvent) isStreamEvent() {}
