// Package core provides the foundational domain types and execution contexts
// of the conversation orchestration engine. It defines:
//
//   - Conversations (append-only message history plus working context)
//   - The Category / Stage vocabulary the router operates on
//   - TurnContext (scoped execution state for a single conversational turn)
//   - TurnResult and the stream event set delivered to callers
//   - The error taxonomy crossed by every external capability call
//
// The package intentionally keeps implementation concerns (model providers,
// persistence, routing policy) out of scope; those live behind the interfaces
// of their own packages and are injected into the engine at wiring time.
package core
