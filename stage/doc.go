// Package stage implements the per-category handlers the router dispatches
// to: model-backed sales stages (qualify, objection, nurture, close,
// follow-up) sharing one generation core, the capability-free escalation
// handler, the tool authorization handshake, and the tool invocation stage.
//
// Each model-backed stage carries a fixed fallback sentence that answers the
// customer when no model is configured or the model call times out. The
// fallback literals are part of the package contract; callers and operators
// may match on them to detect degraded turns.
package stage
