// Package memory defines the durable key/value contract of the orchestration
// engine (Store), the versioned Record it persists, and the write-through
// Cache the engine reads through.
//
// Namespaces partition the store logically (e.g. per-customer memory areas);
// within a namespace keys are unique and a write replaces the prior value
// (last-write-wins, no merge). Durable backends live in sub-packages (see
// memory/bolt); the in-memory implementation here suits tests and ephemeral
// deployments.
package memory
