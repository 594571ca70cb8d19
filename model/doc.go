// Package model defines the provider-agnostic abstraction for the external
// chat-completion capability the orchestration engine consumes.
//
// Core goals:
//   - Unify streaming + non-streaming generation behind a single interface
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (e.g. OpenAI, Anthropic) implement the Model interface from this
// package so the classifier and stage handlers remain decoupled from vendor
// SDKs. Absence of a configured model is a supported degraded mode, not an
// error: callers fall back to fixed per-stage responses.
package model
