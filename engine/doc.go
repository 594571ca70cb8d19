// Package engine wires the classifier, stage handlers, router, memory layer
// and monitor into the two public entry points: ProcessNewLead and
// ProcessMessage. The engine owns the single failure boundary of a turn
// (panics and capability failures become a fixed apologetic result, never an
// escaped error) and serializes turns per conversation while conversations
// remain concurrent with each other.
package engine
