// Package classify maps an inbound customer message onto one of the routing
// categories using a language model, with a deterministic fallback: any
// failure mode (no model, model error, unparseable output) classifies as
// nurture so a turn always routes somewhere safe.
package classify
