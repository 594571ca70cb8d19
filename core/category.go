package core

import "strings"

// Category is the classifier's output label. It selects which stage handler
// runs for a turn.
type Category string

const (
	// CategoryQualify routes to lead qualification.
	CategoryQualify Category = "qualify"
	// CategoryObjection routes to objection handling.
	CategoryObjection Category = "objection"
	// CategoryNurture routes to relationship nurturing. It is also the
	// deterministic fallback when classification degrades.
	CategoryNurture Category = "nurture"
	// CategoryClose routes to deal closing.
	CategoryClose Category = "close"
	// CategoryFollowUp routes to follow-up scheduling.
	CategoryFollowUp Category = "follow_up"
	// CategoryEscalate routes to human hand-off.
	CategoryEscalate Category = "escalate"
	// CategoryTools routes through authorization into tool invocation.
	CategoryTools Category = "tools"
)

// Categories returns the full category vocabulary in a stable order.
func Categories() []Category {
	return []Category{
		CategoryQualify,
		CategoryObjection,
		CategoryNurture,
		CategoryClose,
		CategoryFollowUp,
		CategoryEscalate,
		CategoryTools,
	}
}

// ParseCategory normalizes a raw model response (trim, lowercase) and checks
// membership in the category vocabulary. The boolean reports validity; callers
// are expected to fall back to CategoryNurture on false.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// String returns the wire label of the category.
func (c Category) String() string { return string(c) }
