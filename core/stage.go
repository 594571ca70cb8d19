package core

// Stage is a named point in the router's graph. Exactly one stage is active
// at a time for a given conversation.
type Stage string

const (
	// StageClassify is the initial state of every turn.
	StageClassify Stage = "classify_message"
	// StageQualify qualifies a new lead.
	StageQualify Stage = "qualify_lead"
	// StageObjection addresses a customer objection.
	StageObjection Stage = "handle_objection"
	// StageNurture keeps a not-yet-ready lead engaged.
	StageNurture Stage = "nurture_lead"
	// StageClose drives a ready lead to commitment.
	StageClose Stage = "close_deal"
	// StageFollowUp schedules or confirms a follow-up.
	StageFollowUp Stage = "follow_up"
	// StageEscalate hands the conversation to a human.
	StageEscalate Stage = "escalate_human"
	// StageAuthorize performs the out-of-band tool authorization handshake.
	StageAuthorize Stage = "authorization"
	// StageTools invokes pending external tool capabilities.
	StageTools Stage = "tools"
	// StageEnd marks the turn complete.
	StageEnd Stage = "end"
)

// Terminal reports whether the stage ends the turn. StageEscalate is terminal
// with the human-handoff flag set.
func (s Stage) Terminal() bool { return s == StageEnd || s == StageEscalate }

// String returns the wire label of the stage.
func (s Stage) String() string { return string(s) }
