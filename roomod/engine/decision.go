package engine

// What happens to a submission after the bot explains what it did wrong.
type Action int

const (
	ActionNone Action = iota
	ActionWarn
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionWarn:
		return "warn"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Result of evaluating one submission's issue set. Immutable once returned by Decide.
type Decision struct {
	lines    []string
	action   Action
	resubmit bool
	escalate bool
}

// Lines returns the human-readable explanations, in rule table order.
func (d Decision) Lines() []string {
	out := make([]string, len(d.lines))
	copy(out, d.lines)
	return out
}

func (d Decision) NumLines() int {
	return len(d.lines)
}

func (d Decision) Action() Action {
	return d.action
}

// Whether the author is invited to fix and resubmit.
func (d Decision) Resubmit() bool {
	return d.resubmit
}

// Whether the moderation team should be asked for help.
func (d Decision) Escalate() bool {
	return d.escalate
}

// Constructs a Decision directly. Intended for tests and replaying persisted decisions; rules should go through Decide.
func NewDecision(lines []string, action Action, resubmit, escalate bool) Decision {
	l := make([]string, len(lines))
	copy(l, lines)
	return Decision{
		lines:    l,
		action:   action,
		resubmit: resubmit,
		escalate: escalate,
	}
}
