package escalation

import "fmt"

// Status is an escalation's position in the resolution workflow.
type Status string

const (
	// StatusPending awaits a human decision.
	StatusPending Status = "pending"

	// StatusResolved carries an accepted resolution. Re-resolving updates
	// the resolution text.
	StatusResolved Status = "resolved"

	// StatusDismissed was closed without a resolution.
	StatusDismissed Status = "dismissed"
)

// transitions is the complete set of legal status changes. Neither resolved
// nor dismissed is truly terminal: reopen is always legal for an unfolded
// escalation, matching real support workflows. The resolved self-loop is the
// resolution-text update path.
var transitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusResolved:  true,
		StatusDismissed: true,
	},
	StatusResolved: {
		StatusResolved: true,
		StatusPending:  true,
	},
	StatusDismissed: {
		StatusPending: true,
	},
}

// ParseStatus validates a stored or caller-supplied status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	switch s {
	case StatusPending, StatusResolved, StatusDismissed:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

// ensureTransition is the single chokepoint every status change goes
// through. Call sites never compare status strings themselves.
func ensureTransition(from, to Status) error {
	if transitions[from][to] {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
