// Package domain holds the lead lifecycle model.
package domain

import "fmt"

// Status is the lifecycle state of a lead.
type Status string

const (
	// StatusNew is the initial state after a lead is captured.
	StatusNew Status = "new"
	// StatusScored means scoring results have been applied.
	StatusScored Status = "scored"
	// StatusOutreachSent means an outreach email was recorded for the lead.
	StatusOutreachSent Status = "outreach_sent"
	// StatusResponded means the lead replied to outreach.
	StatusResponded Status = "responded"
	// StatusConverted is a terminal success state.
	StatusConverted Status = "converted"
	// StatusLost is a terminal failure state, reachable from any active state.
	StatusLost Status = "lost"
)

// transitions maps each state to the states it may move to.
// Self-transitions on scored and outreach_sent absorb repeated workflow
// callbacks for the same lead.
var transitions = map[Status][]Status{
	StatusNew:          {StatusScored, StatusLost},
	StatusScored:       {StatusScored, StatusOutreachSent, StatusLost},
	StatusOutreachSent: {StatusOutreachSent, StatusResponded, StatusLost},
	StatusResponded:    {StatusConverted, StatusLost},
	StatusConverted:    {},
	StatusLost:         {},
}

// Parse validates a raw status string.
func Parse(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := transitions[s]; !ok {
		return "", fmt.Errorf("unknown lead status %q", raw)
	}
	return s, nil
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether a lead may move from s to target.
func (s Status) CanTransition(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// String returns the status as a plain string.
func (s Status) String() string {
	return string(s)
}
