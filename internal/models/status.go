package models

import "fmt"

// Status tracks where a match sits in the candidate's pipeline.
type Status string

const (
	StatusNew         Status = "new"
	StatusViewed      Status = "viewed"
	StatusSaved       Status = "saved"
	StatusApplied     Status = "applied"
	StatusShortlisted Status = "shortlisted"
	StatusInterviewed Status = "interviewed"
	StatusOffered     Status = "offered"
	StatusRejected    Status = "rejected"
)

// validTransitions defines the allowed forward moves for a match.
// Saved matches may still be applied to, and anything past "applied"
// follows the employer's pipeline. Offered and rejected are terminal.
var validTransitions = map[Status][]Status{
	StatusNew:         {StatusViewed, StatusSaved, StatusApplied},
	StatusViewed:      {StatusSaved, StatusApplied},
	StatusSaved:       {StatusApplied, StatusRejected},
	StatusApplied:     {StatusShortlisted, StatusInterviewed, StatusOffered, StatusRejected},
	StatusShortlisted: {StatusInterviewed, StatusOffered, StatusRejected},
	StatusInterviewed: {StatusOffered, StatusRejected},
	StatusOffered:     {},
	StatusRejected:    {},
}

// ParseStatus converts a string to a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if _, ok := validTransitions[status]; !ok {
		return "", fmt.Errorf("invalid match status: %q", s)
	}
	return status, nil
}

// IsTransitionAllowed reports whether a match may move from one status
// to another. Self-transitions are allowed so repeated actions stay
// idempotent.
func IsTransitionAllowed(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func IsTerminal(s Status) bool {
	return len(validTransitions[s]) == 0
}

// AllStatuses returns every known status, useful for validation messages.
func AllStatuses() []Status {
	return []Status{
		StatusNew, StatusViewed, StatusSaved, StatusApplied,
		StatusShortlisted, StatusInterviewed, StatusOffered, StatusRejected,
	}
}
