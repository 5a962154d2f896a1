package reminder

import (
	"strings"
)

// DefaultStatuses are the review statuses that still need reminders.
var DefaultStatuses = []string{
	"open",
	"to do",
	"in review",
	"open nonconformity(s)",
	"open nonconformity(s) and si",
}

// StatusSet matches review statuses case-insensitively.
type StatusSet map[string]struct{}

// NewStatusSet builds a set from the given statuses, falling back to
// DefaultStatuses when none are given.
func NewStatusSet(statuses ...string) StatusSet {
	if len(statuses) == 0 {
		statuses = DefaultStatuses
	}
	set := make(StatusSet, len(statuses))
	for _, s := range statuses {
		if s = normalizeStatus(s); s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}

// Tracks reports whether status is one of the recognized values.
func (s StatusSet) Tracks(status string) bool {
	_, ok := s[normalizeStatus(status)]
	return ok
}

func normalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
