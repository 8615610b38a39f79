package models

import "strings"

// Status is the lead-status label shown on cards and in the notes view.
type Status string

const (
	StatusNew          Status = "New"
	StatusNotContacted Status = "Not Contacted"
	StatusPending      Status = "Pending"
	StatusCaptured     Status = "Captured"
	StatusContacted    Status = "Contacted"
	StatusSuccessful   Status = "Successful"
	StatusRejected     Status = "Rejected"
)

// CardStatuses are the values offered by the status dropdown on a listing card.
var CardStatuses = []Status{StatusNotContacted, StatusPending, StatusCaptured, StatusRejected}

// ReviewCycle is the order the notes view steps through when the status
// button is pressed.
var ReviewCycle = []Status{StatusNotContacted, StatusContacted, StatusSuccessful, StatusRejected}

// InitialStatus is assigned to a lead created by saving a note.
const InitialStatus = StatusNew

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	if s == StatusNew {
		return true
	}
	return s.In(CardStatuses) || s.In(ReviewCycle)
}

// In reports whether s is one of set.
func (s Status) In(set []Status) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Normalize maps statuses outside the review cycle onto its first value.
func (s Status) Normalize() Status {
	if s.In(ReviewCycle) {
		return s
	}
	return ReviewCycle[0]
}

// NextStatus returns the status after s in ReviewCycle, wrapping after the last.
func NextStatus(s Status) Status {
	cur := s.Normalize()
	for i, v := range ReviewCycle {
		if v == cur {
			return ReviewCycle[(i+1)%len(ReviewCycle)]
		}
	}
	return ReviewCycle[0]
}

// ParseStatus matches a user-supplied label case-insensitively.
func ParseStatus(label string) (Status, bool) {
	label = strings.TrimSpace(label)
	all := []Status{StatusNew}
	all = append(all, CardStatuses...)
	all = append(all, ReviewCycle...)
	for _, s := range all {
		if strings.EqualFold(string(s), label) {
			return s, true
		}
	}
	return "", false
}
