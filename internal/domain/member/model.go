package member

import (
	"errors"
	"strings"
)

// Canonical status values. Every raw status encoding collapses to one of
// these two after coercion.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// UnknownRecency is the sentinel day-count meaning "no visit ever observed".
const UnknownRecency = 999

// statusTokens is the exhaustive lookup from lowercased raw encodings to
// canonical status. Anything not listed here coerces to Inactive.
var statusTokens = map[string]string{
	"active":   StatusActive,
	"yes":      StatusActive,
	"1":        StatusActive,
	"true":     StatusActive,
	"inactive": StatusInactive,
	"no":       StatusInactive,
	"0":        StatusInactive,
	"false":    StatusInactive,
	"churned":  StatusInactive,
}

// ParseStatus coerces a raw status cell to a canonical value. The second
// return reports whether the token was recognized; unrecognized tokens
// (including empty cells) default to Inactive.
func ParseStatus(raw string) (string, bool) {
	if status, ok := statusTokens[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return status, true
	}
	return StatusInactive, false
}

// Domain errors
var (
	ErrEmptyMemberID   = errors.New("member_id cannot be empty")
	ErrInvalidStatus   = errors.New("status must be 'Active' or 'Inactive'")
	ErrNegativeVisits  = errors.New("visit_count cannot be negative")
	ErrNegativeRecency = errors.New("days_since_last_visit cannot be negative")
)

// CanonicalMember is one normalized member record. VisitCount,
// DaysSinceLastVisit and RiskLevel are derived during assembly and
// classification, never read from the source.
type CanonicalMember struct {
	MemberID           string
	Status             string
	PlanType           string
	TrainerName        string
	VisitCount         int
	DaysSinceLastVisit int
	RiskLevel          string
}

// Validate checks if the CanonicalMember has valid data.
// PRE: CanonicalMember struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: MemberID non-empty, Status canonical, counters non-negative
func (m *CanonicalMember) Validate() error {
	if m.MemberID == "" {
		return ErrEmptyMemberID
	}
	if m.Status != StatusActive && m.Status != StatusInactive {
		return ErrInvalidStatus
	}
	if m.VisitCount < 0 {
		return ErrNegativeVisits
	}
	if m.DaysSinceLastVisit < 0 {
		return ErrNegativeRecency
	}
	return nil
}

// IsActive returns true if the member is currently active.
// INVARIANT: Status field is not mutated
func (m *CanonicalMember) IsActive() bool {
	return m.Status == StatusActive
}
