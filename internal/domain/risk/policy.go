package risk

import (
	"fmt"

	"fitinsight/internal/domain/member"
)

// Risk tier labels.
const (
	High   = "High Risk"
	Medium = "Medium Risk"
	Low    = "Low Risk"
)

// Policy names accepted by FromName.
const (
	PolicyVisitCount = "visit_count"
	PolicyRecency    = "recency"
)

// DefaultRecencyDays is the recency-policy cutoff: members unseen for more
// than this many days are High Risk.
const DefaultRecencyDays = 7

// Policy derives a churn-risk tier from a member's derived attendance
// figures. Policies are pure: the same member always yields the same tier.
type Policy interface {
	Name() string
	Level(m member.CanonicalMember) string
}

// VisitCountPolicy buckets members by total visit count into three tiers.
type VisitCountPolicy struct{}

// Name returns the configuration name of the policy.
func (VisitCountPolicy) Name() string { return PolicyVisitCount }

// Level classifies by visit frequency.
// POST: <=2 visits High, 3-5 Medium, >5 Low
func (VisitCountPolicy) Level(m member.CanonicalMember) string {
	switch {
	case m.VisitCount <= 2:
		return High
	case m.VisitCount <= 5:
		return Medium
	default:
		return Low
	}
}

// RecencyPolicy buckets members by days since their last visit into two
// tiers; it has no Medium tier. The UnknownRecency sentinel (999) always
// lands in High.
type RecencyPolicy struct {
	Days int // cutoff in days; 0 means DefaultRecencyDays
}

// Name returns the configuration name of the policy.
func (RecencyPolicy) Name() string { return PolicyRecency }

// Level classifies by visit recency.
// POST: more than Days since last visit High, otherwise Low
func (p RecencyPolicy) Level(m member.CanonicalMember) string {
	days := p.Days
	if days <= 0 {
		days = DefaultRecencyDays
	}
	if m.DaysSinceLastVisit > days {
		return High
	}
	return Low
}

// FromName returns the policy for a configuration name.
// PRE: name is a policy name or empty
// POST: empty name yields VisitCountPolicy; unknown names error
func FromName(name string) (Policy, error) {
	switch name {
	case "", PolicyVisitCount:
		return VisitCountPolicy{}, nil
	case PolicyRecency:
		return RecencyPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown risk policy %q (valid: %s, %s)", name, PolicyVisitCount, PolicyRecency)
	}
}

// ClassifyAll returns a copy of the member set with RiskLevel derived fresh
// from the policy. Input risk labels are ignored and overwritten; the input
// slice is never mutated.
func ClassifyAll(members []member.CanonicalMember, p Policy) []member.CanonicalMember {
	out := make([]member.CanonicalMember, len(members))
	for i, m := range members {
		m.RiskLevel = p.Level(m)
		out[i] = m
	}
	return out
}
