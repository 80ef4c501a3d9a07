package dataset

import (
	"time"

	"fitinsight/internal/domain/attendance"
	"fitinsight/internal/domain/member"
	"fitinsight/internal/domain/payment"
)

// Raw keeps the original uploaded tables for the raw-data view. It is never
// consulted by any metric.
type Raw struct {
	Members    Table
	Attendance Table
	Payments   Table
}

// Dataset is the assembled canonical model for one upload. It lives in
// memory for the duration of a session and is replaced wholesale by the next
// upload.
type Dataset struct {
	ID         string
	UploadedAt time.Time
	Members    []member.CanonicalMember
	Payments   []payment.Record
	Coercions  CoercionLog
	Raw        Raw
}

// Assemble merges member records with optional attendance and payment data
// into the canonical member set.
//
// Attendance is a left join: every member survives regardless of how many
// attendance rows match, with VisitCount 0 when none do. Recency prefers the
// latest dated attendance row; a direct last-visit column on the member row
// is the fallback, and members with neither keep the UnknownRecency
// sentinel. Payments are carried through untouched — revenue attribution is
// the aggregator's concern.
//
// PRE: records were built by the Build* coercers
// POST: member ids are unique (first source row wins); visit counts and
// day counts are non-negative
func Assemble(members []MemberRecord, visits []attendance.Record, payments []payment.Record, now time.Time) Dataset {
	visitCounts := make(map[string]int, len(visits))
	lastVisits := make(map[string]time.Time, len(visits))
	for _, v := range visits {
		visitCounts[v.MemberID]++
		if v.HasDate() && v.VisitDate.After(lastVisits[v.MemberID]) {
			lastVisits[v.MemberID] = v.VisitDate
		}
	}

	ds := Dataset{Payments: payments}
	seen := make(map[string]bool, len(members))
	for _, rec := range members {
		if seen[rec.MemberID] {
			continue
		}
		seen[rec.MemberID] = true

		m := rec.CanonicalMember
		m.VisitCount = visitCounts[rec.MemberID]

		last := lastVisits[rec.MemberID]
		if last.IsZero() {
			last = rec.LastVisit
		}
		if last.IsZero() {
			m.DaysSinceLastVisit = member.UnknownRecency
		} else {
			m.DaysSinceLastVisit = daysBetween(last, now)
		}

		ds.Members = append(ds.Members, m)
	}
	return ds
}

// daysBetween returns whole days from visit to now, floored, clamped at 0
// for visits stamped in the future.
func daysBetween(visit, now time.Time) int {
	days := int(now.Sub(visit).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
