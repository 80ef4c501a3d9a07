package attendance

import "time"

// Record is one attendance row. Records are only ever used in aggregate
// (count and latest visit per member), never individually.
type Record struct {
	MemberID  string
	VisitDate time.Time // zero when the date cell was missing or unparsable
}

// HasDate returns true if the visit carries a usable date.
// INVARIANT: VisitDate is not mutated
func (r *Record) HasDate() bool {
	return !r.VisitDate.IsZero()
}
