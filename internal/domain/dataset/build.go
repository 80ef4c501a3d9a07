package dataset

import (
	"time"

	"fitinsight/internal/domain/attendance"
	"fitinsight/internal/domain/member"
	"fitinsight/internal/domain/payment"
	"fitinsight/internal/domain/schema"
)

// CoercionLog counts value-level defaults applied while building records.
// Malformed cells never fail the pipeline, but the defaults stay observable
// for debugging defective uploads.
type CoercionLog struct {
	DefaultedStatuses int // unrecognized or absent status tokens -> Inactive
	DefaultedAmounts  int // malformed or absent amounts -> 0
	UnknownDates      int // unparsable visit/last-visit dates -> unknown
	DroppedRows       int // rows with no identifier, excluded entirely
}

// MemberRecord is a coerced members-sheet row. LastVisit carries a direct
// last-visit timestamp when the sheet had one; it is only consulted when the
// member has no dated attendance rows.
type MemberRecord struct {
	member.CanonicalMember
	LastVisit time.Time
}

// BuildMembers coerces a members table into typed records.
// PRE: cols resolved member_id for the table
// POST: rows without an identifier are dropped and counted; every surviving
// record has a canonical status
func BuildMembers(t Table, cols schema.ColumnMap, log *CoercionLog) []MemberRecord {
	var out []MemberRecord
	for _, row := range t.Rows {
		id := schema.CanonicalID(t.Cell(row, cols.Source(schema.FieldMemberID)))
		if id == "" {
			log.DroppedRows++
			continue
		}

		rec := MemberRecord{CanonicalMember: member.CanonicalMember{
			MemberID:           id,
			PlanType:           t.Cell(row, cols.Source(schema.FieldPlanType)),
			TrainerName:        t.Cell(row, cols.Source(schema.FieldTrainerName)),
			DaysSinceLastVisit: member.UnknownRecency,
		}}

		if cols.Has(schema.FieldStatus) {
			status, ok := member.ParseStatus(t.Cell(row, cols.Source(schema.FieldStatus)))
			rec.Status = status
			if !ok {
				log.DefaultedStatuses++
			}
		} else {
			// Absent status column: synthesize Inactive for every row.
			rec.Status = member.StatusInactive
			log.DefaultedStatuses++
		}

		if cols.Has(schema.FieldLastVisit) {
			raw := t.Cell(row, cols.Source(schema.FieldLastVisit))
			if d, ok := schema.ParseDate(raw); ok {
				rec.LastVisit = d
			} else if raw != "" {
				log.UnknownDates++
			}
		}

		out = append(out, rec)
	}
	return out
}

// BuildAttendance coerces an attendance table into typed records.
// POST: rows without an identifier are dropped; unparsable dates are kept as
// dateless visits (they still count toward visit frequency)
func BuildAttendance(t Table, cols schema.ColumnMap, log *CoercionLog) []attendance.Record {
	var out []attendance.Record
	for _, row := range t.Rows {
		id := schema.CanonicalID(t.Cell(row, cols.Source(schema.FieldMemberID)))
		if id == "" {
			log.DroppedRows++
			continue
		}
		rec := attendance.Record{MemberID: id}
		if cols.Has(schema.FieldVisitDate) {
			raw := t.Cell(row, cols.Source(schema.FieldVisitDate))
			if d, ok := schema.ParseDate(raw); ok {
				rec.VisitDate = d
			} else if raw != "" {
				log.UnknownDates++
			}
		}
		out = append(out, rec)
	}
	return out
}

// BuildPayments coerces a payments table into typed records.
// POST: rows without an identifier are dropped; malformed amounts coerce to 0
// and are counted, never skipped, so the revenue sum stays defined
func BuildPayments(t Table, cols schema.ColumnMap, log *CoercionLog) []payment.Record {
	var out []payment.Record
	for _, row := range t.Rows {
		id := schema.CanonicalID(t.Cell(row, cols.Source(schema.FieldMemberID)))
		if id == "" {
			log.DroppedRows++
			continue
		}
		var amount float64
		if cols.Has(schema.FieldAmount) {
			v, ok := payment.ParseAmount(t.Cell(row, cols.Source(schema.FieldAmount)))
			amount = v
			if !ok {
				log.DefaultedAmounts++
			}
		} else {
			log.DefaultedAmounts++
		}
		out = append(out, payment.Record{MemberID: id, Amount: amount})
	}
	return out
}
