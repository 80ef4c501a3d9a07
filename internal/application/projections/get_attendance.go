package projections

import "fitinsight/internal/domain/dataset"

// MemberAttendanceRow is one line of the attendance insights view.
type MemberAttendanceRow struct {
	MemberID           string `json:"member_id"`
	TrainerName        string `json:"trainer_name"`
	VisitCount         int    `json:"visit_count"`
	DaysSinceLastVisit int    `json:"days_since_last_visit"`
}

// QueryGetAttendance returns per-member visit figures in canonical order.
func QueryGetAttendance(ds *dataset.Dataset) []MemberAttendanceRow {
	rows := make([]MemberAttendanceRow, 0, len(ds.Members))
	for _, m := range ds.Members {
		rows = append(rows, MemberAttendanceRow{
			MemberID:           m.MemberID,
			TrainerName:        m.TrainerName,
			VisitCount:         m.VisitCount,
			DaysSinceLastVisit: m.DaysSinceLastVisit,
		})
	}
	return rows
}
