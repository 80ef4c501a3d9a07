package orchestrators

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"

	"fitinsight/internal/domain/dataset"
)

// ErrNoDataset is returned when the session has not uploaded a dataset yet.
var ErrNoDataset = errors.New("no dataset uploaded for this session")

// exportHeader is the fixed CSV header row for member exports.
var exportHeader = []string{
	"member_id", "status", "plan_type", "trainer_name",
	"visit_count", "days_since_last_visit", "risk_level",
}

// ExportMembersInput carries the session and an optional risk tier filter
// (a label such as "High Risk"; empty exports every member).
type ExportMembersInput struct {
	Session   SessionContext
	RiskLevel string
}

// DatasetStoreForExport defines the store interface needed by export.
type DatasetStoreForExport interface {
	Get(token string) (*dataset.Dataset, bool)
}

// ExportMembersDeps holds dependencies for the export orchestrator.
type ExportMembersDeps struct {
	DatasetStore DatasetStoreForExport
}

// ExecuteExportMembers writes the canonical member set as CSV: a header row,
// then one line per member, optionally filtered to a single risk tier.
// PRE: w accepts the full export
// POST: Returns the number of member lines written (excluding the header)
func ExecuteExportMembers(ctx context.Context, input ExportMembersInput, deps ExportMembersDeps, w io.Writer) (int, error) {
	if !input.Session.Authorized {
		return 0, ErrNotAuthorized
	}
	ds, ok := deps.DatasetStore.Get(input.Session.Token)
	if !ok {
		return 0, ErrNoDataset
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, err
	}

	written := 0
	for _, m := range ds.Members {
		if input.RiskLevel != "" && m.RiskLevel != input.RiskLevel {
			continue
		}
		record := []string{
			m.MemberID,
			m.Status,
			m.PlanType,
			m.TrainerName,
			strconv.Itoa(m.VisitCount),
			strconv.Itoa(m.DaysSinceLastVisit),
			m.RiskLevel,
		}
		if err := cw.Write(record); err != nil {
			return written, err
		}
		written++
	}

	cw.Flush()
	return written, cw.Error()
}
