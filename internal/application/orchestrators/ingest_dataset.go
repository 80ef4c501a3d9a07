package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fitinsight/internal/domain/attendance"
	"fitinsight/internal/domain/dataset"
	"fitinsight/internal/domain/payment"
	"fitinsight/internal/domain/risk"
	"fitinsight/internal/domain/schema"
)

// SessionContext carries the caller's session identity into the pipeline.
// The core performs no action when Authorized is false; gating is the
// caller's responsibility, but the flag travels explicitly rather than
// through ambient state.
type SessionContext struct {
	Token      string
	Email      string
	Authorized bool
}

// ErrNotAuthorized is returned when the session context is not authorized.
var ErrNotAuthorized = errors.New("session is not authorized")

// IngestDatasetInput carries the parsed tables and session for one upload.
// Absent sheets are represented as empty tables, not errors.
type IngestDatasetInput struct {
	Session    SessionContext
	Members    dataset.Table
	Attendance dataset.Table
	Payments   dataset.Table

	// Required lists canonical fields beyond member_id that must resolve in
	// the members table (schema-strict mode). Empty means lenient.
	Required []string
}

// IngestDatasetResult holds aggregate counts from an ingest run.
type IngestDatasetResult struct {
	DatasetID string
	Members   int
	Payments  int
	Coercions dataset.CoercionLog
}

// DatasetStoreForIngest defines the store interface needed by ingest.
type DatasetStoreForIngest interface {
	Put(token string, ds *dataset.Dataset)
}

// IngestDatasetDeps holds dependencies for the ingest orchestrator.
type IngestDatasetDeps struct {
	DatasetStore DatasetStoreForIngest
	Policy       risk.Policy
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteIngestDataset runs the full pipeline for one upload: schema
// resolution, field coercion, entity assembly and risk classification, then
// replaces the session's dataset with the result.
//
// Schema failures on the members table (no identifier, missing required
// field) abort before anything is computed and surface a single actionable
// error. Attendance or payment sheets that are present but unjoinable (no
// identifier column of their own) degrade to empty with a warning — they are
// optional enrichment, never a reason to reject the upload. Value-level
// defects never abort; they are coerced and counted.
//
// PRE: Input tables were decoded by a spreadsheet adapter
// POST: On success the session's previous dataset (if any) is replaced
// INVARIANT: nothing is stored when the session is unauthorized or the
// members schema is defective
func ExecuteIngestDataset(ctx context.Context, input IngestDatasetInput, deps IngestDatasetDeps) (IngestDatasetResult, error) {
	if !input.Session.Authorized {
		return IngestDatasetResult{}, ErrNotAuthorized
	}

	memberCols, err := schema.Resolve(input.Members.Headers, schema.ResolveOptions{Required: input.Required})
	if err != nil {
		return IngestDatasetResult{}, err
	}

	var log dataset.CoercionLog
	members := dataset.BuildMembers(input.Members, memberCols, &log)

	var visits []attendance.Record
	if !input.Attendance.Empty() {
		cols, err := schema.Resolve(input.Attendance.Headers, schema.ResolveOptions{})
		if err != nil {
			slog.Warn("attendance_sheet_unjoinable", "error", err)
		} else {
			visits = dataset.BuildAttendance(input.Attendance, cols, &log)
		}
	}

	var payments []payment.Record
	if !input.Payments.Empty() {
		cols, err := schema.Resolve(input.Payments.Headers, schema.ResolveOptions{})
		if err != nil {
			slog.Warn("payments_sheet_unjoinable", "error", err)
		} else {
			payments = dataset.BuildPayments(input.Payments, cols, &log)
		}
	}

	ds := dataset.Assemble(members, visits, payments, deps.Now())
	ds.ID = deps.GenerateID()
	ds.UploadedAt = deps.Now()
	ds.Members = risk.ClassifyAll(ds.Members, deps.Policy)
	ds.Coercions = log
	ds.Raw = dataset.Raw{Members: input.Members, Attendance: input.Attendance, Payments: input.Payments}

	deps.DatasetStore.Put(input.Session.Token, &ds)

	slog.Info("dataset_ingested",
		"dataset_id", ds.ID,
		"members", len(ds.Members),
		"attendance_rows", len(visits),
		"payments", len(payments),
		"risk_policy", deps.Policy.Name(),
		"defaulted_statuses", log.DefaultedStatuses,
		"defaulted_amounts", log.DefaultedAmounts,
		"unknown_dates", log.UnknownDates,
		"dropped_rows", log.DroppedRows,
	)

	return IngestDatasetResult{
		DatasetID: ds.ID,
		Members:   len(ds.Members),
		Payments:  len(payments),
		Coercions: log,
	}, nil
}
