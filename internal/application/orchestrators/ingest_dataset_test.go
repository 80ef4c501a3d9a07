package orchestrators_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"fitinsight/internal/application/orchestrators"
	"fitinsight/internal/domain/dataset"
	"fitinsight/internal/domain/member"
	"fitinsight/internal/domain/risk"
	"fitinsight/internal/domain/schema"
)

// fakeDatasetStore records Put and serves Get for the orchestrator tests.
type fakeDatasetStore struct {
	datasets map[string]*dataset.Dataset
}

func newFakeDatasetStore() *fakeDatasetStore {
	return &fakeDatasetStore{datasets: make(map[string]*dataset.Dataset)}
}

func (s *fakeDatasetStore) Put(token string, ds *dataset.Dataset) {
	s.datasets[token] = ds
}

func (s *fakeDatasetStore) Get(token string) (*dataset.Dataset, bool) {
	ds, ok := s.datasets[token]
	return ds, ok
}

func testDeps(store *fakeDatasetStore) orchestrators.IngestDatasetDeps {
	return orchestrators.IngestDatasetDeps{
		DatasetStore: store,
		Policy:       risk.VisitCountPolicy{},
		GenerateID:   func() string { return "ds-test" },
		Now:          func() time.Time { return time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC) },
	}
}

func authorizedSession() orchestrators.SessionContext {
	return orchestrators.SessionContext{Token: "tok-1", Email: "ops@example.com", Authorized: true}
}

// TestExecuteIngestDatasetUnauthorized tests that nothing is stored for an
// unauthorized session.
func TestExecuteIngestDatasetUnauthorized(t *testing.T) {
	store := newFakeDatasetStore()
	input := orchestrators.IngestDatasetInput{
		Session: orchestrators.SessionContext{Token: "tok-1"},
		Members: dataset.NewTable([]string{"member_id"}, [][]string{{"1"}}),
	}

	_, err := orchestrators.ExecuteIngestDataset(context.Background(), input, testDeps(store))
	if !errors.Is(err, orchestrators.ErrNotAuthorized) {
		t.Fatalf("error = %v, want ErrNotAuthorized", err)
	}
	if len(store.datasets) != 0 {
		t.Error("dataset was stored despite unauthorized session")
	}
}

// TestExecuteIngestDataset tests the full pipeline: aliased headers resolve,
// values coerce, attendance joins, and the stored dataset is classified.
func TestExecuteIngestDataset(t *testing.T) {
	store := newFakeDatasetStore()
	input := orchestrators.IngestDatasetInput{
		Session: authorizedSession(),
		Members: dataset.NewTable(
			[]string{"Customer ID", "Churn", "Plan", "Coach"},
			[][]string{
				{"1", "yes", "gold", "Dana"},
				{"2", "churned", "basic", "Dana"},
				{"", "yes", "basic", "Lee"}, // dropped: no id
			},
		),
		Attendance: dataset.NewTable(
			[]string{"id", "date"},
			[][]string{
				{"1", "2024-03-18"},
				{"1", "2024-03-10"},
				{"1", "2024-03-01"},
				{"2", "not-a-date"},
			},
		),
		Payments: dataset.NewTable(
			[]string{"user_id", "revenue"},
			[][]string{
				{"1", "100"},
				{"2", "oops"},
			},
		),
	}

	result, err := orchestrators.ExecuteIngestDataset(context.Background(), input, testDeps(store))
	if err != nil {
		t.Fatalf("ExecuteIngestDataset() error = %v", err)
	}

	if result.DatasetID != "ds-test" {
		t.Errorf("DatasetID = %q, want ds-test", result.DatasetID)
	}
	if result.Members != 2 {
		t.Errorf("Members = %d, want 2", result.Members)
	}
	if result.Coercions.DroppedRows != 1 {
		t.Errorf("DroppedRows = %d, want 1", result.Coercions.DroppedRows)
	}
	if result.Coercions.DefaultedAmounts != 1 {
		t.Errorf("DefaultedAmounts = %d, want 1", result.Coercions.DefaultedAmounts)
	}
	if result.Coercions.UnknownDates != 1 {
		t.Errorf("UnknownDates = %d, want 1", result.Coercions.UnknownDates)
	}

	ds, ok := store.Get("tok-1")
	if !ok {
		t.Fatal("dataset was not stored for the session token")
	}

	byID := make(map[string]member.CanonicalMember)
	for _, m := range ds.Members {
		byID[m.MemberID] = m
	}

	m1 := byID["1"]
	if m1.Status != member.StatusActive || m1.PlanType != "gold" || m1.TrainerName != "Dana" {
		t.Errorf("member 1 = %+v", m1)
	}
	if m1.VisitCount != 3 {
		t.Errorf("member 1 visits = %d, want 3", m1.VisitCount)
	}
	if m1.DaysSinceLastVisit != 2 {
		t.Errorf("member 1 recency = %d, want 2", m1.DaysSinceLastVisit)
	}
	if m1.RiskLevel != risk.Medium {
		t.Errorf("member 1 risk = %q, want %q", m1.RiskLevel, risk.Medium)
	}

	m2 := byID["2"]
	if m2.Status != member.StatusInactive {
		t.Errorf("member 2 status = %q, want Inactive", m2.Status)
	}
	// One dateless visit: it counts, but recency stays unknown.
	if m2.VisitCount != 1 {
		t.Errorf("member 2 visits = %d, want 1", m2.VisitCount)
	}
	if m2.DaysSinceLastVisit != member.UnknownRecency {
		t.Errorf("member 2 recency = %d, want sentinel", m2.DaysSinceLastVisit)
	}
	if m2.RiskLevel != risk.High {
		t.Errorf("member 2 risk = %q, want %q", m2.RiskLevel, risk.High)
	}
}

// TestExecuteIngestDatasetMissingIdentifier tests that a members table with
// no resolvable identifier aborts with a MissingColumnError and stores
// nothing.
func TestExecuteIngestDatasetMissingIdentifier(t *testing.T) {
	store := newFakeDatasetStore()
	input := orchestrators.IngestDatasetInput{
		Session: authorizedSession(),
		Members: dataset.NewTable(
			[]string{"name", "plan"},
			[][]string{{"Ana", "gold"}},
		),
	}

	_, err := orchestrators.ExecuteIngestDataset(context.Background(), input, testDeps(store))
	var missing *schema.MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want *MissingColumnError", err)
	}
	if missing.Field != schema.FieldMemberID {
		t.Errorf("missing field = %q, want member_id", missing.Field)
	}
	if len(store.datasets) != 0 {
		t.Error("dataset was stored despite schema failure")
	}
}

// TestExecuteIngestDatasetUnjoinableAttendance tests that an attendance
// sheet without an identifier column degrades to empty instead of failing
// the upload.
func TestExecuteIngestDatasetUnjoinableAttendance(t *testing.T) {
	store := newFakeDatasetStore()
	input := orchestrators.IngestDatasetInput{
		Session: authorizedSession(),
		Members: dataset.NewTable(
			[]string{"member_id", "status"},
			[][]string{{"1", "Active"}},
		),
		Attendance: dataset.NewTable(
			[]string{"date"},
			[][]string{{"2024-03-18"}},
		),
	}

	result, err := orchestrators.ExecuteIngestDataset(context.Background(), input, testDeps(store))
	if err != nil {
		t.Fatalf("ExecuteIngestDataset() error = %v", err)
	}
	if result.Members != 1 {
		t.Fatalf("Members = %d, want 1", result.Members)
	}

	ds, _ := store.Get("tok-1")
	if ds.Members[0].VisitCount != 0 {
		t.Errorf("visits = %d, want 0 (unjoinable sheet ignored)", ds.Members[0].VisitCount)
	}
	if ds.Members[0].DaysSinceLastVisit != member.UnknownRecency {
		t.Errorf("recency = %d, want sentinel", ds.Members[0].DaysSinceLastVisit)
	}
}

// TestExecuteIngestDatasetReplacesPrevious tests that a second upload for
// the same session replaces the first dataset.
func TestExecuteIngestDatasetReplacesPrevious(t *testing.T) {
	store := newFakeDatasetStore()
	deps := testDeps(store)

	first := orchestrators.IngestDatasetInput{
		Session: authorizedSession(),
		Members: dataset.NewTable([]string{"member_id"}, [][]string{{"1"}, {"2"}}),
	}
	if _, err := orchestrators.ExecuteIngestDataset(context.Background(), first, deps); err != nil {
		t.Fatalf("first upload error = %v", err)
	}

	second := orchestrators.IngestDatasetInput{
		Session: authorizedSession(),
		Members: dataset.NewTable([]string{"member_id"}, [][]string{{"9"}}),
	}
	if _, err := orchestrators.ExecuteIngestDataset(context.Background(), second, deps); err != nil {
		t.Fatalf("second upload error = %v", err)
	}

	ds, _ := store.Get("tok-1")
	if len(ds.Members) != 1 || ds.Members[0].MemberID != "9" {
		t.Errorf("stored members = %+v, want only member 9", ds.Members)
	}
}
