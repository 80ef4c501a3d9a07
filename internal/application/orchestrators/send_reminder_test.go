package orchestrators_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fitinsight/internal/adapters/email"
	"fitinsight/internal/application/orchestrators"
)

// recordingSender captures send requests for assertions.
type recordingSender struct {
	sent []email.SendRequest
}

func (s *recordingSender) Send(ctx context.Context, req email.SendRequest) (email.SendResult, error) {
	s.sent = append(s.sent, req)
	return email.SendResult{MessageID: "msg-1"}, nil
}

// TestExecuteSendReminder tests that a reminder for a known member goes to
// the operator's own address.
func TestExecuteSendReminder(t *testing.T) {
	store := newFakeDatasetStore()
	store.Put("tok-1", exportFixture())
	sender := &recordingSender{}

	err := orchestrators.ExecuteSendReminder(context.Background(),
		orchestrators.SendReminderInput{Session: authorizedSession(), MemberID: "2"},
		orchestrators.SendReminderDeps{DatasetStore: store, Sender: sender, From: "noreply@fitinsight.local"},
	)
	if err != nil {
		t.Fatalf("ExecuteSendReminder() error = %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent = %d messages, want 1", len(sender.sent))
	}
	req := sender.sent[0]
	if len(req.To) != 1 || req.To[0] != "ops@example.com" {
		t.Errorf("To = %v, want the operator's address", req.To)
	}
	if !strings.Contains(req.Subject, "2") {
		t.Errorf("Subject = %q, want member id mentioned", req.Subject)
	}
	if !strings.Contains(req.HTML, "High Risk") {
		t.Errorf("HTML = %q, want risk tier mentioned", req.HTML)
	}
}

// TestExecuteSendReminderUnknownMember tests the not-found path.
func TestExecuteSendReminderUnknownMember(t *testing.T) {
	store := newFakeDatasetStore()
	store.Put("tok-1", exportFixture())
	sender := &recordingSender{}

	err := orchestrators.ExecuteSendReminder(context.Background(),
		orchestrators.SendReminderInput{Session: authorizedSession(), MemberID: "99"},
		orchestrators.SendReminderDeps{DatasetStore: store, Sender: sender, From: "noreply@fitinsight.local"},
	)
	if !errors.Is(err, orchestrators.ErrMemberNotFound) {
		t.Fatalf("error = %v, want ErrMemberNotFound", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("sent = %d messages, want 0", len(sender.sent))
	}
}

// TestExecuteSendReminderNoDataset tests the no-upload path.
func TestExecuteSendReminderNoDataset(t *testing.T) {
	err := orchestrators.ExecuteSendReminder(context.Background(),
		orchestrators.SendReminderInput{Session: authorizedSession(), MemberID: "1"},
		orchestrators.SendReminderDeps{DatasetStore: newFakeDatasetStore(), Sender: &recordingSender{}, From: "noreply@fitinsight.local"},
	)
	if !errors.Is(err, orchestrators.ErrNoDataset) {
		t.Fatalf("error = %v, want ErrNoDataset", err)
	}
}
