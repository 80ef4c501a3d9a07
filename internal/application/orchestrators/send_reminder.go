package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fitinsight/internal/adapters/email"
)

// ErrMemberNotFound is returned when the reminder target is not in the
// session's dataset.
var ErrMemberNotFound = errors.New("member not found in the current dataset")

// SendReminderInput carries the session and the member to nudge.
type SendReminderInput struct {
	Session  SessionContext
	MemberID string
}

// SendReminderDeps holds dependencies for the reminder stub.
type SendReminderDeps struct {
	DatasetStore DatasetStoreForExport
	Sender       email.Sender
	From         string
}

// ExecuteSendReminder simulates a churn-risk reminder for one member. The
// canonical model carries no contact details, so the summary goes to the
// logged-in operator's own address; delivery is best-effort and carries no
// guarantees.
// PRE: Session is authorized and has a dataset
// POST: One reminder email is queued (or logged, with the noop sender)
func ExecuteSendReminder(ctx context.Context, input SendReminderInput, deps SendReminderDeps) error {
	if !input.Session.Authorized {
		return ErrNotAuthorized
	}
	ds, ok := deps.DatasetStore.Get(input.Session.Token)
	if !ok {
		return ErrNoDataset
	}

	for _, m := range ds.Members {
		if m.MemberID != input.MemberID {
			continue
		}
		subject := fmt.Sprintf("Reminder queued for member %s (%s)", m.MemberID, m.RiskLevel)
		body := fmt.Sprintf(
			"<p>Member %s has %d recorded visits and was last seen %d days ago.</p>"+
				"<p>Risk tier: %s.</p>",
			m.MemberID, m.VisitCount, m.DaysSinceLastVisit, m.RiskLevel,
		)
		_, err := deps.Sender.Send(ctx, email.SendRequest{
			To:      []string{input.Session.Email},
			From:    deps.From,
			Subject: subject,
			HTML:    body,
		})
		if err != nil {
			return fmt.Errorf("send reminder: %w", err)
		}
		slog.Info("reminder_sent", "member_id", m.MemberID, "risk", m.RiskLevel)
		return nil
	}

	return ErrMemberNotFound
}
