// Package workflow implements the claim lifecycle and owner contact flow.
//
// Every operation receives the acting user explicitly as a Caller. Records
// are committed first; owner notification is a separate step afterwards
// whose failure is logged and recorded but never returned to the caller.
package workflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campusfound/campusfound/internal/model"
	"github.com/campusfound/campusfound/internal/notify"
	"github.com/campusfound/campusfound/internal/store"
)

// Caller is the authenticated user performing an operation.
type Caller struct {
	ID   int64
	Role string
}

// IsAdmin reports whether the caller has administrative rights.
func (c Caller) IsAdmin() bool {
	return model.RoleAtLeast(c.Role, model.RoleAdmin)
}

// Notifier delivers owner notices.
type Notifier interface {
	SendContactNotice(ctx context.Context, n notify.Notice) error
	SendClaimNotice(ctx context.Context, n notify.Notice) error
}

// Service runs workflow operations against the database.
type Service struct {
	DB       *sql.DB
	Notifier Notifier
}

// New creates a service.
func New(db *sql.DB, notifier Notifier) *Service {
	return &Service{DB: db, Notifier: notifier}
}

func internal(op string, err error) error {
	return model.NewError(model.KindInternal, "server error", fmt.Errorf("%s: %w", op, err))
}

// loadCaller resolves the caller's account. A token for a deleted account
// is treated as unauthenticated.
func (s *Service) loadCaller(ctx context.Context, caller Caller) (*model.User, error) {
	u, err := store.GetUser(ctx, s.DB, caller.ID)
	if err != nil {
		return nil, internal("loading caller", err)
	}
	if u == nil {
		return nil, model.NewError(model.KindUnauthorized, "user not found", nil)
	}
	return u, nil
}

// canManage reports whether caller may act on claims against item.
func canManage(caller Caller, item *model.Item) bool {
	if caller.IsAdmin() {
		return true
	}
	return item != nil && item.OwnerID == caller.ID
}

// delivery is one post-commit notification attempt.
type delivery struct {
	kind    string
	owner   *model.User
	sender  *model.User
	item    *model.Item
	claimID *int64
	message string
}

var errNoRecipient = errors.New("owner has no email address")

// deliver makes exactly one notification attempt and records its outcome in
// the notification log. The returned error is informational: the triggering
// record is already committed.
func (s *Service) deliver(ctx context.Context, d delivery) error {
	entry := model.Notification{
		Kind:     d.kind,
		ItemID:   &d.item.ID,
		ClaimID:  d.claimID,
		SenderID: &d.sender.ID,
	}

	var err error
	switch {
	case d.owner == nil || d.owner.Email == "":
		err = errNoRecipient
	case s.Notifier == nil:
		entry.Recipient = d.owner.Email
		err = notify.ErrNotConfigured
	default:
		entry.Recipient = d.owner.Email
		notice := notify.Notice{
			Owner:   d.owner.Contact(),
			Sender:  d.sender.Contact(),
			Item:    *d.item,
			Message: d.message,
		}
		if d.kind == model.NotificationClaim {
			err = s.Notifier.SendClaimNotice(ctx, notice)
		} else {
			err = s.Notifier.SendContactNotice(ctx, notice)
		}
	}

	switch {
	case err == nil:
		entry.Status = model.DeliverySent
		slog.Info("notification sent", "kind", d.kind, "item_id", d.item.ID, "recipient", entry.Recipient)
	case errors.Is(err, errNoRecipient), errors.Is(err, notify.ErrNotConfigured):
		entry.Status = model.DeliverySkipped
		entry.Error = err.Error()
		slog.Warn("notification skipped", "kind", d.kind, "item_id", d.item.ID, "reason", err)
	default:
		entry.Status = model.DeliveryFailed
		entry.Error = err.Error()
		slog.Error("notification failed", "kind", d.kind, "item_id", d.item.ID, "recipient", entry.Recipient, "error", err)
	}

	// The log row is written even when the request was cancelled mid-send.
	if _, recErr := store.RecordNotification(context.WithoutCancel(ctx), s.DB, entry); recErr != nil {
		slog.Error("failed to record notification", "kind", d.kind, "item_id", d.item.ID, "error", recErr)
	}
	return err
}
