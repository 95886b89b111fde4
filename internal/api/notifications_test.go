package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campusfound/campusfound/internal/auth"
	"github.com/campusfound/campusfound/internal/db"
	"github.com/campusfound/campusfound/internal/model"
	"github.com/campusfound/campusfound/internal/notify"
	"github.com/campusfound/campusfound/internal/store"
)

// abandoningMailer cancels the request context while sending, as when the
// client disconnects mid-send.
type abandoningMailer struct {
	cancel context.CancelFunc
}

func (m *abandoningMailer) Send(ctx context.Context, _ *notify.Message) error {
	m.cancel()
	return ctx.Err()
}

func TestTestEmailRecordedAfterClientGone(t *testing.T) {
	database := db.NewTestDB(t)
	user, err := store.CreateUser(context.Background(), database, &model.User{
		Name:         "Carol",
		Email:        "carol@campus.edu",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dispatcher, err := notify.NewDispatcher(notify.Config{}, &abandoningMailer{cancel: cancel})
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	h := &NotificationsHandler{DB: database, Dispatcher: dispatcher}

	ctx = context.WithValue(ctx, claimsKey, &auth.Claims{UserID: user.ID, Email: user.Email, Role: user.Role})
	req := httptest.NewRequest(http.MethodPost, "/api/notifications/test", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.Test(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	entries, err := store.ListNotifications(context.Background(), database, 0)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 log row, got %d", len(entries))
	}
	if entries[0].Kind != model.NotificationTest || entries[0].Status != model.DeliveryFailed {
		t.Errorf("log row = %+v, want failed test entry", entries[0])
	}
}
