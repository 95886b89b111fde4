package api

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/campusfound/campusfound/internal/model"
	"github.com/campusfound/campusfound/internal/notify"
	"github.com/campusfound/campusfound/internal/store"
)

// NotificationsHandler exposes the mail test and the notification log.
type NotificationsHandler struct {
	DB         *sql.DB
	Dispatcher *notify.Dispatcher
}

// Test handles POST /api/notifications/test. It mails the caller.
func (h *NotificationsHandler) Test(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)
	user, err := store.GetUser(r.Context(), h.DB, caller.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "user not found")
		return
	}

	err = h.Dispatcher.SendTest(r.Context(), user.Email)

	entry := model.Notification{Kind: model.NotificationTest, Recipient: user.Email, SenderID: &user.ID}
	switch {
	case err == nil:
		entry.Status = model.DeliverySent
	case errors.Is(err, notify.ErrNotConfigured):
		entry.Status, entry.Error = model.DeliverySkipped, err.Error()
	default:
		entry.Status, entry.Error = model.DeliveryFailed, err.Error()
	}
	if _, recErr := store.RecordNotification(context.WithoutCancel(r.Context()), h.DB, entry); recErr != nil {
		slog.Error("failed to record notification", "kind", entry.Kind, "error", recErr)
	}

	if errors.Is(err, notify.ErrNotConfigured) {
		jsonError(w, http.StatusServiceUnavailable, "Email credentials not configured")
		return
	}
	if err != nil {
		slog.Error("test email failed", "recipient", user.Email, "error", err)
		jsonError(w, http.StatusServiceUnavailable, "Failed to send test email")
		return
	}

	jsonSuccess(w, http.StatusOK, map[string]any{
		"message": "Test email sent successfully to " + user.Email + ". Please check your inbox (and spam folder).",
	})
}

// List handles GET /api/notifications.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	var itemID int64
	if v := r.URL.Query().Get("item_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			jsonError(w, http.StatusBadRequest, "invalid item_id")
			return
		}
		itemID = id
	}

	entries, err := store.ListNotifications(r.Context(), h.DB, itemID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []model.Notification{}
	}
	jsonSuccess(w, http.StatusOK, map[string]any{"notifications": entries})
}
