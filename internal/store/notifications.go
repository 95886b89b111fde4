package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/campusfound/campusfound/internal/model"
)

// RecordNotification appends a delivery attempt to the notification log and
// returns it with its generated ID.
func RecordNotification(ctx context.Context, db *sql.DB, n model.Notification) (*model.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO notifications (id, kind, recipient, item_id, claim_id, sender_id, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Kind, n.Recipient, n.ItemID, n.ClaimID, n.SenderID, n.Status, nullString(n.Error),
	)
	if err != nil {
		return nil, fmt.Errorf("recording notification: %w", err)
	}
	return &n, nil
}

// ListNotifications returns logged delivery attempts, newest first,
// optionally restricted to one item.
func ListNotifications(ctx context.Context, db *sql.DB, itemID int64) ([]model.Notification, error) {
	query := `SELECT id, kind, recipient, item_id, claim_id, sender_id, status, error, created_at
	          FROM notifications`
	var args []any
	if itemID > 0 {
		query += ` WHERE item_id = ?`
		args = append(args, itemID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		var itemRef, claimRef, senderRef sql.NullInt64
		var errText sql.NullString
		if err := rows.Scan(&n.ID, &n.Kind, &n.Recipient, &itemRef, &claimRef, &senderRef,
			&n.Status, &errText, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		n.ItemID = nullInt(itemRef)
		n.ClaimID = nullInt(claimRef)
		n.SenderID = nullInt(senderRef)
		n.Error = errText.String
		out = append(out, n)
	}
	return out, rows.Err()
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}
