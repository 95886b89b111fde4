package model

import "time"

// Claim is a user's assertion that an item belongs to them.
type Claim struct {
	ID                  int64      `json:"id"`
	ItemID              int64      `json:"itemId"`
	ClaimantID          int64      `json:"claimantId"`
	Message             string     `json:"message"`
	VerificationDetails string     `json:"verificationDetails,omitempty"`
	Status              string     `json:"status"`
	CreatedAt           time.Time  `json:"createdAt"`
	ResolvedAt          *time.Time `json:"resolvedAt,omitempty"`

	// Joined fields (not always populated).
	Item     *Item          `json:"item,omitempty"`
	Claimant *PublicProfile `json:"claimant,omitempty"`
}

// Claim statuses.
const (
	ClaimStatusPending  = "pending"
	ClaimStatusApproved = "approved"
	ClaimStatusRejected = "rejected"
)

// IsTerminal reports whether a claim in this status can no longer change.
func IsTerminal(status string) bool {
	return status == ClaimStatusApproved || status == ClaimStatusRejected
}

// Notification is one recorded attempt to deliver an email notice.
type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Recipient string    `json:"recipient"`
	ItemID    *int64    `json:"itemId,omitempty"`
	ClaimID   *int64    `json:"claimId,omitempty"`
	SenderID  *int64    `json:"senderId,omitempty"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notification kinds.
const (
	NotificationContact = "contact"
	NotificationClaim   = "claim"
	NotificationTest    = "test"
)

// Notification delivery outcomes.
const (
	DeliverySent    = "sent"
	DeliveryFailed  = "failed"
	DeliverySkipped = "skipped"
)
