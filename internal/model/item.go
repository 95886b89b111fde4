package model

import (
	"fmt"
	"time"
)

// Item is a lost or found posting.
type Item struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location"`
	Image       string    `json:"image,omitempty"`
	ImageMime   string    `json:"-"`
	OwnerID     int64     `json:"ownerId"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Joined fields (not always populated).
	OwnerName string `json:"ownerName,omitempty"`
}

// Item types.
const (
	ItemTypeLost  = "lost"
	ItemTypeFound = "found"
)

// Item statuses.
const (
	ItemStatusActive   = "active"
	ItemStatusClaimed  = "claimed"
	ItemStatusResolved = "resolved"
)

// ValidItemType reports whether t is a known item type.
func ValidItemType(t string) bool {
	return t == ItemTypeLost || t == ItemTypeFound
}

// ValidItemStatus reports whether s is a known item status.
func ValidItemStatus(s string) bool {
	switch s {
	case ItemStatusActive, ItemStatusClaimed, ItemStatusResolved:
		return true
	}
	return false
}

// SetImageRef fills Image from ImageMime.
func (i *Item) SetImageRef() {
	i.Image = ""
	if i.ImageMime != "" {
		i.Image = imageURL("items", i.ID)
	}
}

func imageURL(collection string, id int64) string {
	return fmt.Sprintf("/api/%s/%d/image", collection, id)
}
