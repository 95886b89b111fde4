package workflow

import (
	"context"
	"strings"

	"github.com/campusfound/campusfound/internal/model"
	"github.com/campusfound/campusfound/internal/store"
)

// ContactResult reports a delivered contact message.
type ContactResult struct {
	SentTo    string `json:"sentTo"`
	ItemTitle string `json:"itemTitle"`
}

// Fallback gives the caller the owner's direct contact details when the
// email could not be sent.
type Fallback struct {
	OwnerEmail string `json:"ownerEmail"`
	OwnerPhone string `json:"ownerPhone,omitempty"`
	Message    string `json:"message"`
}

// DeliveryError is the cause of a failed contact attempt. It carries the
// fallback details for the response.
type DeliveryError struct {
	Fallback Fallback
	Err      error
}

func (e *DeliveryError) Error() string { return "contact delivery failed: " + e.Err.Error() }

func (e *DeliveryError) Unwrap() error { return e.Err }

// ContactOwner emails an item's owner on behalf of caller. When delivery
// fails the returned error is service_unavailable and wraps a
// *DeliveryError with the owner's direct contact details.
func (s *Service) ContactOwner(ctx context.Context, caller Caller, itemID int64, message string) (*ContactResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, model.ValidationError("Please provide a message")
	}

	item, err := store.GetItem(ctx, s.DB, itemID)
	if err != nil {
		return nil, internal("loading item", err)
	}
	if item == nil {
		return nil, model.NotFoundError("Item not found")
	}
	if item.OwnerID == caller.ID {
		return nil, model.ValidationError("You cannot contact yourself about your own item")
	}

	owner, err := store.GetUser(ctx, s.DB, item.OwnerID)
	if err != nil {
		return nil, internal("loading owner", err)
	}
	if owner == nil {
		return nil, model.NotFoundError("Item owner not found")
	}

	sender, err := s.loadCaller(ctx, caller)
	if err != nil {
		return nil, err
	}

	if err := s.deliver(ctx, delivery{
		kind:    model.NotificationContact,
		owner:   owner,
		sender:  sender,
		item:    item,
		message: message,
	}); err != nil {
		return nil, model.NewError(model.KindUnavailable,
			"Failed to send email. Email service may not be configured.",
			&DeliveryError{
				Fallback: Fallback{
					OwnerEmail: owner.Email,
					OwnerPhone: owner.Phone,
					Message:    "You can contact the owner directly using the email/phone provided above",
				},
				Err: err,
			})
	}

	return &ContactResult{SentTo: owner.Email, ItemTitle: item.Title}, nil
}
