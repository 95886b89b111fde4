package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/campusfound/campusfound/internal/model"
	"github.com/campusfound/campusfound/internal/store"
)

// CreateClaimInput is a claim submission.
type CreateClaimInput struct {
	ItemID              int64
	Message             string
	VerificationDetails string
}

// ClaimResult is the outcome of a claim submission. Notified is false when
// the owner could not be emailed; the claim is stored either way.
type ClaimResult struct {
	Claim    *model.Claim
	Notified bool
}

// CreateClaim records a pending claim by caller and notifies the item owner.
func (s *Service) CreateClaim(ctx context.Context, caller Caller, in CreateClaimInput) (*ClaimResult, error) {
	message := strings.TrimSpace(in.Message)
	if in.ItemID <= 0 {
		return nil, model.ValidationError("item id required")
	}
	if message == "" {
		return nil, model.ValidationError("message required")
	}

	item, err := store.GetItem(ctx, s.DB, in.ItemID)
	if err != nil {
		return nil, internal("loading item", err)
	}
	if item == nil {
		return nil, model.NotFoundError("Item not found")
	}
	if item.OwnerID == caller.ID {
		return nil, model.ValidationError("You cannot claim your own item")
	}

	claimant, err := s.loadCaller(ctx, caller)
	if err != nil {
		return nil, err
	}

	claim, err := store.CreateClaim(ctx, s.DB, item.ID, claimant.ID, message, strings.TrimSpace(in.VerificationDetails))
	if errors.Is(err, store.ErrDuplicateClaim) {
		return nil, model.NewError(model.KindConflict, "You have already submitted a claim for this item", err)
	}
	if err != nil {
		return nil, internal("creating claim", err)
	}
	slog.Info("claim created", "claim_id", claim.ID, "item_id", item.ID, "claimant_id", claimant.ID)

	owner, err := store.GetUser(ctx, s.DB, item.OwnerID)
	if err != nil {
		// The claim is committed; a failed owner lookup only costs the notice.
		slog.Error("failed to load item owner", "item_id", item.ID, "error", err)
	}

	sendErr := s.deliver(ctx, delivery{
		kind:    model.NotificationClaim,
		owner:   owner,
		sender:  claimant,
		item:    item,
		claimID: &claim.ID,
		message: message,
	})

	return &ClaimResult{Claim: claim, Notified: sendErr == nil}, nil
}

// ListMyClaims returns the caller's claims with their items, newest first.
func (s *Service) ListMyClaims(ctx context.Context, caller Caller) ([]model.Claim, error) {
	claims, err := store.ListClaimsByClaimant(ctx, s.DB, caller.ID)
	if err != nil {
		return nil, internal("listing claims", err)
	}
	return claims, nil
}

// ListItemClaims returns the claims against an item with claimant profiles.
// Only the item owner and admins may see them.
func (s *Service) ListItemClaims(ctx context.Context, caller Caller, itemID int64) ([]model.Claim, error) {
	item, err := store.GetItem(ctx, s.DB, itemID)
	if err != nil {
		return nil, internal("loading item", err)
	}
	if item == nil {
		return nil, model.NotFoundError("Item not found")
	}
	if !canManage(caller, item) {
		return nil, model.NewError(model.KindForbidden, "only the item owner can view its claims", nil)
	}

	claims, err := store.ListClaimsByItem(ctx, s.DB, itemID)
	if err != nil {
		return nil, internal("listing claims", err)
	}
	return claims, nil
}

// UpdateClaimStatus approves or rejects a claim. Resolved claims are final:
// repeating the same decision is a no-op, changing it is a conflict.
func (s *Service) UpdateClaimStatus(ctx context.Context, caller Caller, claimID int64, status string) (*model.Claim, error) {
	if !model.IsTerminal(status) {
		return nil, model.ValidationError("status must be approved or rejected")
	}

	claim, err := store.GetClaim(ctx, s.DB, claimID)
	if err != nil {
		return nil, internal("loading claim", err)
	}
	if claim == nil {
		return nil, model.NotFoundError("Claim not found")
	}

	item, err := store.GetItem(ctx, s.DB, claim.ItemID)
	if err != nil {
		return nil, internal("loading item", err)
	}
	if !canManage(caller, item) {
		return nil, model.NewError(model.KindForbidden, "only the item owner can update this claim", nil)
	}

	if claim.Status == status {
		return claim, nil
	}
	if model.IsTerminal(claim.Status) {
		return nil, model.NewError(model.KindConflict, fmt.Sprintf("claim has already been %s", claim.Status), nil)
	}

	changed, err := store.ResolveClaim(ctx, s.DB, claim.ID, status)
	if err != nil {
		return nil, internal("resolving claim", err)
	}

	updated, err := store.GetClaim(ctx, s.DB, claim.ID)
	if err != nil {
		return nil, internal("reloading claim", err)
	}
	if updated == nil {
		return nil, model.NotFoundError("Claim not found")
	}

	// Another request resolved the claim between the read above and the update.
	if !changed {
		if updated.Status == status {
			return updated, nil
		}
		return nil, model.NewError(model.KindConflict, fmt.Sprintf("claim has already been %s", updated.Status), nil)
	}
	slog.Info("claim resolved", "claim_id", claim.ID, "status", status, "by", caller.ID)

	if status == model.ClaimStatusApproved && item != nil {
		s.markClaimed(ctx, item.ID)
	}
	return updated, nil
}

// markClaimed moves an approved claim's item out of the active listings.
// It runs after the claim is committed and only logs failures.
func (s *Service) markClaimed(ctx context.Context, itemID int64) {
	changed, err := store.MarkItemClaimed(context.WithoutCancel(ctx), s.DB, itemID)
	if err != nil {
		slog.Error("failed to mark item claimed", "item_id", itemID, "error", err)
		return
	}
	if changed {
		slog.Info("item marked claimed", "item_id", itemID)
	}
}
