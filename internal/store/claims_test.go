package store

import (
	"context"
	"errors"
	"testing"

	"github.com/campusfound/campusfound/internal/db"
	"github.com/campusfound/campusfound/internal/model"
)

func TestCreateClaim(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice := mustCreateUser(t, database, "Alice")
	bob := mustCreateUser(t, database, "Bob")
	item := mustCreateItem(t, database, alice, "Blue Backpack", model.ItemTypeLost)

	claim, err := CreateClaim(ctx, database, item.ID, bob.ID, "Found near library", "")
	if err != nil {
		t.Fatalf("CreateClaim: %v", err)
	}
	if claim.Status != model.ClaimStatusPending {
		t.Errorf("expected pending, got %q", claim.Status)
	}
	if claim.ResolvedAt != nil {
		t.Error("pending claim must not have resolved_at")
	}
	if claim.VerificationDetails != "" {
		t.Errorf("expected empty verification details, got %q", claim.VerificationDetails)
	}
}

func TestCreateClaimDuplicate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice := mustCreateUser(t, database, "Alice")
	bob := mustCreateUser(t, database, "Bob")
	item := mustCreateItem(t, database, alice, "Blue Backpack", model.ItemTypeLost)

	if _, err := CreateClaim(ctx, database, item.ID, bob.ID, "first", ""); err != nil {
		t.Fatalf("CreateClaim: %v", err)
	}

	_, err := CreateClaim(ctx, database, item.ID, bob.ID, "second", "")
	if !errors.Is(err, ErrDuplicateClaim) {
		t.Fatalf("expected ErrDuplicateClaim, got %v", err)
	}

	claims, _ := ListClaimsByItem(ctx, database, item.ID)
	if len(claims) != 1 {
		t.Errorf("expected exactly 1 claim record, got %d", len(claims))
	}
	if claims[0].Message != "first" {
		t.Errorf("existing claim must be untouched, got %q", claims[0].Message)
	}
}

func TestListClaimsByClaimantSkipsMissingItems(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice := mustCreateUser(t, database, "Alice")
	bob := mustCreateUser(t, database, "Bob")
	kept := mustCreateItem(t, database, alice, "Wallet", model.ItemTypeFound)
	gone := mustCreateItem(t, database, alice, "Scarf", model.ItemTypeFound)

	CreateClaim(ctx, database, kept.ID, bob.ID, "mine", "")
	CreateClaim(ctx, database, gone.ID, bob.ID, "also mine", "")
	DeleteItem(ctx, database, gone.ID)

	claims, err := ListClaimsByClaimant(ctx, database, bob.ID)
	if err != nil {
		t.Fatalf("ListClaimsByClaimant: %v", err)
	}
	if len(claims) != 1 {
		t.Fatalf("expected 1 claim with a resolvable item, got %d", len(claims))
	}
	if claims[0].Item == nil || claims[0].Item.Title != "Wallet" {
		t.Errorf("expected joined item 'Wallet', got %+v", claims[0].Item)
	}
	if claims[0].Item.OwnerName != "Alice" {
		t.Errorf("expected joined owner name, got %q", claims[0].Item.OwnerName)
	}
}

func TestListClaimsNewestFirst(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice := mustCreateUser(t, database, "Alice")
	bob := mustCreateUser(t, database, "Bob")
	carol := mustCreateUser(t, database, "Carol")
	item := mustCreateItem(t, database, alice, "Laptop", model.ItemTypeFound)

	CreateClaim(ctx, database, item.ID, bob.ID, "bob's", "")
	CreateClaim(ctx, database, item.ID, carol.ID, "carol's", "sticker on the lid")

	claims, err := ListClaimsByItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("ListClaimsByItem: %v", err)
	}
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(claims))
	}
	if claims[0].ClaimantID != carol.ID {
		t.Errorf("expected Carol's newer claim first, got claimant %d", claims[0].ClaimantID)
	}
	if claims[0].Claimant == nil || claims[0].Claimant.Email != "carol@campus.edu" {
		t.Errorf("expected joined claimant profile, got %+v", claims[0].Claimant)
	}
	if claims[0].VerificationDetails != "sticker on the lid" {
		t.Errorf("unexpected verification details %q", claims[0].VerificationDetails)
	}
}

func TestResolveClaimOnlyFromPending(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice := mustCreateUser(t, database, "Alice")
	bob := mustCreateUser(t, database, "Bob")
	item := mustCreateItem(t, database, alice, "Watch", model.ItemTypeFound)
	claim, _ := CreateClaim(ctx, database, item.ID, bob.ID, "mine", "")

	changed, err := ResolveClaim(ctx, database, claim.ID, model.ClaimStatusApproved)
	if err != nil {
		t.Fatalf("ResolveClaim: %v", err)
	}
	if !changed {
		t.Fatal("expected pending claim to be resolved")
	}
	first, _ := GetClaim(ctx, database, claim.ID)
	if first.Status != model.ClaimStatusApproved || first.ResolvedAt == nil {
		t.Fatalf("expected approved with resolved_at, got %+v", first)
	}

	// Backdate so a reset would be visible despite second-level timestamps.
	database.ExecContext(ctx, `UPDATE claims SET resolved_at = '2020-01-01 00:00:00' WHERE id = ?`, claim.ID)

	for _, status := range []string{model.ClaimStatusApproved, model.ClaimStatusRejected} {
		changed, err := ResolveClaim(ctx, database, claim.ID, status)
		if err != nil {
			t.Fatalf("ResolveClaim(%s): %v", status, err)
		}
		if changed {
			t.Errorf("ResolveClaim(%s) changed an approved claim", status)
		}
	}

	again, _ := GetClaim(ctx, database, claim.ID)
	if again.Status != model.ClaimStatusApproved {
		t.Errorf("status = %q, want approved", again.Status)
	}
	if again.ResolvedAt == nil || again.ResolvedAt.Year() != 2020 {
		t.Errorf("resolved_at must be kept, got %v", again.ResolvedAt)
	}
}

func TestResolveClaimMissing(t *testing.T) {
	database := db.NewTestDB(t)
	changed, err := ResolveClaim(context.Background(), database, 999, model.ClaimStatusRejected)
	if err != nil {
		t.Fatalf("ResolveClaim: %v", err)
	}
	if changed {
		t.Error("missing claim reported as changed")
	}
}
