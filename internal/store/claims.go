package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campusfound/campusfound/internal/model"
)

const claimColumns = `c.id, c.item_id, c.claimant_id, c.message, c.verification_details, c.status,
       c.created_at, c.resolved_at`

func scanClaim(row rowScanner, extra ...any) (*model.Claim, error) {
	c := &model.Claim{}
	var verification sql.NullString
	dest := append([]any{&c.ID, &c.ItemID, &c.ClaimantID, &c.Message, &verification, &c.Status,
		&c.CreatedAt, &c.ResolvedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	c.VerificationDetails = verification.String
	return c, nil
}

// CreateClaim records a pending claim. The (item, claimant) pair is unique;
// a second claim by the same user on the same item returns ErrDuplicateClaim
// and leaves the existing record untouched.
func CreateClaim(ctx context.Context, db *sql.DB, itemID, claimantID int64, message, verificationDetails string) (*model.Claim, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO claims (item_id, claimant_id, message, verification_details) VALUES (?, ?, ?, ?)`,
		itemID, claimantID, message, nullString(verificationDetails),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateClaim
		}
		return nil, fmt.Errorf("creating claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting claim id: %w", err)
	}

	return GetClaim(ctx, db, id)
}

// GetClaim returns a claim by ID, or nil if there is none.
func GetClaim(ctx context.Context, db *sql.DB, id int64) (*model.Claim, error) {
	c, err := scanClaim(db.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM claims c WHERE c.id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	return c, nil
}

// ListClaimsByClaimant returns a user's claims joined with their items,
// newest first. Claims whose item no longer exists are left out.
func ListClaimsByClaimant(ctx context.Context, db *sql.DB, claimantID int64) ([]model.Claim, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+claimColumns+`, `+itemColumns+`
		 FROM claims c
		 JOIN items i ON i.id = c.item_id
		 LEFT JOIN users u ON u.id = i.owner_id
		 WHERE c.claimant_id = ?
		 ORDER BY c.created_at DESC, c.id DESC`, claimantID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing claims by claimant: %w", err)
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		item := &model.Item{}
		var description, imageMime sql.NullString
		c, err := scanClaim(rows, &item.ID, &item.Title, &item.Category, &item.Type, &description,
			&item.Location, &imageMime, &item.OwnerID, &item.Status, &item.CreatedAt, &item.UpdatedAt,
			&item.OwnerName)
		if err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		item.Description = description.String
		item.ImageMime = imageMime.String
		item.SetImageRef()
		c.Item = item
		claims = append(claims, *c)
	}
	return claims, rows.Err()
}

// ListClaimsByItem returns the claims against an item joined with each
// claimant's public profile, newest first. Claimant is nil when the account
// no longer exists.
func ListClaimsByItem(ctx context.Context, db *sql.DB, itemID int64) ([]model.Claim, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+claimColumns+`, u.id, u.name, u.email, u.student_id
		 FROM claims c
		 LEFT JOIN users u ON u.id = c.claimant_id
		 WHERE c.item_id = ?
		 ORDER BY c.created_at DESC, c.id DESC`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing claims by item: %w", err)
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		var userID sql.NullInt64
		var name, email, studentID sql.NullString
		c, err := scanClaim(rows, &userID, &name, &email, &studentID)
		if err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		if userID.Valid {
			c.Claimant = &model.PublicProfile{
				ID:        userID.Int64,
				Name:      name.String,
				Email:     email.String,
				StudentID: studentID.String,
			}
		}
		claims = append(claims, *c)
	}
	return claims, rows.Err()
}

// ResolveClaim moves a pending claim to status and stamps resolved_at. It
// reports whether the claim changed; claims that are no longer pending are
// left alone.
func ResolveClaim(ctx context.Context, db *sql.DB, id int64, status string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE claims SET status = ?, resolved_at = COALESCE(resolved_at, CURRENT_TIMESTAMP)
		 WHERE id = ? AND status = ?`,
		status, id, model.ClaimStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("resolving claim: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("resolving claim: %w", err)
	}
	return n > 0, nil
}
