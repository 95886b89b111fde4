package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campusfound/campusfound/internal/model"
)

const itemColumns = `i.id, i.title, i.category, i.type, i.description, i.location, i.image_mime,
       i.owner_id, i.status, i.created_at, i.updated_at, COALESCE(u.name, '')`

const itemFrom = ` FROM items i LEFT JOIN users u ON u.id = i.owner_id`

// ItemFilter narrows ListItems. Empty fields match everything.
type ItemFilter struct {
	Type     string
	Category string
	Status   string
	OwnerID  int64
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var description, imageMime sql.NullString
	if err := row.Scan(&item.ID, &item.Title, &item.Category, &item.Type, &description, &item.Location,
		&imageMime, &item.OwnerID, &item.Status, &item.CreatedAt, &item.UpdatedAt, &item.OwnerName); err != nil {
		return nil, err
	}
	item.Description = description.String
	item.ImageMime = imageMime.String
	item.SetImageRef()
	return item, nil
}

// CreateItem creates a new item posting owned by item.OwnerID. The status
// always starts as active.
func CreateItem(ctx context.Context, db *sql.DB, item *model.Item) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (title, category, type, description, location, owner_id) VALUES (?, ?, ?, ?, ?, ?)`,
		item.Title, item.Category, item.Type, item.Description, item.Location, item.OwnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, or nil if there is none.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+itemFrom+` WHERE i.id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns items matching the filter, newest first.
func ListItems(ctx context.Context, db *sql.DB, f ItemFilter) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + itemFrom + ` WHERE 1=1`
	var args []any

	if f.Type != "" {
		query += ` AND i.type = ?`
		args = append(args, f.Type)
	}
	if f.Category != "" {
		query += ` AND i.category = ? COLLATE NOCASE`
		args = append(args, f.Category)
	}
	if f.Status != "" {
		query += ` AND i.status = ?`
		args = append(args, f.Status)
	}
	if f.OwnerID > 0 {
		query += ` AND i.owner_id = ?`
		args = append(args, f.OwnerID)
	}

	query += ` ORDER BY i.created_at DESC, i.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ListItemsByOwner returns the items posted by a user, newest first.
func ListItemsByOwner(ctx context.Context, db *sql.DB, ownerID int64) ([]model.Item, error) {
	return ListItems(ctx, db, ItemFilter{OwnerID: ownerID})
}

// UpdateItem updates an item's descriptive fields.
func UpdateItem(ctx context.Context, db *sql.DB, item *model.Item) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET title = ?, category = ?, type = ?, description = ?, location = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		item.Title, item.Category, item.Type, item.Description, item.Location, item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// UpdateItemStatus sets an item's status.
func UpdateItemStatus(ctx context.Context, db *sql.DB, id int64, status string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("updating item status: %w", err)
	}
	return nil
}

// MarkItemClaimed moves an active item to claimed. It reports whether the
// item changed; items in any other status are left alone.
func MarkItemClaimed(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		model.ItemStatusClaimed, id, model.ItemStatusActive,
	)
	if err != nil {
		return false, fmt.Errorf("marking item claimed: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("marking item claimed: %w", err)
	}
	return n > 0, nil
}

// DeleteItem removes an item. Claims against it are kept.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// SetItemImage sets an item's image data.
func SetItemImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return nil
}

// GetItemImage returns an item's image data and MIME type.
func GetItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	return getImage(ctx, db, `SELECT image, image_mime FROM items WHERE id = ?`, id)
}
