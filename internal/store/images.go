package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/anakovac/homesale/internal/model"
)

// AddItemImage appends an image to an item's gallery with the next sort
// order (0 when the gallery is empty).
func AddItemImage(ctx context.Context, db *sql.DB, itemID, url string) (*model.ItemImage, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var maxOrder int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order), -1) FROM item_images WHERE item_id = ?`, itemID,
	).Scan(&maxOrder)
	if err != nil {
		return nil, fmt.Errorf("reading image order: %w", err)
	}

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO item_images (id, item_id, url, sort_order) VALUES (?, ?, ?, ?)`,
		id, itemID, url, maxOrder+1,
	)
	if err != nil {
		return nil, fmt.Errorf("adding item image: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing image insert: %w", err)
	}

	return GetItemImage(ctx, db, id)
}

// GetItemImage returns an image by ID, or nil if it does not exist.
func GetItemImage(ctx context.Context, db *sql.DB, id string) (*model.ItemImage, error) {
	img := &model.ItemImage{}
	err := db.QueryRowContext(ctx,
		`SELECT id, item_id, url, sort_order, created_at FROM item_images WHERE id = ?`, id,
	).Scan(&img.ID, &img.ItemID, &img.URL, &img.SortOrder, &img.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item image: %w", err)
	}
	return img, nil
}

// ListItemImages returns an item's images in display order.
func ListItemImages(ctx context.Context, db *sql.DB, itemID string) ([]model.ItemImage, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, item_id, url, sort_order, created_at
		 FROM item_images WHERE item_id = ? ORDER BY sort_order`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item images: %w", err)
	}
	defer rows.Close()

	var images []model.ItemImage
	for rows.Next() {
		var img model.ItemImage
		if err := rows.Scan(&img.ID, &img.ItemID, &img.URL, &img.SortOrder, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning item image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// CoverImages returns the first image URL of every item that has one, keyed
// by item ID.
func CoverImages(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT i.item_id, i.url
		 FROM item_images i
		 JOIN (SELECT item_id, MIN(sort_order) AS first_order
		       FROM item_images GROUP BY item_id) f
		   ON f.item_id = i.item_id AND f.first_order = i.sort_order`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing cover images: %w", err)
	}
	defer rows.Close()

	covers := make(map[string]string)
	for rows.Next() {
		var itemID, url string
		if err := rows.Scan(&itemID, &url); err != nil {
			return nil, fmt.Errorf("scanning cover image: %w", err)
		}
		covers[itemID] = url
	}
	return covers, rows.Err()
}

// MoveItemImage swaps an image with its neighbor in the given direction
// ("up" moves it earlier in display order, "down" later). Moving past either
// end of the gallery is a no-op.
func MoveItemImage(ctx context.Context, db *sql.DB, itemID, imageID, direction string) error {
	if direction != "up" && direction != "down" {
		return fmt.Errorf("invalid direction %q", direction)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id, sort_order FROM item_images WHERE item_id = ? ORDER BY sort_order`, itemID,
	)
	if err != nil {
		return fmt.Errorf("listing images for reorder: %w", err)
	}

	type entry struct {
		id    string
		order int
	}
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.id, &e.order); err != nil {
			rows.Close()
			return fmt.Errorf("scanning image for reorder: %w", err)
		}
		entries = append(entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("listing images for reorder: %w", err)
	}

	index := -1
	for i, e := range entries {
		if e.id == imageID {
			index = i
			break
		}
	}
	if index == -1 {
		return fmt.Errorf("moving image %s: %w", imageID, ErrNotFound)
	}

	target := index - 1
	if direction == "down" {
		target = index + 1
	}
	if target < 0 || target >= len(entries) {
		// Already at the boundary.
		return nil
	}

	cur, other := entries[index], entries[target]
	if _, err := tx.ExecContext(ctx,
		`UPDATE item_images SET sort_order = ? WHERE id = ?`, other.order, cur.id); err != nil {
		return fmt.Errorf("swapping image order: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE item_images SET sort_order = ? WHERE id = ?`, cur.order, other.id); err != nil {
		return fmt.Errorf("swapping image order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing image reorder: %w", err)
	}
	return nil
}
