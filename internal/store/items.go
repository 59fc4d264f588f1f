package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/anakovac/homesale/internal/model"
)

// CreateItem creates a new item with status 'available'.
func CreateItem(ctx context.Context, db *sql.DB, title, description string, price decimal.Decimal, category, condition, pickupArea string) (*model.Item, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO items (id, title, description, price, category, condition, pickup_area)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, title, description, price.String(), category, condition, pickupArea,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	item := &model.Item{}
	var description sql.NullString
	var price string
	err := db.QueryRowContext(ctx,
		`SELECT id, title, description, price, category, condition, pickup_area, status, created_at, updated_at
		 FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Title, &description, &price, &item.Category, &item.Condition,
		&item.PickupArea, &item.Status, &item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	item.Description = description.String
	if item.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parsing item price: %w", err)
	}
	return item, nil
}

// ListItems returns items, newest first, optionally filtered by status and
// category.
func ListItems(ctx context.Context, db *sql.DB, status, category string) ([]model.Item, error) {
	query := `SELECT id, title, description, price, category, condition, pickup_area, status, created_at, updated_at
	          FROM items WHERE 1=1`
	var args []any

	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}

	query += ` ORDER BY created_at DESC, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		var description sql.NullString
		var price string
		if err := rows.Scan(&item.ID, &item.Title, &description, &price, &item.Category,
			&item.Condition, &item.PickupArea, &item.Status, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		item.Description = description.String
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parsing item price: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateItem updates an item's listing fields. Status is managed separately
// through SetItemStatus.
func UpdateItem(ctx context.Context, db *sql.DB, id, title, description string, price decimal.Decimal, category, condition, pickupArea string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET title = ?, description = ?, price = ?, category = ?, condition = ?,
		        pickup_area = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		title, description, price.String(), category, condition, pickupArea, id,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("updating item %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetItemStatus moves an item to the given status, enforcing the transition
// table. The update is conditional on the status the transition was checked
// against, so a concurrent change makes the whole operation fail instead of
// skipping a state.
func SetItemStatus(ctx context.Context, db *sql.DB, id, status string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM items WHERE id = ?`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return fmt.Errorf("setting item status: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("reading item status: %w", err)
	}

	if !model.ValidItemTransition(current, status) {
		return fmt.Errorf("item %s: %s -> %s: %w", id, current, status, ErrInvalidTransition)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		status, id, current,
	)
	if err != nil {
		return fmt.Errorf("setting item status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("item %s changed concurrently: %w", id, ErrInvalidTransition)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing status change: %w", err)
	}
	return nil
}

// ToggleSold flips an item between sold and available: sold items are
// relisted, anything else is marked sold. Returns the new status.
func ToggleSold(ctx context.Context, db *sql.DB, id string) (string, error) {
	item, err := GetItem(ctx, db, id)
	if err != nil {
		return "", err
	}
	if item == nil {
		return "", fmt.Errorf("toggling item status: %w", ErrNotFound)
	}

	next := model.ItemStatusSold
	if item.Status == model.ItemStatusSold {
		next = model.ItemStatusAvailable
	}

	if err := SetItemStatus(ctx, db, id, next); err != nil {
		return "", err
	}
	return next, nil
}
