package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anakovac/homesale/internal/model"
)

// CreateReservation claims an item and records the buyer's reservation in a
// single transaction. The claim is a conditional update that only matches
// while the item is still 'available'; when it affects zero rows the whole
// transaction rolls back and ErrItemUnavailable is returned. Because both
// writes commit together, a failed insert can never leave an item reserved
// without a reservation row.
func CreateReservation(ctx context.Context, db *sql.DB, itemID, name, email, phone, message string, preferredPickupAt *time.Time) (*model.Reservation, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		model.ItemStatusReserved, itemID, model.ItemStatusAvailable,
	)
	if err != nil {
		return nil, fmt.Errorf("claiming item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrItemUnavailable
	}

	id := uuid.NewString()
	var pickup any
	if preferredPickupAt != nil {
		pickup = sqliteTime(*preferredPickupAt)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO reservations (id, item_id, customer_name, customer_email, customer_phone, message, preferred_pickup_at, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, itemID, name, email, nullable(phone), nullable(message), pickup, model.ReservationStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing reservation: %w", err)
	}

	return GetReservation(ctx, db, id)
}

// GetReservation returns a reservation by ID with its item title joined, or
// nil if it does not exist.
func GetReservation(ctx context.Context, db *sql.DB, id string) (*model.Reservation, error) {
	r := &model.Reservation{}
	var phone, message sql.NullString
	var pickup sql.NullTime
	err := db.QueryRowContext(ctx,
		`SELECT r.id, r.item_id, r.customer_name, r.customer_email, r.customer_phone,
		        r.message, r.preferred_pickup_at, r.status, r.created_at, i.title
		 FROM reservations r
		 JOIN items i ON i.id = r.item_id
		 WHERE r.id = ?`, id,
	).Scan(&r.ID, &r.ItemID, &r.CustomerName, &r.CustomerEmail, &phone,
		&message, &pickup, &r.Status, &r.CreatedAt, &r.ItemTitle)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting reservation: %w", err)
	}
	r.CustomerPhone = phone.String
	r.Message = message.String
	if pickup.Valid {
		t := pickup.Time
		r.PreferredPickupAt = &t
	}
	return r, nil
}

// ListReservations returns reservations with item titles, newest first,
// optionally filtered by status.
func ListReservations(ctx context.Context, db *sql.DB, status string) ([]model.Reservation, error) {
	query := `SELECT r.id, r.item_id, r.customer_name, r.customer_email, r.customer_phone,
	                 r.message, r.preferred_pickup_at, r.status, r.created_at, i.title
	          FROM reservations r
	          JOIN items i ON i.id = r.item_id
	          WHERE 1=1`
	var args []any

	if status != "" {
		query += ` AND r.status = ?`
		args = append(args, status)
	}

	query += ` ORDER BY r.created_at DESC, r.id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reservations: %w", err)
	}
	defer rows.Close()

	var reservations []model.Reservation
	for rows.Next() {
		var r model.Reservation
		var phone, message sql.NullString
		var pickup sql.NullTime
		if err := rows.Scan(&r.ID, &r.ItemID, &r.CustomerName, &r.CustomerEmail, &phone,
			&message, &pickup, &r.Status, &r.CreatedAt, &r.ItemTitle); err != nil {
			return nil, fmt.Errorf("scanning reservation: %w", err)
		}
		r.CustomerPhone = phone.String
		r.Message = message.String
		if pickup.Valid {
			t := pickup.Time
			r.PreferredPickupAt = &t
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

// CountRecentByEmail counts reservations submitted from an email within the
// trailing window. The count is recomputed from persisted rows so it stays
// correct across server instances.
func CountRecentByEmail(ctx context.Context, db *sql.DB, email string, window time.Duration) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE customer_email = ? AND created_at >= ?`,
		email, sqliteTime(time.Now().Add(-window)),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting recent reservations: %w", err)
	}
	return count, nil
}

// ConfirmReservation moves a pending reservation to confirmed. The item
// stays reserved; no item write happens here.
func ConfirmReservation(ctx context.Context, db *sql.DB, id string) error {
	return setReservationStatus(ctx, db, id, model.ReservationStatusConfirmed, false)
}

// CancelReservation cancels a pending or confirmed reservation and releases
// its item back to 'available'. The release is conditional on the item still
// being 'reserved', so a double cancel cannot clobber a sold item.
func CancelReservation(ctx context.Context, db *sql.DB, id string) error {
	return setReservationStatus(ctx, db, id, model.ReservationStatusCancelled, true)
}

func setReservationStatus(ctx context.Context, db *sql.DB, id, status string, releaseItem bool) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var current, itemID string
	err = tx.QueryRowContext(ctx,
		`SELECT status, item_id FROM reservations WHERE id = ?`, id,
	).Scan(&current, &itemID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("updating reservation: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("reading reservation status: %w", err)
	}

	if !model.ValidReservationTransition(current, status) {
		return fmt.Errorf("reservation %s: %s -> %s: %w", id, current, status, ErrInvalidTransition)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE id = ? AND status = ?`,
		status, id, current,
	)
	if err != nil {
		return fmt.Errorf("updating reservation status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("reservation %s changed concurrently: %w", id, ErrInvalidTransition)
	}

	if releaseItem {
		_, err = tx.ExecContext(ctx,
			`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND status = ?`,
			model.ItemStatusAvailable, itemID, model.ItemStatusReserved,
		)
		if err != nil {
			return fmt.Errorf("releasing item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reservation update: %w", err)
	}
	return nil
}

// nullable maps empty strings to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
