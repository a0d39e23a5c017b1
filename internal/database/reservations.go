package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Seiiyes/HotelReservation/internal/models"
)

// CreateReservation inserts a new reservation and sets its generated ID.
// Validation is the caller's responsibility (see the booking package).
func (db *DB) CreateReservation(ctx context.Context, r *models.Reservation) error {
	now := time.Now()
	result, err := db.ExecContext(ctx, `
		INSERT INTO reservations (customer_id, room_id, check_in, check_out, created_at, updated_at, version)
		VALUES (?, ?, ?, ?, ?, ?, 1)`,
		r.CustomerID, r.RoomID, r.CheckIn, r.CheckOut, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	r.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last id: %w", err)
	}
	r.CreatedAt = now
	r.UpdatedAt = now
	r.Version = 1
	return nil
}

// GetReservation returns a reservation by ID or ErrNotFound.
func (db *DB) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	var r models.Reservation
	err := db.QueryRowContext(ctx, `
		SELECT id, customer_id, room_id, check_in, check_out, created_at, updated_at, version
		FROM reservations WHERE id = ?`,
		id,
	).Scan(&r.ID, &r.CustomerID, &r.RoomID, &r.CheckIn, &r.CheckOut, &r.CreatedAt, &r.UpdatedAt, &r.Version)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetReservationTx reads a reservation inside an open transaction.
func GetReservationTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Reservation, error) {
	var r models.Reservation
	err := tx.QueryRowContext(ctx, `
		SELECT id, customer_id, room_id, check_in, check_out, created_at, updated_at, version
		FROM reservations WHERE id = ?`,
		id,
	).Scan(&r.ID, &r.CustomerID, &r.RoomID, &r.CheckIn, &r.CheckOut, &r.CreatedAt, &r.UpdatedAt, &r.Version)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListReservations returns all reservations ordered by check-in date.
func (db *DB) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, customer_id, room_id, check_in, check_out, created_at, updated_at, version
		FROM reservations ORDER BY check_in`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

// ListRoomReservations returns reservations for a room that intersect
// [from, to), ordered by check-in.
func (db *DB) ListRoomReservations(ctx context.Context, roomID int64, from, to time.Time) ([]models.Reservation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, customer_id, room_id, check_in, check_out, created_at, updated_at, version
		FROM reservations
		WHERE room_id = ? AND check_in < ? AND check_out > ?
		ORDER BY check_in`,
		roomID, to, from,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

func scanReservations(rows *sql.Rows) ([]models.Reservation, error) {
	var reservations []models.Reservation
	for rows.Next() {
		var r models.Reservation
		if err := rows.Scan(&r.ID, &r.CustomerID, &r.RoomID, &r.CheckIn, &r.CheckOut, &r.CreatedAt, &r.UpdatedAt, &r.Version); err != nil {
			return nil, err
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

// HasDateConflict reports whether any reservation for roomID intersects
// the half-open interval [checkIn, checkOut). excludeID skips one
// reservation so an edit does not conflict with itself; pass 0 when
// creating. Two intervals [a,b) and [c,d) overlap iff a < d AND c < b,
// so a checkout date equal to another checkin date is not a conflict.
func (db *DB) HasDateConflict(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID int64) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reservations
		WHERE room_id = ?
		AND id != ?
		AND check_in < ? AND check_out > ?`,
		roomID, excludeID, checkOut, checkIn,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateReservationWithVersion applies an optimistic-concurrency update:
// the row is written only if its stored version still matches
// r.Version. On success r.Version is advanced; if another writer got
// there first, ErrVersionConflict is returned and nothing changes.
func (db *DB) UpdateReservationWithVersion(ctx context.Context, r *models.Reservation) error {
	result, err := db.ExecContext(ctx, `
		UPDATE reservations
		SET customer_id = ?, room_id = ?, check_in = ?, check_out = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		r.CustomerID, r.RoomID, r.CheckIn, r.CheckOut, time.Now(), r.ID, r.Version,
	)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Distinguish a missing row from a lost race.
		exists, err := db.reservationExists(ctx, r.ID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	r.Version++
	return nil
}

func (db *DB) reservationExists(ctx context.Context, id int64) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservations WHERE id = ?", id,
	).Scan(&count)
	return count > 0, err
}

// DeleteReservation removes a reservation. Deletion is blocked while
// payments or services still reference it.
func (db *DB) DeleteReservation(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", id)
	if isFKViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
