package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Seiiyes/HotelReservation/internal/models"
)

// CreateRoom inserts a new room and sets its generated ID.
func (db *DB) CreateRoom(ctx context.Context, r *models.Room) error {
	now := time.Now()
	result, err := db.ExecContext(ctx, `
		INSERT INTO rooms (type, capacity, price, available, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.Type, r.Capacity, r.Price, r.Available, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	r.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last id: %w", err)
	}
	r.CreatedAt = now
	r.UpdatedAt = now
	return nil
}

// GetRoom returns a room by ID or ErrNotFound.
func (db *DB) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	var r models.Room
	err := db.QueryRowContext(ctx, `
		SELECT id, type, capacity, price, available, created_at, updated_at
		FROM rooms WHERE id = ?`,
		id,
	).Scan(&r.ID, &r.Type, &r.Capacity, &r.Price, &r.Available, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRoomTx reads a room inside an open transaction.
func GetRoomTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Room, error) {
	var r models.Room
	err := tx.QueryRowContext(ctx, `
		SELECT id, type, capacity, price, available, created_at, updated_at
		FROM rooms WHERE id = ?`,
		id,
	).Scan(&r.ID, &r.Type, &r.Capacity, &r.Price, &r.Available, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// RoomExists reports whether a room with the given ID exists.
func (db *DB) RoomExists(ctx context.Context, id int64) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM rooms WHERE id = ?", id,
	).Scan(&count)
	return count > 0, err
}

// ListRooms returns all rooms ordered by type then price.
func (db *DB) ListRooms(ctx context.Context) ([]models.Room, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, type, capacity, price, available, created_at, updated_at
		FROM rooms ORDER BY type, price`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		var r models.Room
		if err := rows.Scan(&r.ID, &r.Type, &r.Capacity, &r.Price, &r.Available, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

// UpdateRoom updates all mutable fields of a room.
func (db *DB) UpdateRoom(ctx context.Context, r *models.Room) error {
	result, err := db.ExecContext(ctx, `
		UPDATE rooms SET type = ?, capacity = ?, price = ?, available = ?, updated_at = ?
		WHERE id = ?`,
		r.Type, r.Capacity, r.Price, r.Available, time.Now(), r.ID,
	)
	if err != nil {
		return fmt.Errorf("update room: %w", err)
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

// DeleteRoom removes a room. Rooms with reservations cannot be deleted.
func (db *DB) DeleteRoom(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id)
	if isFKViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
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
