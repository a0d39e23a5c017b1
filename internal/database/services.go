package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Seiiyes/HotelReservation/internal/models"
)

// CreateService inserts a new additional-charge service for a
// reservation. New services always start pending.
func (db *DB) CreateService(ctx context.Context, s *models.Service) error {
	now := time.Now()
	if s.RequestedAt.IsZero() {
		s.RequestedAt = now
	}
	s.PaymentStatus = models.ServicePending
	result, err := db.ExecContext(ctx, `
		INSERT INTO services (reservation_id, name, description, price, payment_status, requested_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ReservationID, s.Name, s.Description, s.Price, s.PaymentStatus, s.RequestedAt,
	)
	if isFKViolation(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("insert service: %w", err)
	}
	s.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last id: %w", err)
	}
	return nil
}

// GetService returns a service by ID or ErrNotFound.
func (db *DB) GetService(ctx context.Context, id int64) (*models.Service, error) {
	var s models.Service
	var description sql.NullString
	var settledBy sql.NullInt64
	err := db.QueryRowContext(ctx, `
		SELECT id, reservation_id, name, description, price, payment_status, settled_by_payment_id, requested_at
		FROM services WHERE id = ?`,
		id,
	).Scan(&s.ID, &s.ReservationID, &s.Name, &description, &s.Price, &s.PaymentStatus, &settledBy, &s.RequestedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if description.Valid {
		s.Description = description.String
	}
	if settledBy.Valid {
		v := settledBy.Int64
		s.SettledByPaymentID = &v
	}
	return &s, nil
}

// ListReservationServices returns all services for a reservation,
// oldest request first.
func (db *DB) ListReservationServices(ctx context.Context, reservationID int64) ([]models.Service, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, reservation_id, name, description, price, payment_status, settled_by_payment_id, requested_at
		FROM services WHERE reservation_id = ? ORDER BY requested_at, id`,
		reservationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanServices(rows)
}

// ListReservationServicesTx is ListReservationServices inside an open
// transaction, so billing reads services in the same snapshot as rooms
// and payments.
func ListReservationServicesTx(ctx context.Context, tx *sql.Tx, reservationID int64) ([]models.Service, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, reservation_id, name, description, price, payment_status, settled_by_payment_id, requested_at
		FROM services WHERE reservation_id = ? ORDER BY requested_at, id`,
		reservationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanServices(rows)
}

func scanServices(rows *sql.Rows) ([]models.Service, error) {
	var services []models.Service
	for rows.Next() {
		var s models.Service
		var description sql.NullString
		var settledBy sql.NullInt64
		if err := rows.Scan(&s.ID, &s.ReservationID, &s.Name, &description, &s.Price, &s.PaymentStatus, &settledBy, &s.RequestedAt); err != nil {
			return nil, err
		}
		if description.Valid {
			s.Description = description.String
		}
		if settledBy.Valid {
			v := settledBy.Int64
			s.SettledByPaymentID = &v
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// MarkPendingServicesPaidTx flips every pending service of the
// reservation to paid and records which payment settled them. Returns
// the number of services settled.
func MarkPendingServicesPaidTx(ctx context.Context, tx *sql.Tx, reservationID, paymentID int64) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE services
		SET payment_status = ?, settled_by_payment_id = ?
		WHERE reservation_id = ? AND payment_status = ?`,
		models.ServicePaid, paymentID, reservationID, models.ServicePending,
	)
	if err != nil {
		return 0, fmt.Errorf("mark services paid: %w", err)
	}
	return result.RowsAffected()
}

// RevertServicesForPaymentTx returns services settled by the given
// payment to pending. Only services that payment settled are touched;
// services settled by other payments keep their state.
func RevertServicesForPaymentTx(ctx context.Context, tx *sql.Tx, paymentID int64) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE services
		SET payment_status = ?, settled_by_payment_id = NULL
		WHERE settled_by_payment_id = ?`,
		models.ServicePending, paymentID,
	)
	if err != nil {
		return 0, fmt.Errorf("revert services: %w", err)
	}
	return result.RowsAffected()
}

// UpdateService updates the mutable fields of a service.
func (db *DB) UpdateService(ctx context.Context, s *models.Service) error {
	result, err := db.ExecContext(ctx, `
		UPDATE services SET name = ?, description = ?, price = ?
		WHERE id = ?`,
		s.Name, s.Description, s.Price, s.ID,
	)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
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

// DeleteService removes a service charge. Paid services cannot be
// removed while the settling payment exists.
func (db *DB) DeleteService(ctx context.Context, id int64) error {
	s, err := db.GetService(ctx, id)
	if err != nil {
		return err
	}
	if s.Paid() {
		return ErrConflict
	}
	_, err = db.ExecContext(ctx, "DELETE FROM services WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	return nil
}
