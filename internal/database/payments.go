package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Seiiyes/HotelReservation/internal/models"
)

// InsertPaymentTx inserts a payment row inside an open settlement
// transaction and sets its generated ID. Payments are only ever created
// this way; there is no standalone insert.
func InsertPaymentTx(ctx context.Context, tx *sql.Tx, p *models.Payment) error {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO payments (reservation_id, reference, amount, method, paid_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.ReservationID, p.Reference, p.Amount, p.Method, p.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	p.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last id: %w", err)
	}
	return nil
}

// GetPayment returns a payment by ID or ErrNotFound.
func (db *DB) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	var p models.Payment
	err := db.QueryRowContext(ctx, `
		SELECT id, reservation_id, reference, amount, method, paid_at
		FROM payments WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.ReservationID, &p.Reference, &p.Amount, &p.Method, &p.PaidAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPaymentTx reads a payment inside an open transaction.
func GetPaymentTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Payment, error) {
	var p models.Payment
	err := tx.QueryRowContext(ctx, `
		SELECT id, reservation_id, reference, amount, method, paid_at
		FROM payments WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.ReservationID, &p.Reference, &p.Amount, &p.Method, &p.PaidAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePaymentTx removes a payment row inside an open transaction.
func DeletePaymentTx(ctx context.Context, tx *sql.Tx, id int64) error {
	result, err := tx.ExecContext(ctx, "DELETE FROM payments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
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

// ListReservationPayments returns all payments for a reservation,
// oldest first.
func (db *DB) ListReservationPayments(ctx context.Context, reservationID int64) ([]models.Payment, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, reservation_id, reference, amount, method, paid_at
		FROM payments WHERE reservation_id = ? ORDER BY paid_at, id`,
		reservationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

// ListPayments returns payments filtered by an optional date range and
// payment method, newest first. Zero times and an empty method disable
// the corresponding filter.
func (db *DB) ListPayments(ctx context.Context, from, to time.Time, method string) ([]models.Payment, error) {
	query := `
		SELECT id, reservation_id, reference, amount, method, paid_at
		FROM payments WHERE 1=1`
	args := []any{}

	if !from.IsZero() {
		query += " AND paid_at >= ?"
		args = append(args, from)
	}
	if !to.IsZero() {
		query += " AND paid_at < ?"
		args = append(args, to)
	}
	if method != "" {
		query += " AND method = ?"
		args = append(args, method)
	}
	query += " ORDER BY paid_at DESC, id DESC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

func scanPayments(rows *sql.Rows) ([]models.Payment, error) {
	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.ReservationID, &p.Reference, &p.Amount, &p.Method, &p.PaidAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// SumReservationPaymentsTx returns the total paid against a reservation
// inside an open transaction.
func SumReservationPaymentsTx(ctx context.Context, tx *sql.Tx, reservationID int64) (int64, error) {
	var total sql.NullInt64
	err := tx.QueryRowContext(ctx,
		"SELECT SUM(amount) FROM payments WHERE reservation_id = ?",
		reservationID,
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}
