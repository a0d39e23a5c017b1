package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Seiiyes/HotelReservation/internal/models"
)

// CreateCustomer inserts a new customer and sets its generated ID.
func (db *DB) CreateCustomer(ctx context.Context, c *models.Customer) error {
	now := time.Now()
	result, err := db.ExecContext(ctx, `
		INSERT INTO customers (document_id, first_name, last_name, email, phone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.DocumentID, c.FirstName, c.LastName, c.Email, c.Phone, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	c.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last id: %w", err)
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// GetCustomer returns a customer by ID or ErrNotFound.
func (db *DB) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	var c models.Customer
	var phone sql.NullString
	err := db.QueryRowContext(ctx, `
		SELECT id, document_id, first_name, last_name, email, phone, created_at, updated_at
		FROM customers WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.DocumentID, &c.FirstName, &c.LastName, &c.Email, &phone, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if phone.Valid {
		c.Phone = phone.String
	}
	return &c, nil
}

// CustomerExists reports whether a customer with the given ID exists.
func (db *DB) CustomerExists(ctx context.Context, id int64) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM customers WHERE id = ?", id,
	).Scan(&count)
	return count > 0, err
}

// ListCustomers returns all customers ordered by last then first name.
func (db *DB) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, document_id, first_name, last_name, email, phone, created_at, updated_at
		FROM customers ORDER BY last_name, first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		var phone sql.NullString
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.FirstName, &c.LastName, &c.Email, &phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if phone.Valid {
			c.Phone = phone.String
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// UpdateCustomer updates all mutable fields of a customer.
func (db *DB) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	result, err := db.ExecContext(ctx, `
		UPDATE customers
		SET document_id = ?, first_name = ?, last_name = ?, email = ?, phone = ?, updated_at = ?
		WHERE id = ?`,
		c.DocumentID, c.FirstName, c.LastName, c.Email, c.Phone, time.Now(), c.ID,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
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

// DeleteCustomer removes a customer. Customers with reservations cannot
// be deleted; the FK violation is surfaced as ErrConflict.
func (db *DB) DeleteCustomer(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, "DELETE FROM customers WHERE id = ?", id)
	if isFKViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
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
