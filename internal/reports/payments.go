// Package reports builds the payments report and its Excel export.
package reports

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Seiiyes/HotelReservation/internal/database"
)

// Filter narrows the payments report. Zero times and an empty method
// disable the corresponding filter. To is exclusive.
type Filter struct {
	From   time.Time
	To     time.Time
	Method string
}

// Row is one payment in the report, joined with its reservation
// context.
type Row struct {
	PaymentID     int64     `json:"payment_id"`
	Reference     string    `json:"reference"`
	PaidAt        time.Time `json:"paid_at"`
	Amount        int64     `json:"amount"`
	Method        string    `json:"method"`
	ReservationID int64     `json:"reservation_id"`
	CustomerName  string    `json:"customer_name"`
	RoomType      string    `json:"room_type"`
}

// Service builds payment reports.
type Service struct {
	db *database.DB
}

// NewService creates a report service over the store.
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// Rows returns the report rows matching the filter, newest payment
// first.
func (s *Service) Rows(ctx context.Context, filter Filter) ([]Row, error) {
	query := `
		SELECT p.id, p.reference, p.paid_at, p.amount, p.method,
		       r.id, c.first_name, c.last_name, rm.type
		FROM payments p
		JOIN reservations r ON r.id = p.reservation_id
		JOIN customers c ON c.id = r.customer_id
		JOIN rooms rm ON rm.id = r.room_id
		WHERE 1=1`
	args := []any{}

	if !filter.From.IsZero() {
		query += " AND p.paid_at >= ?"
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		query += " AND p.paid_at < ?"
		args = append(args, filter.To)
	}
	if filter.Method != "" {
		query += " AND p.method = ?"
		args = append(args, filter.Method)
	}
	query += " ORDER BY p.paid_at DESC, p.id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query payments report: %w", err)
	}
	defer rows.Close()

	var report []Row
	for rows.Next() {
		var row Row
		var firstName, lastName string
		if err := rows.Scan(
			&row.PaymentID, &row.Reference, &row.PaidAt, &row.Amount, &row.Method,
			&row.ReservationID, &firstName, &lastName, &row.RoomType,
		); err != nil {
			return nil, err
		}
		row.CustomerName = firstName + " " + lastName
		report = append(report, row)
	}
	return report, rows.Err()
}

// Total sums the amounts of the given rows.
func Total(rows []Row) int64 {
	var total int64
	for _, row := range rows {
		total += row.Amount
	}
	return total
}

var excelColumns = []string{
	"Payment ID", "Reference", "Date", "Amount (COP)", "Method",
	"Reservation", "Customer", "Room type",
}

// WriteExcel renders the report as an XLSX workbook with a totals row.
func WriteExcel(w io.Writer, rows []Row) error {
	file := excelize.NewFile()
	defer file.Close()

	const sheet = "Payments"
	file.SetSheetName("Sheet1", sheet)

	for i, col := range excelColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheet, cell, col); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, row := range rows {
		values := []any{
			row.PaymentID,
			row.Reference,
			row.PaidAt.Format("2006-01-02 15:04"),
			row.Amount,
			row.Method,
			row.ReservationID,
			row.CustomerName,
			row.RoomType,
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := file.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
	}

	totalLabel, err := excelize.CoordinatesToCellName(3, len(rows)+2)
	if err != nil {
		return err
	}
	totalCell, err := excelize.CoordinatesToCellName(4, len(rows)+2)
	if err != nil {
		return err
	}
	if err := file.SetCellValue(sheet, totalLabel, "Total"); err != nil {
		return err
	}
	if err := file.SetCellValue(sheet, totalCell, Total(rows)); err != nil {
		return err
	}

	return file.Write(w)
}
