package reports

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Seiiyes/HotelReservation/internal/database"
	"github.com/Seiiyes/HotelReservation/internal/models"
)

func seedReport(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()

	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	customer := &models.Customer{DocumentID: "CC-1", FirstName: "Ana", LastName: "Gomez", Email: "ana@example.com"}
	require.NoError(t, db.CreateCustomer(ctx, customer))

	room := &models.Room{Type: "double", Capacity: 2, Price: 100000, Available: true}
	require.NoError(t, db.CreateRoom(ctx, room))

	reservation := &models.Reservation{
		CustomerID: customer.ID,
		RoomID:     room.ID,
		CheckIn:    time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.CreateReservation(ctx, reservation))

	payments := []models.Payment{
		{ReservationID: reservation.ID, Reference: "rep-1", Amount: 40000, Method: "cash",
			PaidAt: time.Date(2025, time.January, 11, 9, 0, 0, 0, time.UTC)},
		{ReservationID: reservation.ID, Reference: "rep-2", Amount: 30000, Method: "card",
			PaidAt: time.Date(2025, time.January, 12, 9, 0, 0, 0, time.UTC)},
		{ReservationID: reservation.ID, Reference: "rep-3", Amount: 30000, Method: "cash",
			PaidAt: time.Date(2025, time.February, 1, 9, 0, 0, 0, time.UTC)},
	}
	for i := range payments {
		p := payments[i]
		require.NoError(t, db.WithTx(ctx, func(tx *sql.Tx) error {
			return database.InsertPaymentTx(ctx, tx, &p)
		}))
	}

	return NewService(db)
}

func TestRows_NoFilter(t *testing.T) {
	svc := seedReport(t)

	rows, err := svc.Rows(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Newest first.
	assert.Equal(t, "rep-3", rows[0].Reference)
	assert.Equal(t, "Ana Gomez", rows[0].CustomerName)
	assert.Equal(t, "double", rows[0].RoomType)
	assert.Equal(t, int64(100000), Total(rows))
}

func TestRows_Filtered(t *testing.T) {
	svc := seedReport(t)
	ctx := context.Background()

	t.Run("by date range", func(t *testing.T) {
		rows, err := svc.Rows(ctx, Filter{
			From: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.Len(t, rows, 2)
		assert.Equal(t, int64(70000), Total(rows))
	})

	t.Run("by method", func(t *testing.T) {
		rows, err := svc.Rows(ctx, Filter{Method: "card"})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "rep-2", rows[0].Reference)
	})

	t.Run("no matches", func(t *testing.T) {
		rows, err := svc.Rows(ctx, Filter{Method: "transfer"})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestWriteExcel(t *testing.T) {
	svc := seedReport(t)

	rows, err := svc.Rows(context.Background(), Filter{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, rows))

	file, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer file.Close()

	header, err := file.GetCellValue("Payments", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Payment ID", header)

	firstRef, err := file.GetCellValue("Payments", "B2")
	require.NoError(t, err)
	assert.Equal(t, "rep-3", firstRef)

	totalLabel, err := file.GetCellValue("Payments", "C5")
	require.NoError(t, err)
	assert.Equal(t, "Total", totalLabel)

	total, err := file.GetCellValue("Payments", "D5")
	require.NoError(t, err)
	assert.Equal(t, "100000", total)
}
