package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seiiyes/HotelReservation/internal/models"
)

func TestCreateService_StartsPending(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	c := seedCustomer(t, db, "CC-500")
	room := seedRoom(t, db, 100000)
	r := seedReservation(t, db, c.ID, room.ID, jan(10), jan(15))

	svc := &models.Service{
		ReservationID: r.ID,
		Name:          "minibar",
		Price:         20000,
		PaymentStatus: models.ServicePaid, // must be ignored
	}
	require.NoError(t, db.CreateService(ctx, svc))

	got, err := db.GetService(ctx, svc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ServicePending, got.PaymentStatus)
	assert.Nil(t, got.SettledByPaymentID)
}

func TestCreateService_MissingReservation(t *testing.T) {
	db := setupTestDB(t)

	svc := &models.Service{ReservationID: 999, Name: "minibar", Price: 20000}
	assert.ErrorIs(t, db.CreateService(context.Background(), svc), ErrNotFound)
}

func TestSettleAndRevertServices(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	c := seedCustomer(t, db, "CC-501")
	room := seedRoom(t, db, 100000)
	r := seedReservation(t, db, c.ID, room.ID, jan(10), jan(15))

	first := &models.Service{ReservationID: r.ID, Name: "laundry", Price: 15000}
	require.NoError(t, db.CreateService(ctx, first))

	// First payment settles the laundry charge.
	p1 := &models.Payment{ReservationID: r.ID, Reference: "ref-1", Amount: 15000, Method: "cash", PaidAt: time.Now()}
	require.NoError(t, db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := InsertPaymentTx(ctx, tx, p1); err != nil {
			return err
		}
		settled, err := MarkPendingServicesPaidTx(ctx, tx, r.ID, p1.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), settled)
		return nil
	}))

	// A later charge gets settled by a second payment.
	second := &models.Service{ReservationID: r.ID, Name: "minibar", Price: 20000}
	require.NoError(t, db.CreateService(ctx, second))

	p2 := &models.Payment{ReservationID: r.ID, Reference: "ref-2", Amount: 20000, Method: "card", PaidAt: time.Now()}
	require.NoError(t, db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := InsertPaymentTx(ctx, tx, p2); err != nil {
			return err
		}
		_, err := MarkPendingServicesPaidTx(ctx, tx, r.ID, p2.ID)
		return err
	}))

	// Deleting the second payment reverts only its own service.
	require.NoError(t, db.WithTx(ctx, func(tx *sql.Tx) error {
		reverted, err := RevertServicesForPaymentTx(ctx, tx, p2.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), reverted)
		return DeletePaymentTx(ctx, tx, p2.ID)
	}))

	gotFirst, err := db.GetService(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, gotFirst.Paid())
	require.NotNil(t, gotFirst.SettledByPaymentID)
	assert.Equal(t, p1.ID, *gotFirst.SettledByPaymentID)

	gotSecond, err := db.GetService(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, gotSecond.Paid())
	assert.Nil(t, gotSecond.SettledByPaymentID)
}

func TestDeleteService_PaidBlocked(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	c := seedCustomer(t, db, "CC-502")
	room := seedRoom(t, db, 100000)
	r := seedReservation(t, db, c.ID, room.ID, jan(10), jan(15))

	svc := &models.Service{ReservationID: r.ID, Name: "spa", Price: 50000}
	require.NoError(t, db.CreateService(ctx, svc))

	p := &models.Payment{ReservationID: r.ID, Reference: "ref-3", Amount: 50000, Method: "cash", PaidAt: time.Now()}
	require.NoError(t, db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := InsertPaymentTx(ctx, tx, p); err != nil {
			return err
		}
		_, err := MarkPendingServicesPaidTx(ctx, tx, r.ID, p.ID)
		return err
	}))

	assert.ErrorIs(t, db.DeleteService(ctx, svc.ID), ErrConflict)
}

func TestSumReservationPayments(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	c := seedCustomer(t, db, "CC-503")
	room := seedRoom(t, db, 100000)
	r := seedReservation(t, db, c.ID, room.ID, jan(10), jan(15))

	// No payments yet.
	require.NoError(t, db.WithTx(ctx, func(tx *sql.Tx) error {
		total, err := SumReservationPaymentsTx(ctx, tx, r.ID)
		require.NoError(t, err)
		assert.Zero(t, total)
		return nil
	}))

	for i, amount := range []int64{30000, 70000} {
		p := &models.Payment{
			ReservationID: r.ID,
			Reference:     "sum-ref-" + string(rune('a'+i)),
			Amount:        amount,
			Method:        "cash",
			PaidAt:        time.Now(),
		}
		require.NoError(t, db.WithTx(ctx, func(tx *sql.Tx) error {
			return InsertPaymentTx(ctx, tx, p)
		}))
	}

	require.NoError(t, db.WithTx(ctx, func(tx *sql.Tx) error {
		total, err := SumReservationPaymentsTx(ctx, tx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(100000), total)
		return nil
	}))

	payments, err := db.ListReservationPayments(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestListPayments(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	c := seedCustomer(t, db, "CC-504")
	room := seedRoom(t, db, 100000)
	r := seedReservation(t, db, c.ID, room.ID, jan(10), jan(15))

	seeded := []models.Payment{
		{ReservationID: r.ID, Reference: "list-1", Amount: 40000, Method: "cash", PaidAt: jan(11)},
		{ReservationID: r.ID, Reference: "list-2", Amount: 30000, Method: "card", PaidAt: jan(12)},
		{ReservationID: r.ID, Reference: "list-3", Amount: 30000, Method: "cash", PaidAt: jan(20)},
	}
	for i := range seeded {
		p := seeded[i]
		require.NoError(t, db.WithTx(ctx, func(tx *sql.Tx) error {
			return InsertPaymentTx(ctx, tx, &p)
		}))
	}

	t.Run("no filter, newest first", func(t *testing.T) {
		got, err := db.ListPayments(ctx, time.Time{}, time.Time{}, "")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "list-3", got[0].Reference)
		assert.Equal(t, "list-1", got[2].Reference)
	})

	t.Run("date range, to exclusive", func(t *testing.T) {
		got, err := db.ListPayments(ctx, jan(11), jan(20), "")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "list-2", got[0].Reference)
	})

	t.Run("method filter", func(t *testing.T) {
		got, err := db.ListPayments(ctx, time.Time{}, time.Time{}, "card")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "list-2", got[0].Reference)
	})
}
