package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestReservation_Overlaps(t *testing.T) {
	// Stay over [Jan 10, Jan 15).
	r := &Reservation{
		CheckIn:  date(2025, time.January, 10),
		CheckOut: date(2025, time.January, 15),
	}

	t.Run("containment", func(t *testing.T) {
		assert.True(t, r.Overlaps(date(2025, time.January, 11), date(2025, time.January, 13)))
		assert.True(t, r.Overlaps(date(2025, time.January, 8), date(2025, time.January, 20)))
	})

	t.Run("partial overlap", func(t *testing.T) {
		assert.True(t, r.Overlaps(date(2025, time.January, 8), date(2025, time.January, 11)))
		assert.True(t, r.Overlaps(date(2025, time.January, 14), date(2025, time.January, 20)))
	})

	t.Run("touching boundaries do not conflict", func(t *testing.T) {
		// Checkout day equals the other stay's checkin day.
		assert.False(t, r.Overlaps(date(2025, time.January, 15), date(2025, time.January, 20)))
		assert.False(t, r.Overlaps(date(2025, time.January, 5), date(2025, time.January, 10)))
	})

	t.Run("disjoint", func(t *testing.T) {
		assert.False(t, r.Overlaps(date(2025, time.January, 20), date(2025, time.January, 25)))
		assert.False(t, r.Overlaps(date(2025, time.January, 1), date(2025, time.January, 5)))
	})
}

func TestReservation_Nights(t *testing.T) {
	r := &Reservation{
		CheckIn:  date(2025, time.January, 10),
		CheckOut: date(2025, time.January, 15),
	}
	assert.Equal(t, 5, r.Nights())

	oneNight := &Reservation{
		CheckIn:  date(2025, time.March, 1),
		CheckOut: date(2025, time.March, 2),
	}
	assert.Equal(t, 1, oneNight.Nights())
}

func TestCustomer_FullName(t *testing.T) {
	c := &Customer{FirstName: "Ana", LastName: "Gomez"}
	assert.Equal(t, "Gomez, Ana", c.FullName())

	noLast := &Customer{FirstName: "Ana"}
	assert.Equal(t, "Ana", noLast.FullName())
}

func TestService_Paid(t *testing.T) {
	s := &Service{PaymentStatus: ServicePending}
	assert.False(t, s.Paid())

	s.PaymentStatus = ServicePaid
	assert.True(t, s.Paid())
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2025, time.June, 3, 17, 45, 12, 999, time.UTC)
	got := DateOnly(in)
	assert.Equal(t, date(2025, time.June, 3), got)
	assert.Equal(t, in.Location(), got.Location())
}
