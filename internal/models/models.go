// Package models defines the hotel domain records shared across the module.
package models

import "time"

// Service payment states.
const (
	ServicePending = "pending"
	ServicePaid    = "paid"
)

// Customer is a hotel guest who can own reservations.
type Customer struct {
	ID         int64     `json:"id"`
	DocumentID string    `json:"document_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FullName returns "LastName, FirstName" for listings.
func (c *Customer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.LastName + ", " + c.FirstName
}

// Room is a bookable hotel room. Price is the current nightly catalog
// price in COP; billing always reads it live, it is not frozen at booking
// time.
type Room struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Capacity  int       `json:"capacity"`
	Price     int64     `json:"price"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Reservation books one room for one customer over the half-open date
// interval [CheckIn, CheckOut). Version supports optimistic concurrency
// on updates.
type Reservation struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	RoomID     int64     `json:"room_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Version    int64     `json:"version"`
}

// Nights returns the number of nights covered by the stay.
func (r *Reservation) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// Overlaps reports whether the stay intersects [checkIn, checkOut) under
// half-open interval semantics. Touching boundaries do not overlap: a
// checkout on the same date as another checkin is allowed.
func (r *Reservation) Overlaps(checkIn, checkOut time.Time) bool {
	return r.CheckIn.Before(checkOut) && checkIn.Before(r.CheckOut)
}

// Service is an additional charge attached to a reservation (minibar,
// laundry, ...). It starts pending and is flipped to paid only as a side
// effect of a payment settlement; SettledByPaymentID records which payment
// did so, so deleting that payment can revert exactly its services.
type Service struct {
	ID                 int64     `json:"id"`
	ReservationID      int64     `json:"reservation_id"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	Price              int64     `json:"price"`
	PaymentStatus      string    `json:"payment_status"`
	SettledByPaymentID *int64    `json:"settled_by_payment_id,omitempty"`
	RequestedAt        time.Time `json:"requested_at"`
}

// Paid reports whether the service charge has been settled.
func (s *Service) Paid() bool {
	return s.PaymentStatus == ServicePaid
}

// Payment is an amount settled against a reservation. Payments are never
// updated, only created inside a settlement transaction or deleted.
// Reference is a generated receipt identifier.
type Payment struct {
	ID            int64     `json:"id"`
	ReservationID int64     `json:"reservation_id"`
	Reference     string    `json:"reference"`
	Amount        int64     `json:"amount"`
	Method        string    `json:"method"`
	PaidAt        time.Time `json:"paid_at"`
}

// DateOnly truncates t to midnight in its own location. Reservation date
// rules compare calendar dates, not instants.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
