// Package billing computes reservation balances and settles payments.
//
// A reservation's total due is the room's current catalog price plus the
// sum of its additional service charges. Settlement records a payment
// and flips the reservation's pending services to paid in one
// transaction; deleting a payment reverts exactly the services it
// settled, also transactionally.
package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Seiiyes/HotelReservation/internal/database"
	"github.com/Seiiyes/HotelReservation/internal/events"
	"github.com/Seiiyes/HotelReservation/internal/metrics"
	"github.com/Seiiyes/HotelReservation/internal/models"
)

var (
	// ErrInvalidAmount rejects settlement amounts that are not positive.
	ErrInvalidAmount = errors.New("the amount must be greater than zero")
	// ErrProcessingFailed hides infrastructure failures from the user;
	// details go to the log.
	ErrProcessingFailed = errors.New("payment processing failed")
)

// OverpaymentError rejects a settlement whose amount exceeds the
// outstanding balance. It names both values.
type OverpaymentError struct {
	Amount  int64
	Balance int64
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("the entered amount (%d) exceeds the pending balance (%d)", e.Amount, e.Balance)
}

// Statement is the billing snapshot of one reservation.
type Statement struct {
	ReservationID int64            `json:"reservation_id"`
	RoomPrice     int64            `json:"room_price"`
	TotalDue      int64            `json:"total_due"`
	TotalPaid     int64            `json:"total_paid"`
	Balance       int64            `json:"balance"`
	Services      []models.Service `json:"services"`
}

// Service settles and reverses payments against the entity store.
type Service struct {
	db     *database.DB
	bus    *events.Bus
	logger zerolog.Logger
}

// NewService creates a billing service. bus may be nil when no one
// listens for payment events.
func NewService(db *database.DB, bus *events.Bus, logger zerolog.Logger) *Service {
	return &Service{db: db, bus: bus, logger: logger}
}

// ComputeBalance returns the billing statement for a reservation. Room
// price, services and payments are read in one transaction so the three
// sums come from a single consistent snapshot. The balance is never
// cached; every call recomputes from source rows.
func (s *Service) ComputeBalance(ctx context.Context, reservationID int64) (*Statement, error) {
	var stmt *Statement
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		stmt, err = statementTx(ctx, tx, reservationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

// statementTx builds the statement inside an open transaction.
func statementTx(ctx context.Context, tx *sql.Tx, reservationID int64) (*Statement, error) {
	reservation, err := database.GetReservationTx(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}
	room, err := database.GetRoomTx(ctx, tx, reservation.RoomID)
	if err != nil {
		return nil, err
	}
	services, err := database.ListReservationServicesTx(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}
	totalPaid, err := database.SumReservationPaymentsTx(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}

	totalDue := room.Price
	for _, svc := range services {
		totalDue += svc.Price
	}

	return &Statement{
		ReservationID: reservationID,
		RoomPrice:     room.Price,
		TotalDue:      totalDue,
		TotalPaid:     totalPaid,
		Balance:       totalDue - totalPaid,
		Services:      services,
	}, nil
}

// Settle validates and records a payment of amount against the
// reservation, flipping its pending services to paid. Everything runs
// in one transaction: the balance is recomputed and the amount
// re-validated inside it, so two racing settlements cannot both pass
// the balance check. On infrastructure failure the transaction is
// rolled back and ErrProcessingFailed returned; no partial state is
// observable.
func (s *Service) Settle(ctx context.Context, reservationID, amount int64, method string) (*models.Payment, error) {
	if amount <= 0 {
		metrics.IncPaymentFailed("invalid_amount")
		return nil, ErrInvalidAmount
	}

	payment := &models.Payment{
		ReservationID: reservationID,
		Reference:     uuid.NewString(),
		Amount:        amount,
		Method:        method,
		PaidAt:        time.Now(),
	}
	var balanceAfter int64

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := statementTx(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		if amount > stmt.Balance {
			return &OverpaymentError{Amount: amount, Balance: stmt.Balance}
		}

		if err := database.InsertPaymentTx(ctx, tx, payment); err != nil {
			return err
		}
		if _, err := database.MarkPendingServicesPaidTx(ctx, tx, reservationID, payment.ID); err != nil {
			return err
		}

		balanceAfter = stmt.Balance - amount
		return nil
	})
	if err != nil {
		var overpayment *OverpaymentError
		switch {
		case errors.As(err, &overpayment):
			metrics.IncPaymentFailed("overpayment")
			return nil, err
		case errors.Is(err, database.ErrNotFound):
			metrics.IncPaymentFailed("not_found")
			return nil, err
		default:
			metrics.IncPaymentFailed("internal")
			s.logger.Error().Err(err).Int64("reservation_id", reservationID).Msg("payment settlement failed")
			return nil, ErrProcessingFailed
		}
	}

	metrics.IncPaymentSettled(method)
	s.logger.Info().
		Int64("payment_id", payment.ID).
		Int64("reservation_id", reservationID).
		Int64("amount", amount).
		Str("method", method).
		Msg("payment settled")

	s.publish(events.TypePaymentSettled, payment, balanceAfter)
	return payment, nil
}

// DeletePayment removes a payment and reverts the services it settled
// back to pending, in one transaction.
func (s *Service) DeletePayment(ctx context.Context, paymentID int64) error {
	var payment *models.Payment
	var balanceAfter int64

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		payment, err = database.GetPaymentTx(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if _, err := database.RevertServicesForPaymentTx(ctx, tx, paymentID); err != nil {
			return err
		}
		if err := database.DeletePaymentTx(ctx, tx, paymentID); err != nil {
			return err
		}
		stmt, err := statementTx(ctx, tx, payment.ReservationID)
		if err != nil {
			return err
		}
		balanceAfter = stmt.Balance
		return nil
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return err
		}
		s.logger.Error().Err(err).Int64("payment_id", paymentID).Msg("payment deletion failed")
		return ErrProcessingFailed
	}

	metrics.IncPaymentDeleted()
	s.logger.Info().
		Int64("payment_id", paymentID).
		Int64("reservation_id", payment.ReservationID).
		Msg("payment deleted")

	s.publish(events.TypePaymentDeleted, payment, balanceAfter)
	return nil
}

func (s *Service) publish(eventType string, p *models.Payment, balance int64) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Event{
		Type: eventType,
		Payload: events.PaymentEvent{
			PaymentID:     p.ID,
			ReservationID: p.ReservationID,
			Reference:     p.Reference,
			Amount:        p.Amount,
			Method:        p.Method,
			Balance:       balance,
		},
	})
}
