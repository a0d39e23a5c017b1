package booking

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Seiiyes/HotelReservation/internal/database"
	"github.com/Seiiyes/HotelReservation/internal/events"
	"github.com/Seiiyes/HotelReservation/internal/metrics"
	"github.com/Seiiyes/HotelReservation/internal/models"
)

const dateLayout = "2006-01-02"

// Service applies the booking rules around reservation writes.
type Service struct {
	db        *database.DB
	validator *Validator
	bus       *events.Bus
	logger    zerolog.Logger
}

// NewService creates a booking service. bus may be nil when no one
// listens for reservation events.
func NewService(db *database.DB, bus *events.Bus, logger zerolog.Logger) *Service {
	return &Service{
		db:        db,
		validator: NewValidator(db),
		bus:       bus,
		logger:    logger,
	}
}

// Validator exposes the underlying validator for read-only checks.
func (s *Service) Validator() *Validator { return s.validator }

// Create validates and stores a new reservation. Rule violations come
// back as ValidationErrors with a nil general error.
func (s *Service) Create(ctx context.Context, r *models.Reservation) (ValidationErrors, error) {
	r.ID = 0
	errs, err := s.validator.Validate(ctx, r)
	if err != nil {
		return nil, err
	}
	if !errs.Empty() {
		s.countRejections(errs)
		return errs, nil
	}

	if err := s.db.CreateReservation(ctx, r); err != nil {
		return nil, err
	}

	metrics.IncReservationCreated()
	s.logger.Info().
		Int64("reservation_id", r.ID).
		Int64("room_id", r.RoomID).
		Int64("customer_id", r.CustomerID).
		Msg("reservation created")

	s.publish(events.TypeReservationCreated, r)
	return nil, nil
}

// Update validates and applies changes to an existing reservation using
// optimistic concurrency: the caller's Version must match the stored
// one or database.ErrVersionConflict is returned. A past check-in on an
// existing reservation is not an error; the stay may already have
// started.
func (s *Service) Update(ctx context.Context, r *models.Reservation) (ValidationErrors, error) {
	if r.ID == 0 {
		return nil, database.ErrNotFound
	}
	errs, err := s.validator.Validate(ctx, r)
	if err != nil {
		return nil, err
	}
	if !errs.Empty() {
		s.countRejections(errs)
		return errs, nil
	}

	if err := s.db.UpdateReservationWithVersion(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("reservation_id", r.ID).Msg("reservation updated")
	s.publish(events.TypeReservationUpdated, r)
	return nil, nil
}

// Delete removes a reservation. Reservations with payments or services
// cannot be deleted; database.ErrConflict is returned for the caller
// to translate into a user-facing message.
func (s *Service) Delete(ctx context.Context, id int64) error {
	r, err := s.db.GetReservation(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.DeleteReservation(ctx, id); err != nil {
		if errors.Is(err, database.ErrConflict) {
			s.logger.Warn().Int64("reservation_id", id).Msg("delete blocked by dependent records")
		}
		return err
	}

	s.logger.Info().Int64("reservation_id", id).Msg("reservation deleted")
	s.publish(events.TypeReservationDeleted, r)
	return nil
}

func (s *Service) countRejections(errs ValidationErrors) {
	for _, fe := range errs {
		rule := fe.Field
		if rule == "" {
			rule = "availability"
		}
		metrics.IncReservationRejected(rule)
	}
}

func (s *Service) publish(eventType string, r *models.Reservation) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Event{
		Type: eventType,
		Payload: events.ReservationEvent{
			ReservationID: r.ID,
			CustomerID:    r.CustomerID,
			RoomID:        r.RoomID,
			CheckIn:       r.CheckIn.Format(dateLayout),
			CheckOut:      r.CheckOut.Format(dateLayout),
		},
	})
}
