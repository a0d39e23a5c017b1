// Package api exposes the reservation core over JSON HTTP for the UI
// layer.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Seiiyes/HotelReservation/internal/billing"
	"github.com/Seiiyes/HotelReservation/internal/booking"
	"github.com/Seiiyes/HotelReservation/internal/database"
	"github.com/Seiiyes/HotelReservation/internal/reports"
)

// HTTPServer carries the handler dependencies.
type HTTPServer struct {
	db      *database.DB
	booking *booking.Service
	billing *billing.Service
	reports *reports.Service
	cache   *Cache
	logger  zerolog.Logger
	srv     *http.Server
}

// Options configures the HTTP server.
type Options struct {
	Port             int
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
}

// NewHTTPServer wires routes and middleware. cache may be nil to
// disable availability caching.
func NewHTTPServer(
	opts Options,
	db *database.DB,
	bookingSvc *booking.Service,
	billingSvc *billing.Service,
	reportsSvc *reports.Service,
	cache *Cache,
	logger zerolog.Logger,
) *HTTPServer {
	s := &HTTPServer{
		db:      db,
		booking: bookingSvc,
		billing: billingSvc,
		reports: reportsSvc,
		cache:   cache,
		logger:  logger,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/customers", s.handleListCustomers)
	mux.HandleFunc("POST /api/customers", s.handleCreateCustomer)
	mux.HandleFunc("GET /api/customers/{id}", s.handleGetCustomer)
	mux.HandleFunc("PUT /api/customers/{id}", s.handleUpdateCustomer)
	mux.HandleFunc("DELETE /api/customers/{id}", s.handleDeleteCustomer)

	mux.HandleFunc("GET /api/rooms", s.handleListRooms)
	mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /api/rooms/{id}", s.handleGetRoom)
	mux.HandleFunc("PUT /api/rooms/{id}", s.handleUpdateRoom)
	mux.HandleFunc("DELETE /api/rooms/{id}", s.handleDeleteRoom)
	mux.HandleFunc("GET /api/rooms/{id}/availability", s.handleRoomAvailability)

	mux.HandleFunc("GET /api/reservations", s.handleListReservations)
	mux.HandleFunc("POST /api/reservations", s.handleCreateReservation)
	mux.HandleFunc("GET /api/reservations/{id}", s.handleGetReservation)
	mux.HandleFunc("PUT /api/reservations/{id}", s.handleUpdateReservation)
	mux.HandleFunc("DELETE /api/reservations/{id}", s.handleDeleteReservation)
	mux.HandleFunc("GET /api/reservations/{id}/balance", s.handleReservationBalance)
	mux.HandleFunc("GET /api/reservations/{id}/services", s.handleListReservationServices)
	mux.HandleFunc("GET /api/reservations/{id}/payments", s.handleListReservationPayments)

	mux.HandleFunc("POST /api/services", s.handleCreateService)
	mux.HandleFunc("GET /api/services/{id}", s.handleGetService)
	mux.HandleFunc("PUT /api/services/{id}", s.handleUpdateService)
	mux.HandleFunc("DELETE /api/services/{id}", s.handleDeleteService)

	mux.HandleFunc("GET /api/payments", s.handleListPayments)
	mux.HandleFunc("POST /api/payments", s.handleSettlePayment)
	mux.HandleFunc("GET /api/payments/{id}", s.handleGetPayment)
	mux.HandleFunc("DELETE /api/payments/{id}", s.handleDeletePayment)

	mux.HandleFunc("GET /api/reports/payments", s.handlePaymentsReport)

	handler := s.withRequestID(s.withLogging(mux))
	if opts.RateLimitEnabled {
		handler = s.withRateLimit(handler, opts.RateLimitRPS, opts.RateLimitBurst)
	}

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(ctxShutdown)
	}()

	s.logger.Info().Str("addr", s.srv.Addr).Msg("API server started")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeValidationErrors(w http.ResponseWriter, errs booking.ValidationErrors) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errs})
}

// writeDomainError maps store and billing errors onto HTTP statuses.
// Unexpected errors become a generic 500; details only go to the log.
func (s *HTTPServer) writeDomainError(w http.ResponseWriter, err error) {
	var overpayment *billing.OverpaymentError
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, database.ErrVersionConflict):
		writeError(w, http.StatusConflict, "the record was modified by another user; reload and retry")
	case errors.Is(err, database.ErrConflict):
		writeError(w, http.StatusConflict, "the record has dependent payments or services and cannot be deleted")
	case errors.Is(err, billing.ErrInvalidAmount):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &overpayment):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, billing.ErrProcessingFailed):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id")
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
