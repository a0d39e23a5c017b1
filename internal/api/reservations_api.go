package api

import (
	"net/http"
	"time"

	"github.com/Seiiyes/HotelReservation/internal/metrics"
	"github.com/Seiiyes/HotelReservation/internal/models"
)

type reservationRequest struct {
	CustomerID int64  `json:"customer_id"`
	RoomID     int64  `json:"room_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Version    int64  `json:"version,omitempty"`
}

// toModel parses the request dates. Unparseable dates stay zero so the
// validator reports them as missing.
func (req *reservationRequest) toModel(id int64) *models.Reservation {
	r := &models.Reservation{
		ID:         id,
		CustomerID: req.CustomerID,
		RoomID:     req.RoomID,
		Version:    req.Version,
	}
	if t, err := time.Parse(dateLayout, req.CheckIn); err == nil {
		r.CheckIn = t
	}
	if t, err := time.Parse(dateLayout, req.CheckOut); err == nil {
		r.CheckOut = t
	}
	return r
}

func (s *HTTPServer) handleListReservations(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservations_list")
	reservations, err := s.db.ListReservations(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservations)
}

func (s *HTTPServer) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservations_create")
	var req reservationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	reservation := req.toModel(0)
	errs, err := s.booking.Create(r.Context(), reservation)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if !errs.Empty() {
		writeValidationErrors(w, errs)
		return
	}

	s.cache.InvalidateRoom(r.Context(), reservation.RoomID)
	writeJSON(w, http.StatusCreated, reservation)
}

func (s *HTTPServer) handleGetReservation(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservations_get")
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	reservation, err := s.db.GetReservation(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (s *HTTPServer) handleUpdateReservation(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservations_update")
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req reservationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// The previous room is invalidated too in case the edit moved the
	// stay to a different room.
	previous, err := s.db.GetReservation(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	reservation := req.toModel(id)
	errs, err := s.booking.Update(r.Context(), reservation)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if !errs.Empty() {
		writeValidationErrors(w, errs)
		return
	}

	s.cache.InvalidateRoom(r.Context(), previous.RoomID)
	if reservation.RoomID != previous.RoomID {
		s.cache.InvalidateRoom(r.Context(), reservation.RoomID)
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (s *HTTPServer) handleDeleteReservation(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservations_delete")
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	reservation, err := s.db.GetReservation(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := s.booking.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.cache.InvalidateRoom(r.Context(), reservation.RoomID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleReservationBalance(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservations_balance")
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	statement, err := s.billing.ComputeBalance(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statement)
}

func (s *HTTPServer) handleListReservationServices(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservations_services")
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	services, err := s.db.ListReservationServices(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, services)
}

func (s *HTTPServer) handleListReservationPayments(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservations_payments")
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	payments, err := s.db.ListReservationPayments(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}
