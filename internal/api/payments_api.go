package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/Seiiyes/HotelReservation/internal/metrics"
	"github.com/Seiiyes/HotelReservation/internal/models"
)

type serviceRequest struct {
	ReservationID int64  `json:"reservation_id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         int64  `json:"price"`
}

func (req *serviceRequest) validate(needsReservation bool) string {
	switch {
	case needsReservation && req.ReservationID <= 0:
		return "reservation_id is required"
	case strings.TrimSpace(req.Name) == "":
		return "name is required"
	case req.Price <= 0:
		return "price must be positive"
	}
	return ""
}

func (s *HTTPServer) handleCreateService(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("services_create")
	var req serviceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := req.validate(true); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	service := &models.Service{
		ReservationID: req.ReservationID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
	}
	if err := s.db.CreateService(r.Context(), service); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, service)
}

func (s *HTTPServer) handleGetService(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("services_get")
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	service, err := s.db.GetService(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service)
}

func (s *HTTPServer) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("services_update")
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req serviceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := req.validate(false); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	service := &models.Service{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	}
	if err := s.db.UpdateService(r.Context(), service); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service)
}

func (s *HTTPServer) handleDeleteService(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("services_delete")
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.db.DeleteService(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListPayments returns all payments filtered by
// ?from=YYYY-MM-DD&to=YYYY-MM-DD&method=... (all optional, to
// exclusive), newest first.
func (s *HTTPServer) handleListPayments(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("payments_list")

	var from, to time.Time
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date; expected YYYY-MM-DD")
			return
		}
		from = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date; expected YYYY-MM-DD")
			return
		}
		to = t
	}

	payments, err := s.db.ListPayments(r.Context(), from, to, q.Get("method"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

type paymentRequest struct {
	ReservationID int64  `json:"reservation_id"`
	Amount        int64  `json:"amount"`
	Method        string `json:"method"`
}

// handleSettlePayment records a payment against a reservation. The
// billing service validates the amount against the outstanding balance
// and settles atomically.
func (s *HTTPServer) handleSettlePayment(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("payments_settle")
	var req paymentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ReservationID <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "reservation_id is required")
		return
	}
	if strings.TrimSpace(req.Method) == "" {
		writeError(w, http.StatusUnprocessableEntity, "method is required")
		return
	}

	payment, err := s.billing.Settle(r.Context(), req.ReservationID, req.Amount, req.Method)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

func (s *HTTPServer) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("payments_get")
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	payment, err := s.db.GetPayment(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

// handleDeletePayment removes a payment, reverting the services it
// settled to pending.
func (s *HTTPServer) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("payments_delete")
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.billing.DeletePayment(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
