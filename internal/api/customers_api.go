package api

import (
	"net/http"
	"strings"

	"github.com/Seiiyes/HotelReservation/internal/metrics"
	"github.com/Seiiyes/HotelReservation/internal/models"
)

type customerRequest struct {
	DocumentID string `json:"document_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

func (req *customerRequest) validate() string {
	switch {
	case strings.TrimSpace(req.DocumentID) == "":
		return "document_id is required"
	case strings.TrimSpace(req.FirstName) == "":
		return "first_name is required"
	case strings.TrimSpace(req.LastName) == "":
		return "last_name is required"
	case strings.TrimSpace(req.Email) == "":
		return "email is required"
	}
	return ""
}

func (s *HTTPServer) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("customers_list")
	customers, err := s.db.ListCustomers(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (s *HTTPServer) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("customers_create")
	var req customerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	customer := &models.Customer{
		DocumentID: req.DocumentID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
	}
	if err := s.db.CreateCustomer(r.Context(), customer); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (s *HTTPServer) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("customers_get")
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	customer, err := s.db.GetCustomer(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (s *HTTPServer) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("customers_update")
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req customerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	customer := &models.Customer{
		ID:         id,
		DocumentID: req.DocumentID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
	}
	if err := s.db.UpdateCustomer(r.Context(), customer); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (s *HTTPServer) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("customers_delete")
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.db.DeleteCustomer(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
