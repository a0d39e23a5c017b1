package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Seiiyes/HotelReservation/internal/metrics"
	"github.com/Seiiyes/HotelReservation/internal/models"
)

const (
	dateLayout = "2006-01-02"

	// maxAvailabilityDays caps the availability calendar range.
	maxAvailabilityDays = 90
)

type roomRequest struct {
	Type      string `json:"type"`
	Capacity  int    `json:"capacity"`
	Price     int64  `json:"price"`
	Available bool   `json:"available"`
}

func (req *roomRequest) validate() string {
	switch {
	case strings.TrimSpace(req.Type) == "":
		return "type is required"
	case req.Capacity <= 0:
		return "capacity must be positive"
	case req.Price <= 0:
		return "price must be positive"
	}
	return ""
}

func (s *HTTPServer) handleListRooms(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("rooms_list")
	rooms, err := s.db.ListRooms(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (s *HTTPServer) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("rooms_create")
	var req roomRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	room := &models.Room{
		Type:      req.Type,
		Capacity:  req.Capacity,
		Price:     req.Price,
		Available: req.Available,
	}
	if err := s.db.CreateRoom(r.Context(), room); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

func (s *HTTPServer) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("rooms_get")
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	room, err := s.db.GetRoom(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *HTTPServer) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("rooms_update")
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req roomRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	room := &models.Room{
		ID:        id,
		Type:      req.Type,
		Capacity:  req.Capacity,
		Price:     req.Price,
		Available: req.Available,
	}
	if err := s.db.UpdateRoom(r.Context(), room); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *HTTPServer) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("rooms_delete")
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.db.DeleteRoom(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DateAvailability is one calendar day in the availability response.
// A day is unavailable when a reservation night covers it.
type DateAvailability struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
}

// RoomAvailabilityResponse is the response for the availability
// calendar endpoint.
type RoomAvailabilityResponse struct {
	RoomID int64              `json:"room_id"`
	Days   []DateAvailability `json:"days"`
}

// handleRoomAvailability returns the per-day availability of a room
// within ?from=YYYY-MM-DD&to=YYYY-MM-DD (to exclusive). Responses are
// served from the Redis cache when configured.
func (s *HTTPServer) handleRoomAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("rooms_availability")
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	from, to, err := parseDateRange(fromStr, toStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := s.db.GetRoom(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}

	key := availabilityKey(id, fromStr, toStr)
	var resp RoomAvailabilityResponse
	if s.cache.Get(r.Context(), key, &resp) {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	reservations, err := s.db.ListRoomReservations(r.Context(), id, from, to)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp = RoomAvailabilityResponse{RoomID: id}
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		night := d
		booked := false
		for i := range reservations {
			if reservations[i].Overlaps(night, night.AddDate(0, 0, 1)) {
				booked = true
				break
			}
		}
		resp.Days = append(resp.Days, DateAvailability{
			Date:      d.Format(dateLayout),
			Available: !booked,
		})
	}

	s.cache.Set(r.Context(), key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func parseDateRange(fromStr, toStr string) (from, to time.Time, err error) {
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("from and to are required")
	}
	from, err = time.Parse(dateLayout, fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid from date; expected YYYY-MM-DD")
	}
	to, err = time.Parse(dateLayout, toStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid to date; expected YYYY-MM-DD")
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to must be after from")
	}
	if int(to.Sub(from).Hours()/24) > maxAvailabilityDays {
		return time.Time{}, time.Time{}, fmt.Errorf("date range exceeds maximum of %d days", maxAvailabilityDays)
	}
	return from, to, nil
}
