package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Seiiyes/HotelReservation/internal/metrics"
	"github.com/Seiiyes/HotelReservation/internal/reports"
)

// handlePaymentsReport returns the payments report filtered by
// ?from=YYYY-MM-DD&to=YYYY-MM-DD&method=... (all optional, to
// exclusive). With ?format=xlsx the report is returned as an Excel
// workbook.
func (s *HTTPServer) handlePaymentsReport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reports_payments")

	var filter reports.Filter
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date; expected YYYY-MM-DD")
			return
		}
		filter.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date; expected YYYY-MM-DD")
			return
		}
		filter.To = t
	}
	filter.Method = q.Get("method")

	rows, err := s.reports.Rows(r.Context(), filter)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if q.Get("format") == "xlsx" {
		filename := fmt.Sprintf("payments_%s.xlsx", time.Now().Format(dateLayout))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		if err := reports.WriteExcel(w, rows); err != nil {
			s.logger.Error().Err(err).Msg("excel export failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rows":  rows,
		"total": reports.Total(rows),
	})
}
