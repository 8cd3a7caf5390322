package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"contestatii/internal/report"
	"contestatii/pkg/types"
)

// handleReport renders the proces-verbal PDF for every complaint matching
// the filter in the body.
func (s *Service) handleReport(w http.ResponseWriter, r *http.Request) {
	var filter types.ComplaintFilter
	if !s.decodeAndValidate(w, r, &filter, "") {
		return
	}

	rows, err := s.complaints.FilterComplaints(r.Context(), &filter)
	if err != nil {
		s.logger.WithError(err).Error("failed to filter complaints for report")
		s.writeError(w, http.StatusInternalServerError, "A apărut o eroare la generarea raportului")
		return
	}

	if len(rows) == 0 {
		s.writeError(w, http.StatusNotFound, "Nu s-au găsit contestații pentru filtrele selectate")
		return
	}

	var buf bytes.Buffer
	if err := s.reports.Render(&buf, rows); err != nil {
		s.logger.WithError(err).Error("failed to render report")
		s.writeError(w, http.StatusInternalServerError, "A apărut o eroare la generarea raportului")
		return
	}

	s.metrics.reportsGenerated.Inc()

	if s.archive != nil {
		key, err := s.archive.Store(r.Context(), buf.Bytes())
		if err != nil {
			s.logger.WithError(err).Warn("failed to archive report")
		} else {
			w.Header().Set("X-Report-Key", key)
		}
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(time.Now())))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)

	if _, err := buf.WriteTo(w); err != nil {
		s.logger.WithError(err).Warn("failed to write report")
	}
}
