package web

import (
	"fmt"
	"net/http"
	"strings"

	"journey/internal/keepsake"
)

// GET /keepsake.txt
func (s *Server) handleKeepsakeText(w http.ResponseWriter, r *http.Request) {
	v, _, err := s.getOrCreateVisitor(r.Context(), w, r)
	if err != nil {
		http.Error(w, "failed to load journey", http.StatusInternalServerError)
		return
	}
	tr := v.ctrl.ExportTranscript(r.URL.Query().Get("closing"))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", tr.Filename))
	if _, err := w.Write([]byte(tr.Body)); err != nil {
		s.logger().Warn("keepsake write failed", "error", err)
	}
}

// GET /keepsake.pdf
func (s *Server) handleKeepsakePDF(w http.ResponseWriter, r *http.Request) {
	v, _, err := s.getOrCreateVisitor(r.Context(), w, r)
	if err != nil {
		http.Error(w, "failed to load journey", http.StatusInternalServerError)
		return
	}
	tr := v.ctrl.ExportTranscript(r.URL.Query().Get("closing"))
	pdf, err := keepsake.Generate(s.Catalog, v.ctrl.Snapshot(), r.URL.Query().Get("closing"), tr.Date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	name := strings.TrimSuffix(tr.Filename, ".txt") + ".pdf"
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := w.Write(pdf); err != nil {
		s.logger().Warn("keepsake write failed", "error", err)
	}
}
