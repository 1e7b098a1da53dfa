package api

import "net/http"

func (s *Server) handleScorerStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "scorer stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"backend": s.cfg.Scorer,
		"stats":   s.stats.Snapshot(),
	})
}
