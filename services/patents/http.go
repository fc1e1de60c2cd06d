package patents

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"patsearch-backend/lib/scrapers/patentscope"

	"github.com/go-chi/chi/v5"
)

// RegisterHTTP mounts the search API on a chi router.
func (s *Service) RegisterHTTP(r chi.Router) {
	r.Post("/api/v1/search", s.handleSearch)
	r.Get("/api/v1/patent/{id}", s.handleDetail)
	r.Get("/api/v1/stats", s.handleStats)
	r.Get("/api/v1/health", s.handleHealth)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("failed to encode response", "err", err)
	}
}

type errorBody struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	body := errorBody{Status: "error", Error: err.Error()}
	var ve *patentscope.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
	}
	writeJSON(w, status, body)
}

func (s *Service) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	response, err := s.Search(r.Context(), req)
	if err != nil {
		var ve *patentscope.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Service) handleDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := s.Detail(r.Context(), id)
	switch {
	case errors.Is(err, patentscope.ErrPatentNotFound):
		writeError(w, http.StatusNotFound, err)
	case err != nil:
		var ve *patentscope.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusBadGateway, err)
	default:
		writeJSON(w, http.StatusOK, detail)
	}
}

func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"patent_count": stats.PatentCount,
		"search_count": stats.SearchCount,
		"last_search":  stats.LastSearch,
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
