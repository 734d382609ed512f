package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"eumenides/internal/domain"
	"eumenides/internal/ports"
	"eumenides/internal/usecase"
)

const defaultListLimit = 100

// Server exposes the thin read-only surface over flagged accounts.
type Server struct {
	list   *usecase.ListFlagged
	repo   ports.AccountRepository
	logger *slog.Logger
}

// NewServer wires the listing use case and the repository for lookups.
func NewServer(list *usecase.ListFlagged, repo ports.AccountRepository, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{list: list, repo: repo, logger: logger}
}

// Routes returns the chi router for the /api surface.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/api/flags", s.handleListFlags)
	r.Post("/api/report/{platform}/{handle}", s.handleMarkForReview)
	return r
}

func (s *Server) handleListFlags(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	views, err := s.list.Execute(r.Context(), limit)
	if err != nil {
		s.logger.Error("list flags failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleMarkForReview(w http.ResponseWriter, r *http.Request) {
	platform := chi.URLParam(r, "platform")
	handle := domain.NewHandle(chi.URLParam(r, "handle")).Normalized()

	if _, err := s.repo.Find(r.Context(), platform, handle); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "not found")
			return
		}
		s.logger.Error("lookup failed", "platform", platform, "handle", handle, "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":   "marked_for_manual_review",
		"platform": platform,
		"handle":   handle,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
