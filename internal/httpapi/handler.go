package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"FeedMonitor/internal/domain"
	"FeedMonitor/internal/feeds"
	"FeedMonitor/internal/infrastructure/storage"
	"FeedMonitor/internal/ports"
	"FeedMonitor/internal/usecase"
	"FeedMonitor/pkg/resilience"
)

// Handler exposes the administrative API: feed management, on-demand
// processing, and match queries.
type Handler struct {
	registry *feeds.Registry
	runner   *usecase.Runner
	matches  ports.MatchRepository
	policy   resilience.Policy
	logger   *slog.Logger
}

// New creates the handler.
func New(registry *feeds.Registry, runner *usecase.Runner, matches ports.MatchRepository,
	policy resilience.Policy, logger *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		runner:   runner,
		matches:  matches,
		policy:   policy,
		logger:   logger,
	}
}

// Router builds the chi router with all routes registered.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(h.requestLogger)

	r.Get("/feeds", h.handleListFeeds)
	r.Post("/feeds", h.handleAddFeed)
	r.Post("/process", h.handleProcess)
	r.Get("/matches", h.handleQueryMatches)
	r.Get("/matches/stats", h.handleMatchStats)
	r.Post("/matches/{id}/action", h.handleActionMatch)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.logger.Info("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleListFeeds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Snapshot())
}

type addFeedRequest struct {
	URL      string   `json:"url"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
}

func (h *Handler) handleAddFeed(w http.ResponseWriter, r *http.Request) {
	var req addFeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "URL and name are required")
		return
	}

	added := h.registry.Add(domain.FeedConfig{
		URL:      req.URL,
		Name:     req.Name,
		Category: req.Category,
		Keywords: req.Keywords,
	})

	h.logger.Info("feed added", "name", added.Name, "url", added.URL)
	writeJSON(w, http.StatusCreated, added)
}

func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	report, err := h.runner.RunCycle(r.Context())
	if errors.Is(err, usecase.ErrCycleInProgress) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"report":  report,
	})
}

func (h *Handler) handleQueryMatches(w http.ResponseWriter, r *http.Request) {
	var filter domain.MatchFilter
	if raw := r.URL.Query().Get("minScore"); raw != "" {
		minScore, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid minScore")
			return
		}
		filter.MinScore = minScore
	}
	filter.UserID = r.URL.Query().Get("userId")
	filter.MarkID = r.URL.Query().Get("markId")

	matches, err := resilience.Do(r.Context(), h.policy, func(ctx context.Context) ([]domain.Match, error) {
		return h.matches.Query(ctx, filter)
	})
	if err != nil {
		h.logger.Error("query matches failed", "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	if matches == nil {
		matches = []domain.Match{}
	}
	writeJSON(w, http.StatusOK, matches)
}

func (h *Handler) handleActionMatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rel, err := resilience.Do(r.Context(), h.policy, func(ctx context.Context) (domain.MatchRelation, error) {
		rel, err := h.matches.MarkActioned(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			// A missing row will not appear on retry.
			return rel, resilience.Permanent(err)
		}
		return rel, err
	})
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "match not found")
		return
	}
	if err != nil {
		h.logger.Error("action match failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "update failed")
		return
	}

	writeJSON(w, http.StatusOK, rel)
}

func (h *Handler) handleMatchStats(w http.ResponseWriter, r *http.Request) {
	stats, err := resilience.Do(r.Context(), h.policy, func(ctx context.Context) (domain.MatchStats, error) {
		return h.matches.Stats(ctx)
	})
	if err != nil {
		h.logger.Error("match stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
