package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ilkoid/pixelbros-assets/pkg/utils"
)

const (
	defaultFeatured = 4
	defaultStripMin = 10
	defaultStripMax = 14
	maxQueryLimit   = 1000
	requestTimeout  = 10 * time.Second
)

// NewRouter собирает маршруты. metrics может быть nil.
func NewRouter(svc *Service, metrics *Metrics) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(metrics.Middleware)
	r.Use(middleware.Timeout(requestTimeout))

	h := &handler{svc: svc}

	r.Route("/api/portfolio", func(r chi.Router) {
		r.Get("/", h.index)
		r.Get("/categories", h.categories)
		r.Get("/projects", h.projects)
		r.Get("/projects/{slug}", h.project)
		r.Get("/covers", h.covers)
		r.Get("/featured", h.featured)
	})

	r.Get("/healthz", h.health)
	if metrics != nil {
		r.Handle("/metrics", metrics.Handler())
	}

	return r
}

type handler struct {
	svc *Service
}

// GET /api/portfolio
func (h *handler) index(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Index())
}

// GET /api/portfolio/categories
func (h *handler) categories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, nonNil(h.svc.Index().Categories))
}

// GET /api/portfolio/projects?category=<id>
func (h *handler) projects(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	respondJSON(w, http.StatusOK, nonNil(h.svc.Index().ProjectsIn(category)))
}

// GET /api/portfolio/projects/{slug}
func (h *handler) project(w http.ResponseWriter, r *http.Request) {
	slugValue := chi.URLParam(r, "slug")
	p, found := h.svc.Index().Lookup(slugValue)
	if !found {
		respondError(w, http.StatusNotFound, "project not found")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// GET /api/portfolio/covers?limit=N[&strip=1]
//
// strip=1 отдаёт ленту для главной: минимум 10, максимум limit (14 по умолчанию).
func (h *handler) covers(w http.ResponseWriter, r *http.Request) {
	idx := h.svc.Index()

	if r.URL.Query().Get("strip") == "1" {
		limit, ok := intParam(w, r, "limit", defaultStripMax)
		if !ok {
			return
		}
		respondJSON(w, http.StatusOK, idx.CoverStrip(defaultStripMin, limit))
		return
	}

	limit, ok := intParam(w, r, "limit", 0)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, idx.Covers(limit))
}

// GET /api/portfolio/featured?n=4
func (h *handler) featured(w http.ResponseWriter, r *http.Request) {
	n, ok := intParam(w, r, "n", defaultFeatured)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, nonNil(h.svc.Index().Featured(n)))
}

// GET /healthz
func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	idx := h.svc.Index()
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"projects": len(idx.Projects),
		"loadedAt": h.svc.LoadedAt().UTC().Format(time.RFC3339),
	})
}

func intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > maxQueryLimit {
		respondError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return n, true
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		utils.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(started),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		utils.Error("Failed to encode response", "error", err)
	}
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
