// Package server exposes the derived menu list over HTTP.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pankajredekar/lemonmenu/internal/model"
	"github.com/pankajredekar/lemonmenu/internal/presenter"
)

// SnapshotSource returns the latest cached records
type SnapshotSource interface {
	Records() []model.MenuRecord
}

// MenuItem is one rendered row. FormattedPrice is the price as displayed,
// with two decimals.
type MenuItem struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	Price          float64 `json:"price"`
	FormattedPrice string  `json:"formatted_price"`
}

// MenuResponse is the body of GET /menu
type MenuResponse struct {
	SortByName   bool       `json:"sort_by_name"`
	SearchPhrase string     `json:"search_phrase"`
	Items        []MenuItem `json:"items"`
}

// ServerOption configures the HTTP server
type ServerOption func(*serverConfig)

type serverConfig struct {
	middlewares []func(http.Handler) http.Handler
	logger      *slog.Logger
}

// WithMiddlewares adds middleware to the server
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithLogger sets the request logger
func WithLogger(logger *slog.Logger) ServerOption {
	return func(cfg *serverConfig) {
		cfg.logger = logger
	}
}

// NewServer creates the router serving the menu from source
func NewServer(source SnapshotSource, opts ...ServerOption) *chi.Mux {
	cfg := &serverConfig{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()
	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}
	r.Use(loggingMiddleware(cfg.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/menu", menuHandler(source))

	return r
}

// menuHandler renders the list for ?sort=name&search=<phrase>
func menuHandler(source SnapshotSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		state := presenter.ViewState{SearchPhrase: q.Get("search")}

		switch sort := q.Get("sort"); sort {
		case "", "none":
		case "name":
			state.SortByName = true
		default:
			if on, err := strconv.ParseBool(sort); err == nil {
				state.SortByName = on
				break
			}
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sort must be 'name' or 'none'"})
			return
		}

		records := presenter.Derive(source.Records(), state)
		items := make([]MenuItem, len(records))
		for i, rec := range records {
			items[i] = MenuItem{
				ID:             rec.ID,
				Title:          rec.Title,
				Price:          rec.Price,
				FormattedPrice: rec.FormattedPrice(),
			}
		}

		writeJSON(w, http.StatusOK, MenuResponse{
			SortByName:   state.SortByName,
			SearchPhrase: state.SearchPhrase,
			Items:        items,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Debug("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
