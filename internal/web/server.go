package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/MetalTurtle18/tic-tac-toe/internal/app"
	"github.com/MetalTurtle18/tic-tac-toe/internal/view"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const defaultHeartbeat = 15 * time.Second

// NewServer wires routes, installs the fragment renderer on s for SSE
// broadcasts, and returns an http.Handler.
func NewServer(s *app.Service, logger *slog.Logger, heartbeat time.Duration) http.Handler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "web")
	h := &handlers{svc: s, tpl: loadTemplates(), log: log, heartbeat: heartbeat}
	s.SetRenderer(h.renderGame)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/", h.index)
	r.Get("/healthz", h.healthz)
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.page)
		r.Post("/move", h.action(view.Move, "i"))
		r.Post("/jump", h.action(view.Jump, "step"))
		r.Post("/toggle", h.action(view.Toggle, ""))
		r.Get("/events", h.events)
	})
	return r
}

// requestLogger logs one line per request once the handler returns.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Debug("request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
