package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jaminalder/timetravel-tic-tac-toe/internal/app"
)

type Config struct {
	Logger    *zap.Logger
	Heartbeat time.Duration
	// Metrics is served on /metrics when set.
	Metrics http.Handler
}

var defaultHeartbeat = 15 * time.Second

// NewServer wires routes and returns an http.Handler. It also makes the service
// broadcast rendered board fragments.
func NewServer(s *app.Service, cfg Config) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = defaultHeartbeat
	}
	h := &handlers{svc: s, tpl: loadTemplates(), log: cfg.Logger, heartbeat: cfg.Heartbeat}
	s.SetRenderer(func(gs app.GameState) []byte { return h.renderBoard(gs, "") })

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/", h.index)
	r.Get("/healthz", h.healthz)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Get("/state", h.state)
		r.Post("/play", h.play)
		r.Post("/jump", h.jump)
		r.Post("/restart", h.restart)
		r.Get("/events", h.events)
	})
	return r
}

// requestLogger logs one line per request with zap.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
