package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iudanet/studyroom/internal/server/handlers"
	"github.com/iudanet/studyroom/internal/server/middleware"
)

// Handlers собирает обработчики маршрутов сервера
type Handlers struct {
	Rooms  *handlers.RoomHandler
	Upload *handlers.UploadHandler
	WS     *handlers.WSHandler
	Health *handlers.HealthHandler
}

// NewRouter creates the HTTP router. limiter may be nil to disable rate limiting.
func NewRouter(logger *slog.Logger, h Handlers, limiter *middleware.PathRateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Metrics first to capture all requests
	r.Use(middleware.Metrics)
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(logger, "/health", "/metrics"))
	r.Use(middleware.Recovery(logger))

	// Комнаты открыты по коду, клиенты подключаются с любого origin
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", h.Health.Health)

	r.Route("/api", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		r.Post("/create_room", h.Rooms.CreateRoom)
		r.Post("/join_room", h.Rooms.JoinRoom)
		r.Post("/upload_pdf", h.Upload.Upload)
	})

	r.Get("/uploads/{filename}", h.Upload.ServeFile)
	r.Get("/room/{code}", h.Rooms.RoomInfo)
	r.Get("/ws", h.WS.Serve)

	return r
}
