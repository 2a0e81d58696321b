// Package server собирает room server: хранилище, шину событий, hub и HTTP маршруты.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/iudanet/studyroom/internal/server/bus"
	"github.com/iudanet/studyroom/internal/server/config"
	"github.com/iudanet/studyroom/internal/server/handlers"
	"github.com/iudanet/studyroom/internal/server/hub"
	"github.com/iudanet/studyroom/internal/server/middleware"
	"github.com/iudanet/studyroom/internal/server/storage/sqlite"
)

// redisChannel канал pub/sub для событий комнат
const redisChannel = "studyroom:events"

// Server room server со всеми зависимостями
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *sqlite.Storage
	bus     bus.Bus
	hub     *hub.Hub
	limiter *middleware.PathRateLimiter
	http    *http.Server
}

// New открывает хранилище, подключает шину событий и собирает маршруты.
// Ресурсы освобождаются в Run при остановке; при ошибке New освобождает их сам.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, version string) (_ *Server, err error) {
	s := &Server{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			s.release()
		}
	}()

	s.store, err = sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	if cfg.RedisURL != "" {
		rb, err := bus.NewRedis(ctx, logger, cfg.RedisURL, redisChannel)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.bus = rb
		logger.Info("Using redis event bus", "channel", redisChannel)
	} else {
		s.bus = bus.NewLocal()
	}

	// Подписка hub на шину живет до остановки сервера, а не до ctx запуска
	s.hub, err = hub.New(context.WithoutCancel(ctx), logger, s.store, s.bus)
	if err != nil {
		return nil, err
	}

	if cfg.RateLimit > 0 {
		s.limiter = middleware.NewPathRateLimiter(logger,
			middleware.Limit{Rate: cfg.RateLimit, Window: cfg.RateWindow},
			uploadLimits(cfg),
		)
	}

	router := NewRouter(logger, Handlers{
		Rooms:  handlers.NewRoomHandler(logger, s.store),
		Upload: handlers.NewUploadHandler(logger, s.store, s.hub, cfg.UploadDir, cfg.MaxUploadBytes()),
		WS:     handlers.NewWSHandler(logger, s.hub),
		Health: handlers.NewHealthHandler(logger, s.store, version),
	}, s.limiter)

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		// ReadTimeout/WriteTimeout не задаются: загрузки PDF и WebSocket долгие
	}

	return s, nil
}

// uploadLimits более строгие лимиты для создания комнат и загрузок
func uploadLimits(cfg *config.Config) map[string]middleware.Limit {
	strict := func(div int) middleware.Limit {
		rate := cfg.RateLimit / div
		if rate < 1 {
			rate = 1
		}
		return middleware.Limit{Rate: rate, Window: cfg.RateWindow}
	}
	return map[string]middleware.Limit{
		"/api/create_room": strict(6),
		"/api/upload_pdf":  strict(12),
	}
}

// Handler HTTP обработчик сервера (для тестов)
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run принимает подключения на cfg.Addr до отмены ctx.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.release()
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve принимает подключения из ln до отмены ctx, затем останавливает сервер.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errC := make(chan error, 1)
	go func() {
		s.logger.Info("Starting room server",
			"addr", ln.Addr().String(),
			"env", s.cfg.Env,
			"upload_dir", s.cfg.UploadDir,
		)
		errC <- s.http.Serve(ln)
	}()

	select {
	case err := <-errC:
		s.release()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down room server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	// Shutdown не ждет hijacked подключений, WebSocket закрываются через hub
	if err := s.hub.Close(); err != nil && !errors.Is(err, hub.ErrClosed) {
		s.logger.Warn("Failed to close hub", "error", err)
	}
	err := s.http.Shutdown(shutdownCtx)
	s.release()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	s.logger.Info("Room server stopped")
	return nil
}

// release освобождает шину, limiter и хранилище
func (s *Server) release() {
	if s.hub != nil {
		_ = s.hub.Close()
	}
	if s.limiter != nil {
		s.limiter.Stop()
	}
	if s.bus != nil {
		if err := s.bus.Close(); err != nil {
			s.logger.Warn("Failed to close event bus", "error", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("Failed to close storage", "error", err)
		}
	}
}
