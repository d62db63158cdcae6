package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Options настройки API
type Options struct {
	Addr          string
	User          string
	PasswordHash  string // argon2id, пустой отключает авторизацию
	RatePerMinute int
	Production    bool
}

// Server JSON API поверх ExamService
type Server struct {
	svc    *service.ExamService
	opts   Options
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer(svc *service.ExamService, opts Options, logger *zap.Logger) *Server {
	if opts.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	if opts.PasswordHash == "" {
		logger.Warn("API_PASSWORD_HASH is empty, HTTP API runs without authentication")
	}

	s := &Server{
		svc:    svc,
		opts:   opts,
		engine: gin.New(),
		logger: logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.Use(gin.Recovery(), requestLogger(s.logger))

	s.engine.GET("/healthz", s.health)

	api := s.engine.Group("/api")
	if s.opts.RatePerMinute > 0 {
		api.Use(rateLimit(s.opts.RatePerMinute, s.logger))
	}
	api.Use(basicAuth(s.opts.User, s.opts.PasswordHash, s.logger))

	api.GET("/snapshot", s.snapshot)
	api.GET("/backup", s.exportBackup)
	api.POST("/backup", s.importBackup)
	api.GET("/months/:month", s.month)
	api.PUT("/months/:month/limit", s.setMonthLimit)
	api.GET("/waiting-list", s.waitingList)
	api.GET("/stats/:year", s.stats)
}

// Handler для тестов и встраивания
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run слушает Addr до отмены ctx, затем плавно останавливается
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening", zap.String("addr", s.opts.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	s.logger.Info("HTTP API stopped")
	return nil
}
