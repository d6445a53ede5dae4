package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/itemmanager/apiserver/config"
	"github.com/itemmanager/apiserver/internal/auth"
	"github.com/itemmanager/apiserver/internal/db"
	"github.com/itemmanager/apiserver/internal/events"
	"github.com/itemmanager/apiserver/internal/handlers"
	"github.com/itemmanager/apiserver/internal/logging"
	"github.com/itemmanager/apiserver/internal/metrics"
	"github.com/itemmanager/apiserver/internal/mq"
	"github.com/itemmanager/apiserver/internal/services"
	"github.com/itemmanager/apiserver/internal/store"
	"go.uber.org/zap"
)

const defaultPort = 8000

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *db.DB
	queue      *mq.MQ
	log        *logging.Logger
	stop       context.CancelFunc
}

// New wires storage, services and routes. Background work started here runs
// until Shutdown.
func New(ctx context.Context, cfg config.Config, log *logging.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.NewNop()
	}

	if cfg.Database.AutoMigrate {
		if err := db.MigrateUp(cfg.Database); err != nil {
			return nil, err
		}
	}

	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	queue, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	var publisher services.EventPublisher
	if queue != nil {
		publisher = events.NewPublisher(queue, cfg.MQ.ItemChannel)
	}

	revocations := auth.NewMemoryRevocationList()
	tokens := auth.NewTokenService(cfg.JWTSecret, revocations)

	authService := services.NewAuthService(store.NewUserRepository(dbConn), tokens)
	itemService := services.NewItemService(store.NewItemRepository(dbConn), publisher, log)

	m := metrics.New()
	m.RegisterRevocationGauge(revocations.Len)

	bgCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	if cfg.RevocationSweepInterval > 0 {
		sweepLog := log.Named("revocations")
		go revocations.RunSweeper(bgCtx, cfg.RevocationSweepInterval, func(removed int) {
			if removed > 0 {
				sweepLog.Debug("swept revoked tokens", zap.Int("removed", removed))
			}
		})
	}

	httpLog := log.Named("http")
	authMiddleware := handlers.RequireToken(tokens, auth.TokenTypeAccess, httpLog)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		logging.RequestLogger(httpLog),
		logging.Recoverer(httpLog),
		m.Middleware,
		cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigin,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		middleware.Timeout(60*time.Second),
	)
	router.NotFound(handlers.NotFound)
	router.MethodNotAllowed(handlers.MethodNotAllowed)
	router.Get("/", handlers.Root)
	router.Get("/healthz", handlers.Healthz(dbConn))
	router.Method(http.MethodGet, "/metrics", m.Handler())
	router.Route("/api/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authService, tokens, httpLog)
	})
	router.Route("/api/items", func(r chi.Router) {
		handlers.ItemRouter(r, itemService, authMiddleware, httpLog)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = defaultPort
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		queue:      queue,
		log:        log,
		stop:       stop,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start runs the HTTP server. It returns nil after a graceful Shutdown.
func (s *Server) Start() error {
	s.log.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires, then releases the
// broker and database.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.stop()
	if s.queue != nil {
		if closeErr := s.queue.Close(); closeErr != nil {
			s.log.Warn("close message queue", zap.Error(closeErr))
		}
	}
	if closeErr := s.db.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	return err
}
