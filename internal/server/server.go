package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/grocerylist/backend/config"
	"github.com/pageza/grocerylist/backend/internal/api"
	"github.com/pageza/grocerylist/backend/internal/database"
	"github.com/pageza/grocerylist/backend/internal/middleware"
	"github.com/pageza/grocerylist/backend/internal/realtime"
	"github.com/pageza/grocerylist/backend/internal/router"
	"github.com/pageza/grocerylist/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	redis  *redis.Client
	log    logrus.FieldLogger
}

// New connects to the configured backends and builds the router. Redis,
// the language model and S3 are optional; each degrades its own feature.
func New(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Server, error) {
	db, err := database.New(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db, log); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s := &Server{db: db, log: log}

	var (
		broker  realtime.Broker
		limiter *middleware.RateLimiter
	)
	if cfg.RedisEnabled() {
		client, err := database.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			// Live updates and chat limits switch off; lists keep working.
			log.WithError(err).Warn("Redis unavailable, continuing without it")
		} else {
			s.redis = client
			broker = realtime.NewRedisBroker(client, log)
			limiter = middleware.NewChatRateLimiter(client, cfg.ChatRateLimit, cfg.ChatRateWindow)
		}
	}

	var provider service.Provider
	if llm := service.NewLLMService(service.LLMConfig{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.LLMAPIKey,
		APIURL:   cfg.LLMAPIURL,
		Model:    cfg.LLMModel,
		Timeout:  cfg.LLMTimeout,
	}, nil, log); llm != nil {
		provider = llm
	} else {
		log.Warn("No language model key configured, chat will use the fallback generator")
	}
	chat := service.NewChatService(provider, cfg.LLMFallbackDisclaimer, log)

	var store service.ObjectStore
	if cfg.ExportsEnabled() {
		s3cfg, err := config.NewS3Config(ctx, cfg.S3BucketName, cfg.AWSRegion)
		if err != nil {
			log.WithError(err).Warn("S3 unavailable, list export disabled")
		} else {
			store = s3cfg
		}
	}

	// A nil broker is a nil interface, never a typed nil.
	var publisher realtime.Publisher
	if broker != nil {
		publisher = broker
	}

	scope := database.NewScope(db, cfg.DBRLSRole)
	deps := api.Dependencies{
		Auth:           service.NewAuthService(cfg.JWTSecret, cfg.JWTAudience),
		Lists:          service.NewListService(scope, publisher, log),
		Groceries:      service.NewGroceryService(scope, publisher, log),
		Chat:           chat,
		Exports:        service.NewExportService(scope, store, cfg.ExportURLTTL, log),
		Broker:         broker,
		ChatLimiter:    limiter,
		Health:         api.NewHealthHandler(db, s.redis, chat.ProviderName()),
		CookieName:     cfg.CookieName,
		AllowedOrigins: cfg.AllowedOrigins(),
		TrustedProxies: cfg.TrustedProxyList(),
	}

	s.router = router.SetupRouter(log, deps)
	s.http = &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.log.WithField("addr", s.http.Addr).Info("Starting server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits up to five seconds for in-flight
// ones, then closes redis and the database.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var errs []error
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if s.db != nil {
		if err := database.Close(s.db); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}
	return errors.Join(errs...)
}
