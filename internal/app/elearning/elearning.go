package elearning

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/elearning-api/internal/cache"
	"github.com/magabrotheeeer/elearning-api/internal/config"
	"github.com/magabrotheeeer/elearning-api/internal/lib/jwt"
	"github.com/magabrotheeeer/elearning-api/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/elearning-api/internal/lib/sl"
	authservice "github.com/magabrotheeeer/elearning-api/internal/services/auth"
	courseservice "github.com/magabrotheeeer/elearning-api/internal/services/course"
	"github.com/magabrotheeeer/elearning-api/internal/storage"
)

// App агрегирует зависимости и HTTP-сервер приложения.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *storage.Storage
	cache    *cache.Cache
	amqpConn *amqp.Connection
}

// New собирает приложение: хранилище с индексами, кеш, опциональный брокер
// событий, сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(ctx, cfg.StorageURI, cfg.StorageDatabase)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var amqpConn *amqp.Connection
	var events authservice.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		amqpConn, err = rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(amqpConn)
		if err != nil {
			return nil, err
		}
		events = rabbitmq.NewPublisher(ch)
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	auth := authservice.New(db, jwtMaker, events, cfg.DefaultAdmin)
	courses := courseservice.New(db, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, jwtMaker, auth, courses, db)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		cache:    cacheRedis,
		amqpConn: amqpConn,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := a.server.Shutdown(timeoutCtx); err != nil {
			a.logger.Error("HTTP server shutdown failed", sl.Err(err))
		}
		a.close(timeoutCtx)
		return nil
	}
}

func (a *App) close(ctx context.Context) {
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if a.amqpConn != nil {
		if err := a.amqpConn.Close(); err != nil {
			a.logger.Error("failed to close amqp connection", sl.Err(err))
		}
	}
	if err := a.db.Close(ctx); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
