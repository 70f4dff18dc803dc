package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/cineclub/internal/config"
	"github.com/iliyamo/cineclub/internal/coordinator"
	"github.com/iliyamo/cineclub/internal/database"
	"github.com/iliyamo/cineclub/internal/handler"
	"github.com/iliyamo/cineclub/internal/logging"
	"github.com/iliyamo/cineclub/internal/metadata"
	"github.com/iliyamo/cineclub/internal/middleware"
	"github.com/iliyamo/cineclub/internal/queue"
	"github.com/iliyamo/cineclub/internal/realtime"
	"github.com/iliyamo/cineclub/internal/repository"
	"github.com/iliyamo/cineclub/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}

func run(cfg config.Config, logger *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	store := repository.NewStore(db)
	coord := coordinator.New(store, logger,
		coordinator.WithNotificationLimit(cfg.NotificationLimit),
		coordinator.WithMessageLimit(cfg.ChatHistoryLimit),
		coordinator.WithObserver(func(m coordinator.Mutation) {
			if m.Phase == coordinator.PhaseReverted {
				logger.Warnw("mutation reverted", "mutation_id", m.ID, "kind", m.Kind, "user_id", m.UserID, "error", m.Err)
			}
		}),
	)
	loadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = coord.Load(loadCtx)
	cancel()
	if err != nil {
		return err
	}
	logger.Infow("cache loaded", "users", len(coord.Users()), "movies", len(coord.Movies()))

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		logger.Warn("redis unavailable, rate limiting and response cache disabled")
	} else {
		defer rdb.Close()
	}

	hub := realtime.NewHub(logger)
	dispatcher := queue.NewDispatcher(store.Notifications, coord, hub, logger)
	bus := queue.NewBus(queue.NewPublisher(cfg.RabbitURL, logger), dispatcher, logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLog(logger))

	mw := router.Middleware{
		RateLimit: middleware.NewTokenBucket(cfg.RateLimit, rdb, logger),
		Cache:     middleware.NewResponseCache(cfg.Cache, rdb, logger),
	}
	h := router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, store.Users, store.Tokens, coord, logger),
		Movies:  handler.NewMovieHandler(coord, bus, logger),
		Inbox:   handler.NewInboxHandler(coord, bus, logger),
		Search:  handler.NewSearchHandler(metadata.NewClient(cfg.TMDB, logger)),
		Stream:  handler.NewStreamHandler(hub, logger),
		Ratings: handler.NewRatingsAPI(coord, logger),
	}
	router.RegisterRoutes(e)
	router.RegisterAuth(e, h.Auth, mw, cfg.JWTSecret)
	router.RegisterRatingsAPI(e, h.Ratings, mw)
	router.RegisterMember(e, h, mw, cfg.JWTSecret)

	g, gctx := errgroup.WithContext(ctx)
	if cfg.RabbitURL != "" {
		consumer := queue.NewConsumer(cfg.RabbitURL, dispatcher.Handlers(), logger)
		g.Go(func() error {
			if err := consumer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	} else {
		logger.Info("RABBITMQ_URL not set, events are dispatched in process")
	}
	g.Go(func() error {
		refreshUsers(gctx, coord, cfg.UsersRefresh, logger)
		return nil
	})
	g.Go(func() error {
		addr := ":" + cfg.Port
		logger.Infow("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		hub.Close()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(sctx)
	})
	return g.Wait()
}

// refreshUsers reloads the member directory so users added with
// cmd/adduser show up without a restart.
func refreshUsers(ctx context.Context, coord *coordinator.Coordinator, every time.Duration, logger *zap.SugaredLogger) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := coord.RefreshUsers(ctx); err != nil {
				logger.Warnw("user directory refresh failed", "error", err)
			}
		}
	}
}
