package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"gift_tracker/internal/config"
	service "gift_tracker/internal/domain/service/tracker"
	"gift_tracker/internal/infrastructure/cache"
	"gift_tracker/internal/infrastructure/feed"
	"gift_tracker/internal/infrastructure/notifier"
	"gift_tracker/internal/infrastructure/persistence"
	"gift_tracker/internal/server"
	"gift_tracker/internal/worker"
	"gift_tracker/pkg/application/connectors"
	"gift_tracker/pkg/application/modules"
	"gift_tracker/pkg/logx"
	"gift_tracker/pkg/middlewarex"
)

func Run(ctx context.Context, log *slog.Logger, cancel context.CancelFunc) error {
	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}

	log = log.With(
		slog.String(logx.FieldAppName, cfg.App.Name),
		slog.String(logx.FieldAppVersion, cfg.App.Version),
	)

	// 2. Database
	pg := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}
	db := pg.Client(ctx)
	defer pg.Close(ctx)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	log.Info("database connection OK")

	// 3. Redis (totals cache + snapshot queue)
	rd := &connectors.Redis{
		Address:            cfg.Redis.Address,
		Username:           cfg.Redis.Username,
		Password:           cfg.Redis.Password,
		DatabaseNumber:     cfg.Redis.DatabaseNumber,
		PoolSize:           cfg.Redis.PoolSize,
		MinIdleConnections: cfg.Redis.MinIdleConnections,
		MaxIdleConnections: cfg.Redis.MaxIdleConnections,
	}
	redisClient := rd.Client(ctx)
	defer rd.Close(ctx)

	// 4. Repositories and service
	giftRepo := persistence.NewGiftRecordRepository(db)
	totalsCache := cache.NewRedisTotalsCache(redisClient, cfg.Redis.TotalsCacheTTL)

	trackerService := service.NewTrackerService(giftRepo).
		WithTotalsCache(totalsCache)

	// 5. Feed ingestor
	dialer := feed.WebsocketDialer{HandshakeTimeout: cfg.Feed.HandshakeTimeout}

	ingestor := worker.NewIngestor(trackerService, dialer, cfg.Feed.URL).
		WithReconnectPolicy(worker.ReconnectPolicy{
			Delay:       cfg.Feed.ReconnectDelay,
			MaxDelay:    cfg.Feed.ReconnectMaxDelay,
			Multiplier:  cfg.Feed.BackoffMultiplier,
			MaxAttempts: cfg.Feed.MaxAttempts,
		})

	g, gctx := errgroup.WithContext(ctx)

	// 6. Alert notifier (optional)
	if cfg.Bot.Token != "" {
		alerts := make(chan worker.Alert, 100)
		ingestor.WithAlerts(alerts)

		alertBot, err := notifier.NewTelegramBot(cfg.Bot.Token, cfg.Bot.ChatID)
		if err != nil {
			return fmt.Errorf("notifier bot: %w", err)
		}

		// Alerts are optional, a failed test message must not stop the app.
		if err := alertBot.SendText(ctx, "Gift tracker started, watching the feed"); err != nil {
			log.Error("bot test message failed", logx.Error(err))
		}

		g.Go(func() error {
			log.Info("notifier bot started listening")
			if err := alertBot.Run(gctx, alerts); err != nil && gctx.Err() == nil {
				log.Error("notifier bot stopped", logx.Error(err))
			}
			return nil
		})
	}

	g.Go(func() error {
		if err := ingestor.Run(gctx); err != nil && gctx.Err() == nil {
			return fmt.Errorf("ingestor.Run: %w", err)
		}
		return nil
	})

	// 7. Snapshot queue
	asynqRedis := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Address,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DatabaseNumber,
	}

	asynqClient := asynq.NewClient(asynqRedis)
	defer asynqClient.Close()

	snapshotWorker := worker.NewSnapshotWorker(trackerService, cfg.Export.SnapshotDir)

	modules.AsynqServer{
		RedisAddress:  cfg.Redis.Address,
		RedisUsername: cfg.Redis.Username,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DatabaseNumber,
	}.Run(gctx, g,
		modules.AsynqQueues{cfg.Export.QueueName: cfg.Export.QueueConcurrency},
		modules.AsynqHandler{Pattern: worker.TaskExportSnapshot, Handle: snapshotWorker.Handle},
	)

	// 8. HTTP API
	srv := server.NewServer(server.NewGiftServer(
		trackerService,
		ingestor,
		asynqClient,
		cfg.Export.QueueName,
	))

	router := chi.NewRouter()
	router.Use(
		middlewarex.TraceID,
		middlewarex.Logger,
		middlewarex.Recovery,
	)

	if cfg.HTTP.LogBodies {
		masker := logx.NewSensitiveDataMasker()
		router.Use(
			middlewarex.RequestLogging(masker, cfg.HTTP.LogFieldMaxLen),
			middlewarex.ResponseLogging(masker, cfg.HTTP.LogFieldMaxLen),
		)
	}

	srv.RegisterRoutes(router)

	httpServer := &http.Server{ //nolint:exhaustruct
		Addr:              cfg.HTTP.ListenAddress,
		Handler:           router,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	modules.HTTPServer{ShutdownTimeout: cfg.HTTP.ShutdownTimeout}.Run(gctx, g, httpServer)

	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.HTTP.ProbeListenAddress,
	}.Run(gctx, g)

	modules.MetricServer{
		ListenAddress: cfg.HTTP.MetricListenAddress,
	}.Run(gctx, g)

	log.Info("application started",
		"http", cfg.HTTP.ListenAddress,
		"feed", cfg.Feed.URL,
	)

	if err := g.Wait(); err != nil {
		cancel()
		return fmt.Errorf("g.Wait: %w", err)
	}

	return nil
}
