// Package main is the entry point of the reputation and progression
// engine. One process hosts everything: the JSON API, the in-process
// event bus fanning committed writes out to awards, and the background
// scheduler that keeps the Redis reputation board honest.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/devoverflow-hub/devoverflow-core/config"
	"github.com/devoverflow-hub/devoverflow-core/internal/application/command"
	"github.com/devoverflow-hub/devoverflow-core/internal/application/eventhandler"
	"github.com/devoverflow-hub/devoverflow-core/internal/application/query"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/progression"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/user"
	"github.com/devoverflow-hub/devoverflow-core/internal/infrastructure/messaging"
	"github.com/devoverflow-hub/devoverflow-core/internal/infrastructure/persistence/postgres"
	redisstore "github.com/devoverflow-hub/devoverflow-core/internal/infrastructure/persistence/redis"
	"github.com/devoverflow-hub/devoverflow-core/internal/infrastructure/scheduler"
	httpapi "github.com/devoverflow-hub/devoverflow-core/internal/interface/http"
	"github.com/devoverflow-hub/devoverflow-core/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// Configuration and logging
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	})
	slogger := newSlogger(cfg)

	log.Info("starting",
		logger.String("app", cfg.App.Name),
		logger.String("version", cfg.App.Version),
		logger.String("env", string(cfg.App.Environment)),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// PostgreSQL: source of truth
	// ─────────────────────────────────────────────────────────────────────────
	conn, err := connectPostgres(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close()

	if cfg.Database.RunMigrations {
		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Redis: reputation board index and stats cache. Optional; without it
	// every read is served straight from Postgres.
	// ─────────────────────────────────────────────────────────────────────────
	var cache *redisstore.Cache
	if !cfg.Redis.Disabled {
		cache, err = redisstore.NewCache(redisstore.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			log.Warn("redis unavailable, running without board index and stats cache", logger.Err(err))
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Repositories
	// ─────────────────────────────────────────────────────────────────────────
	userRepo := postgres.NewUserRepository(conn)
	voteLedger := postgres.NewVoteLedger(conn)
	contentReader := postgres.NewContentReader(conn)
	badgeRepo := postgres.NewBadgeRepository(conn)
	achievementRepo := postgres.NewAchievementRepository(conn)
	taskRepo := postgres.NewTaskProgressRepository(conn)

	var board user.ReputationBoard
	var statsCache query.StatsCache
	if cache != nil {
		board = redisstore.NewReputationBoard(cache)
		statsCache = redisstore.NewStatsCache(cache)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Award catalog: loaded once at startup. Definitions change by
	// migration and redeploy, not at runtime.
	// ─────────────────────────────────────────────────────────────────────────
	catalog, err := loadCatalog(ctx, badgeRepo, achievementRepo, taskRepo)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	log.Info("catalog loaded",
		logger.Int("badges", len(catalog.Badges())),
		logger.Int("achievements", len(catalog.Achievements())),
		logger.Int("tasks", len(catalog.Tasks())),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// Event bus and command/query handlers
	// ─────────────────────────────────────────────────────────────────────────
	bus := messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{
		AsyncMode:      cfg.EventBus.AsyncMode,
		WorkerPoolSize: cfg.EventBus.WorkerPoolSize,
		Logger:         slogger,
		EnableMetrics:  true,
	})
	defer bus.Close()

	castVote := command.NewCastVoteHandler(voteLedger, bus, log)
	recordMetric := command.NewRecordMetricHandler(achievementRepo, catalog, bus, log)
	advanceTask := command.NewAdvanceTaskHandler(taskRepo, catalog, bus, log)
	evaluateBadges := command.NewEvaluateBadgesHandler(badgeRepo, contentReader, catalog, bus, log)
	recordLogin := command.NewRecordLoginHandler(userRepo, bus, log)
	awardXP := command.NewAwardXPHandler(userRepo, bus, log)

	getStats := query.NewGetUserStatsHandler(userRepo, badgeRepo, achievementRepo, statsCache)
	getBoard := query.NewGetReputationBoardHandler(board, userRepo, log)

	// ─────────────────────────────────────────────────────────────────────────
	// Event subscriptions: the reactive fan-out
	// ─────────────────────────────────────────────────────────────────────────
	notifier := messaging.NewLogNotifier(slogger)

	onVote := eventhandler.NewOnVoteAppliedHandler(advanceTask, recordMetric, evaluateBadges, contentReader, board, log)
	onXP := eventhandler.NewOnXPAwardedHandler(recordMetric, log)
	onLevelUp := eventhandler.NewOnLevelUpHandler(notifier, log)
	onStreak := eventhandler.NewOnStreakUpdatedHandler(advanceTask, achievementRepo, catalog, bus, notifier, log)

	if err := subscribeAll(bus, onVote, onXP, onLevelUp, onStreak); err != nil {
		return fmt.Errorf("subscribe event handlers: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Scheduler: periodic board rebuild repairs any drift in the index
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Scheduler.Enabled && board != nil {
		sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
			Logger:   slogger,
			Timezone: cfg.App.Location,
		})
		job := scheduler.NewRebuildBoardJob(userRepo, board)
		if err := sched.Register(job, scheduler.NewIntervalSchedule(cfg.Scheduler.BoardRebuildInterval)); err != nil {
			return fmt.Errorf("register board rebuild job: %w", err)
		}
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer sched.Stop()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	httpCfg := httpapi.DefaultConfig()
	httpCfg.Host = cfg.HTTP.Host
	httpCfg.Port = cfg.HTTP.Port
	httpCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	httpCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	httpCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	httpCfg.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute

	deps := httpapi.Dependencies{
		CastVoteHandler:           castVote,
		AdvanceTaskHandler:        advanceTask,
		RecordLoginHandler:        recordLogin,
		AwardXPHandler:            awardXP,
		GetUserStatsHandler:       getStats,
		GetReputationBoardHandler: getBoard,
		Postgres:                  conn,
		Logger:                    log,
	}
	if cache != nil {
		deps.Redis = cache
	}

	server := httpapi.NewServer(httpCfg, deps)
	errCh := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// Wait for shutdown
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", logger.Err(err))
	}

	log.Info("stopped")
	return nil
}

// connectPostgres builds the connection from either DATABASE_URL or the
// individual fields.
func connectPostgres(ctx context.Context, cfg *config.Config) (*postgres.Connection, error) {
	if cfg.Database.URL != "" {
		return postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	}

	return postgres.NewConnection(ctx, postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Database:        cfg.Database.Name,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  cfg.Database.ConnectTimeout,
	})
}

// loadCatalog reads the award definitions into an immutable in-memory catalog.
func loadCatalog(
	ctx context.Context,
	badges *postgres.BadgeRepository,
	achievements *postgres.AchievementRepository,
	tasks *postgres.TaskProgressRepository,
) (*progression.Catalog, error) {
	badgeDefs, err := badges.ListBadges(ctx)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	achievementDefs, err := achievements.ListAchievements(ctx)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	taskDefs, err := tasks.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return progression.NewCatalog(badgeDefs, achievementDefs, taskDefs), nil
}

// subscribeAll wires each reactive handler to the event types it consumes.
func subscribeAll(
	bus *messaging.InMemoryEventBus,
	onVote *eventhandler.OnVoteAppliedHandler,
	onXP *eventhandler.OnXPAwardedHandler,
	onLevelUp *eventhandler.OnLevelUpHandler,
	onStreak *eventhandler.OnStreakUpdatedHandler,
) error {
	subs := []struct {
		eventType shared.EventType
		handler   shared.EventHandler
	}{
		{shared.EventVoteApplied, onVote.Handle},
		{shared.EventXPAwarded, onXP.Handle},
		{shared.EventLevelUp, onLevelUp.Handle},
		{shared.EventStreakUpdated, onStreak.Handle},
		{shared.EventStreakBroken, onStreak.Handle},
	}

	for _, sub := range subs {
		if err := bus.Subscribe(sub.eventType, sub.handler); err != nil {
			return fmt.Errorf("subscribe %s: %w", sub.eventType, err)
		}
	}
	return nil
}

// newSlogger builds the slog logger used by the infrastructure packages.
func newSlogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Observability.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Observability.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
