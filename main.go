package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"vacation-rental/cmd"
	"vacation-rental/internal/data/repository"
	"vacation-rental/internal/notifier"
	"vacation-rental/internal/scheduler"
	"vacation-rental/internal/seed"
	"vacation-rental/internal/wire"
	"vacation-rental/pkg/database"
	"vacation-rental/pkg/lock"
	"vacation-rental/pkg/utils"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	seedPath := pflag.String("seed", "", "upsert houses and packages from this file, then exit")
	migrateOnly := pflag.Bool("migrate", false, "apply database migrations, then exit")
	pflag.Parse()

	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	if config.Database.RunMigrations || *migrateOnly {
		if err := database.Migrate(ctx, config.Database, logger); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}
	if *migrateOnly {
		return
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	if *seedPath != "" {
		runSeed(ctx, repos, *seedPath, logger)
		return
	}

	locker := newLocker(ctx, config, logger)

	sender, err := notifier.NewSMTPSender(config.Email)
	if err != nil {
		logger.Fatal("Failed to init SMTP client", zap.Error(err))
	}
	if sender == nil {
		logger.Warn("SMTP_HOST not set, booking emails are only logged")
	}
	mailer := notifier.NewEmailNotifier(sender, config.Email.From, logger)
	defer mailer.Stop()

	// Wire all dependencies
	app := wire.Wiring(db, repos, locker, mailer, config, logger)

	if config.Booking.PendingTTL > 0 {
		sched, err := scheduler.New(app.Service.Booking, config.Booking.SweepInterval, logger)
		if err != nil {
			logger.Fatal("Failed to create scheduler", zap.Error(err))
		}
		if err := sched.Start(ctx); err != nil {
			logger.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer func() {
			if err := sched.Shutdown(); err != nil {
				logger.Warn("Scheduler shutdown failed", zap.Error(err))
			}
		}()
	}

	if err := cmd.APIServer(ctx, app.Router, config.App, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}
}

// newLocker shares booking locks through Redis when REDIS_URL is set so that
// several replicas serialize on the same house. Otherwise locks are in-process.
func newLocker(ctx context.Context, config *utils.Config, logger *zap.Logger) lock.Locker {
	if config.Redis.URL == "" {
		logger.Info("Using in-process booking locks")
		return lock.NewKeyedMutex()
	}

	client, err := lock.NewRedisClient(ctx, config.Redis.URL)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}

	logger.Info("Using redis booking locks", zap.Duration("ttl", config.Booking.LockTTL))
	return lock.NewRedisLocker(client, "lock:house:", config.Booking.LockTTL, logger)
}

func runSeed(ctx context.Context, repos *repository.Repository, path string, logger *zap.Logger) {
	file, err := seed.Load(path)
	if err != nil {
		logger.Fatal("Failed to load seed file", zap.Error(err))
	}

	result, err := seed.Run(ctx, repos, file, logger)
	if err != nil {
		logger.Fatal("Seed failed", zap.Error(err))
	}

	logger.Info("Seed completed",
		zap.Int("houses", result.Houses),
		zap.Int("packages", result.Packages),
	)
}
