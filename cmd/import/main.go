// Command import loads the sales CSV into the orders table.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/blockedby/sales-dashboard/internal/config"
	"github.com/blockedby/sales-dashboard/internal/database"
	"github.com/blockedby/sales-dashboard/internal/logger"
	"github.com/blockedby/sales-dashboard/internal/migrator"
	"github.com/blockedby/sales-dashboard/internal/models"
	"github.com/blockedby/sales-dashboard/internal/nats"
	"github.com/blockedby/sales-dashboard/internal/publisher"
	"github.com/blockedby/sales-dashboard/internal/repository"
)

// options are the import settings after flags and config are merged.
type options struct {
	file    string
	dsn     string
	notify  bool
	natsURL string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	opts := options{natsURL: cfg.NatsURL}
	flag.StringVar(&opts.file, "file", cfg.DataFile, "CSV file to import")
	flag.StringVar(&opts.dsn, "database", cfg.DatabaseURL, "postgres URL or sqlite://path")
	flag.BoolVar(&opts.notify, "notify", true, "publish dataset.reloaded so running servers refresh")
	flag.Parse()

	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, opts, os.Stdout, log)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("import failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdout io.Writer, log *logger.Logger) error {
	if opts.dsn == "" {
		return errors.New("DATABASE_URL or -database is required")
	}

	db, err := database.New(ctx, opts.dsn)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := repository.NewOrdersRepository(db.GORM, db.Pool)
	if err := migrator.Prepare(ctx, opts.dsn, repo.Migrate); err != nil {
		return fmt.Errorf("migrate orders table: %w", err)
	}
	if db.Pool != nil {
		if version, dirty, err := migrator.New().Version(ctx, opts.dsn); err == nil {
			log.Info().Uint("version", version).Bool("dirty", dirty).Msg("schema version")
		}
	}

	started := time.Now()
	stats, err := repository.NewDataset(repo, opts.file).Reload(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Str("file", opts.file).
		Int("rows", stats.Rows).
		Int("orders", stats.Orders).
		Int("dropped", stats.Dropped).
		Dur("took", time.Since(started)).
		Msg("import complete")
	fmt.Fprintf(stdout, "imported %d orders (%d rows, %d dropped)\n", stats.Orders, stats.Rows, stats.Dropped)

	if !opts.notify {
		return nil
	}

	nc, err := nats.New(ctx, opts.natsURL)
	if err != nil {
		log.Warn().Err(err).Msg("nats unavailable, running servers were not notified")
		return nil
	}
	defer nc.Close()

	if err := nc.EnsureStream(ctx, nats.StreamName, nats.StreamSubjects); err != nil {
		log.Warn().Err(err).Msg("failed to ensure nats stream")
	}

	event := models.DatasetReloadedEvent{
		InstanceID: uuid.New(),
		Orders:     stats.Orders,
		Dropped:    stats.Dropped,
		ReloadedAt: time.Now(),
	}
	if err := publisher.NewNATSPublisher(nc.Conn).PublishDatasetReloaded(ctx, event); err != nil {
		log.Warn().Err(err).Msg("failed to publish dataset.reloaded")
	}
	return nil
}
