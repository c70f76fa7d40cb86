package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/blockedby/sales-dashboard/internal/api"
	"github.com/blockedby/sales-dashboard/internal/config"
	"github.com/blockedby/sales-dashboard/internal/database"
	"github.com/blockedby/sales-dashboard/internal/logger"
	"github.com/blockedby/sales-dashboard/internal/migrator"
	"github.com/blockedby/sales-dashboard/internal/models"
	"github.com/blockedby/sales-dashboard/internal/nats"
	"github.com/blockedby/sales-dashboard/internal/publisher"
	"github.com/blockedby/sales-dashboard/internal/repository"
	"github.com/blockedby/sales-dashboard/internal/sales"
	"github.com/blockedby/sales-dashboard/internal/web"
	"github.com/blockedby/sales-dashboard/internal/web/handlers"
)

var version = "dev"

const (
	apiTitle       = "Sales Dashboard API"
	apiDescription = "KPIs, monthly sales and CSV reports over the sales dataset."
)

// dataset is what the server needs from either backing store.
type dataset interface {
	sales.Source
	handlers.Dataset
}

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// 2. Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()
	log.Info().Str("version", version).Msg("starting sales dashboard")

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("dashboard stopped")
		os.Exit(1)
	}
	log.Info().Msg("shutdown complete")
}

// run serves until a shutdown signal. Deferred cleanups run before it returns.
func run(cfg *config.Config, log *logger.Logger) error {
	// 3. Setup context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	// 4. Open the dataset
	ds, closeDS, err := openDataset(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer closeDS()

	// 5. Connect to NATS
	var pub handlers.EventPublisher
	nc, err := nats.New(ctx, cfg.NatsURL)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to nats, publishing disabled")
	} else {
		defer nc.Close()
		if err := nc.EnsureStream(ctx, nats.StreamName, nats.StreamSubjects); err != nil {
			log.Warn().Err(err).Msg("failed to ensure nats stream")
		}
		pub = publisher.NewNATSPublisher(nc.Conn)
	}

	// 6. Services and websocket hub
	svc := sales.NewService(ds, log.Component("sales"))

	hub := web.NewHub()
	go hub.Run()

	tmpl := web.NewTemplateEngine(web.TemplatesFS(), false)
	if err := tmpl.Load(); err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	var limiter *rate.Limiter
	if cfg.ReportRatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.ReportRatePerSec), cfg.ReportBurst)
	}

	instanceID := uuid.New()
	pagesHandler := handlers.NewPagesHandler(tmpl, ds, version)
	reportsHandler := handlers.NewReportsHandler(svc, limiter, pub, hub)
	datasetHandler := handlers.NewDatasetHandler(ds, pub, hub, instanceID)
	datasetHandler.SetShared(cfg.DatabaseURL != "")

	// 7. Reloads done by other instances
	if nc != nil {
		stop, err := nc.Subscribe(ctx, nats.StreamName, "dashboard-"+instanceID.String(), models.SubjectDatasetReloaded,
			func(data []byte) error {
				return datasetHandler.HandleRemoteReload(ctx, data)
			})
		if err != nil {
			log.Warn().Err(err).Msg("failed to subscribe to dataset reloads")
		} else {
			defer stop()
		}
	}

	// 8. Initialize servers
	apiServer := api.NewServer(&api.Config{
		Port:        cfg.HTTPPort,
		Title:       apiTitle,
		Description: apiDescription,
		Version:     version,
	}, &api.Dependencies{
		Sales:   svc,
		Dataset: ds,
		Viewers: hub,
	})

	server := web.NewServer(&web.Config{
		Port:           cfg.HTTPPort,
		AllowedOrigins: cfg.AllowedOrigins,
	}, hub)

	server.MountAPI(apiServer.Mux())
	apiServer.MountDocsOn(server.Router(), apiTitle, apiDescription)
	server.RegisterPagesHandler(pagesHandler)
	server.RegisterReportsHandler(reportsHandler)
	server.RegisterDatasetHandler(datasetHandler)

	// 9. Start server
	log.Info().Int("port", cfg.HTTPPort).Msg("starting web server")
	serveErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			cancel()
		}
	}()

	// 10. Wait for shutdown
	<-ctx.Done()
	log.Info().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	default:
		return nil
	}
}

// openDataset serves from the database when DATABASE_URL is set and from
// the CSV file otherwise.
func openDataset(ctx context.Context, cfg *config.Config, log *logger.Logger) (dataset, func(), error) {
	if cfg.DatabaseURL == "" {
		store := sales.NewStore(cfg.DataFile)
		stats, err := store.Reload(ctx)
		if err != nil {
			return nil, nil, err
		}
		log.Info().
			Str("file", cfg.DataFile).
			Int("orders", stats.Orders).
			Int("dropped", stats.Dropped).
			Msg("dataset loaded")
		return store, func() {}, nil
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	repo := repository.NewOrdersRepository(db.GORM, db.Pool)
	if err := migrator.Prepare(ctx, cfg.DatabaseURL, repo.Migrate); err != nil {
		db.Close()
		return nil, nil, err
	}

	ds := repository.NewDataset(repo, cfg.DataFile)
	if n, err := repo.Count(ctx); err == nil && n == 0 && cfg.DataFile != "" {
		stats, err := ds.Reload(ctx)
		if err != nil {
			log.Warn().Err(err).Str("file", cfg.DataFile).Msg("initial import failed, serving an empty table")
		} else {
			log.Info().Int("orders", stats.Orders).Int("dropped", stats.Dropped).Msg("orders table seeded")
		}
	}

	return &dbDataset{OrdersRepository: repo, Dataset: ds}, db.Close, nil
}

// dbDataset reads through the repository and reloads through the dataset.
type dbDataset struct {
	*repository.OrdersRepository
	*repository.Dataset
}
