package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dates-lab/dates-manager/internal/agenda"
	v1 "github.com/dates-lab/dates-manager/internal/api/v1"
	"github.com/dates-lab/dates-manager/internal/catalog"
	corecfg "github.com/dates-lab/dates-manager/internal/core/config"
	"github.com/dates-lab/dates-manager/internal/core/event"
	"github.com/dates-lab/dates-manager/internal/core/milestone"
	"github.com/dates-lab/dates-manager/internal/core/storage"
	"github.com/dates-lab/dates-manager/internal/core/storage/postgres"
	"github.com/dates-lab/dates-manager/internal/migrations"
	"github.com/dates-lab/dates-manager/internal/reminder"
	"github.com/dates-lab/dates-manager/internal/server"
	"github.com/dates-lab/dates-manager/internal/transfer"
)

func main() {
	configPath := flag.String("config", "dates.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	// 2. Initialize Storage (PostgreSQL)
	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()

	// 2.1. Run Database Migrations
	if err := migrations.RunMigrations(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	// 3. Seed the catalog on first run
	if cfg.Seed.Enabled {
		if err := seedCatalog(context.Background(), dbAdapter, cfg.Seed.Dir); err != nil {
			slog.Error("Failed to seed catalog", "dir", cfg.Seed.Dir, "error", err)
			os.Exit(1)
		}
	}

	// 4. Initialize Reminder Scheduler
	sched := reminder.New(dbAdapter, cfg.Intervals.Reminder, reminder.NotifierFunc(logDue))
	defer sched.Stop()

	// 5. Initialize Services
	catalogSvc := catalog.NewService(dbAdapter, sched)
	agendaSvc := agenda.NewService(dbAdapter, sched, cfg.Intervals)
	transferSvc := transfer.NewService(dbAdapter, sched, cfg.Intervals, cfg.Export.CalendarName)

	// 6. Initialize Server
	srv := server.New(
		fmtAddr(cfg.Server.Host, cfg.Server.Port),
		dbAdapter.DB(),
		cfg.Server.Mode,
		int64(cfg.Server.MaxBodySizeMB)*1024*1024,
	)
	catalogSvc.RegisterRoutes(srv.Engine)
	agendaSvc.RegisterRoutes(srv.Engine)
	transferSvc.RegisterRoutes(srv.Engine)

	// 7. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Arm the timer from persisted state before serving traffic.
		return sched.Recompute(gctx)
	})
	g.Go(func() error {
		return srv.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

// logDue surfaces a due reminder. A desktop or chat notifier would hang
// off this hook; the server itself just logs and exposes it over
// /v1/agenda/due.
func logDue(occ *milestone.Occurrence) {
	slog.Info("[Reminder] Occurrence due",
		"key", occ.Key().String(),
		"title", occ.Event.Title,
		"actor", occ.Event.Actor,
		"date", occ.Date().Format("2006-01-02"),
	)
}

// seedCatalog loads YAML definition files into an empty catalog. A
// non-empty catalog is left untouched so seeds never fight user edits.
func seedCatalog(ctx context.Context, store storage.Store, dir string) error {
	existing, err := store.ListDefinitions(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		slog.Info("[Seed] Catalog already populated, skipping", "definitions", len(existing))
		return nil
	}

	repo, err := event.NewFileSystemSeedRepository(dir)
	if err != nil {
		return err
	}
	defs := repo.Definitions()
	for _, def := range defs {
		if err := store.SaveDefinition(ctx, v1.DefinitionRecord(def)); err != nil {
			return fmt.Errorf("seed uid %d: %w", def.UID, err)
		}
	}
	slog.Info("[Seed] Catalog seeded", "definitions", len(defs))
	return nil
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
