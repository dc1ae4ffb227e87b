package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/scroll-feed/app/api"
	"github.com/lysyi3m/scroll-feed/app/catalog"
	"github.com/lysyi3m/scroll-feed/app/cfg"
	"github.com/lysyi3m/scroll-feed/app/database"
	"github.com/lysyi3m/scroll-feed/app/feed"
	"github.com/lysyi3m/scroll-feed/app/render"
	"github.com/lysyi3m/scroll-feed/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Scroll Feed server", "version", appCfg.Version, "source", appCfg.Source)

	source, counter, closeSource, err := openSource(appCfg)
	if err != nil {
		slog.Error("Failed to open data source", "source", appCfg.Source, "error", err)
		os.Exit(1)
	}
	defer closeSource()

	source = applyLatency(appCfg, source)

	scheduler := tasks.NewScheduler(appCfg.WorkerCount,
		time.Duration(appCfg.SchedulerInterval)*time.Second, tasks.DefaultQueueSize)

	registry := feed.NewRegistry(source, scheduler, float64(appCfg.NearBottomThreshold))
	scheduler.Schedule(feed.ExpireSessionsPeriodic(registry, appCfg.SessionTTL))

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)
	scheduler.Start()

	renderer, err := render.New(appCfg.Title, float64(appCfg.NearBottomThreshold))
	if err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	apiHandler := api.NewHandler(registry, source, counter, renderer)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "page_size", appCfg.PageSize, "fetch_delay", appCfg.FetchDelay)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Unmount feeds before stopping workers so waiters are released.
	registry.Close()
	scheduler.Stop()

	slog.Info("Scroll Feed server shutdown complete")
}

// applyLatency adds the simulated fetch delay. A remote instance already
// applies its own, so remote sources are left as they are.
func applyLatency(appCfg *cfg.Cfg, source catalog.PageSource) catalog.PageSource {
	if appCfg.Source == cfg.SourceRemote {
		return source
	}
	return catalog.WithLatency(source, appCfg.FetchDelay)
}

// openSource builds the page source selected by --source. The returned
// counter is nil for the remote source.
func openSource(appCfg *cfg.Cfg) (catalog.PageSource, api.RecordCounter, func(), error) {
	noop := func() {}

	if appCfg.Source == cfg.SourceRemote {
		slog.Info("Paging from remote instance", "url", appCfg.RemoteURL)
		return catalog.NewRemote(appCfg.RemoteURL, nil, appCfg.UserAgent), nil, noop, nil
	}

	records, err := catalog.NewLoader(appCfg.CatalogFile, appCfg.MockRecords).Run()
	if err != nil {
		return nil, nil, noop, fmt.Errorf("failed to load catalog: %w", err)
	}
	slog.Info("Loaded catalog", "records", len(records), "file", appCfg.CatalogFile)

	if appCfg.Source != cfg.SourceSQLite {
		memory := catalog.NewMemory(records, appCfg.PageSize)
		return memory, memory, noop, nil
	}

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return nil, nil, noop, err
	}

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, nil, noop, err
	}
	slog.Info("Database migrations applied", "version", version, "dirty", dirty)

	repo := database.NewRecordRepository(db, appCfg.PageSize)
	if err := repo.SeedRecords(context.Background(), records); err != nil {
		db.Close()
		return nil, nil, noop, err
	}

	return repo, repo, func() { db.Close() }, nil
}
