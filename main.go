package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carfinder/config"
	"carfinder/httputil"
	"carfinder/logging"
	"carfinder/scheduler"
	"carfinder/scraper"
	"carfinder/server"
	"carfinder/services"
	"carfinder/storage"
	"carfinder/workers"
)

var (
	backupNow   = flag.Bool("backup", false, "Upload a lead backup once and exit")
	followUpNow = flag.Bool("followups", false, "Log due follow-ups once and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))

	logFile, err := logging.Setup(cfg.LogFile)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting carfinder...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open lead store: %v", err)
	}
	defer store.Close()

	leadService := services.NewLeadService(store)
	followUpWorker := workers.NewFollowUpWorker(leadService)

	var backupWorker *workers.BackupWorker
	if cfg.S3.Enabled() {
		uploader, err := storage.NewS3Uploader(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("Failed to set up S3: %v", err)
		}
		backupWorker = workers.NewBackupWorker(store, uploader)
		log.Printf("Lead backups go to s3://%s/%s", cfg.S3.Bucket, cfg.S3.Prefix)
	}

	// Handle one-shot commands
	if *followUpNow {
		if _, err := followUpWorker.RunOnce(ctx); err != nil {
			log.Fatalf("Follow-up sweep failed: %v", err)
		}
		return
	}
	if *backupNow {
		if backupWorker == nil {
			log.Fatal("S3_BUCKET is not set")
		}
		if _, err := backupWorker.RunOnce(ctx); err != nil {
			log.Fatalf("Backup failed: %v", err)
		}
		return
	}

	clients := httputil.NewClients(cfg.Proxy)
	if cfg.Proxy.URL != "" {
		log.Printf("Proxy: %s", maskConnectionString(cfg.Proxy.URL))
	}

	log.Printf("Loaded %d site configs", len(cfg.Sites))
	var handlers []scraper.Handler
	for _, id := range cfg.SiteIDs() {
		site := cfg.Sites[id]
		if !site.Enabled {
			log.Printf("  - %s (%s) disabled", site.Name, id)
			continue
		}
		if site.RateLimitMS == 0 {
			site.RateLimitMS = cfg.Search.DelayMS
		}
		log.Printf("  - %s (%s, %s)", site.Name, id, site.Handler)
		h := scraper.NewHandler(site, clients.Scraping)
		if b, ok := h.(*scraper.BrowserHandler); ok {
			defer b.Close()
		}
		handlers = append(handlers, h)
	}
	coordinator := scraper.NewCoordinator(handlers, cfg.Search.SourceTimeout)
	searchService := services.NewSearchService(coordinator, store)

	sched := scheduler.New(cfg.Scheduler)
	if backupWorker != nil {
		sched.SetWorkers(followUpWorker, backupWorker)
	} else {
		sched.SetWorkers(followUpWorker, nil)
	}
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(searchService, leadService, store).Router(cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("Listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)
	for sig := range sigCh {
		if sig == syscall.SIGUSR1 {
			log.Println("Running scheduled jobs now")
			sched.TriggerNow()
			continue
		}
		break
	}

	log.Println("Shutting down...")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	sched.Stop()
	cancel()
	log.Println("Goodbye!")
}

// openStore uses Postgres when DATABASE_URL is set and SQLite otherwise.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.DBURL != "" {
		pg, err := storage.NewPostgresStore(ctx, cfg.DBURL)
		if err != nil {
			return nil, err
		}
		log.Printf("Connected to Postgres: %s", maskConnectionString(cfg.DBURL))
		return pg, nil
	}

	sqlite, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	log.Printf("SQLite database: %s", cfg.DBPath)
	return sqlite, nil
}

// maskConnectionString masks password in connection string for logging
func maskConnectionString(connStr string) string {
	// Simple mask - find :// and mask until @
	start := 0
	for i := 0; i < len(connStr)-3; i++ {
		if connStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	if start == 0 {
		return connStr
	}

	// Find : after user
	colonIdx := -1
	atIdx := -1
	for i := start; i < len(connStr); i++ {
		if connStr[i] == ':' && colonIdx == -1 {
			colonIdx = i
		}
		if connStr[i] == '@' {
			atIdx = i
			break
		}
	}

	if colonIdx > 0 && atIdx > colonIdx {
		return connStr[:colonIdx+1] + "****" + connStr[atIdx:]
	}
	return connStr
}
