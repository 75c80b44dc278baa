package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"price-tracker/internal/api"
	"price-tracker/internal/cache"
	"price-tracker/internal/config"
	"price-tracker/internal/model"
	"price-tracker/internal/notify"
	"price-tracker/internal/sheets"
	"price-tracker/internal/store"
	"price-tracker/internal/tracker"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.NewSQLite(cfg.DataDir, cfg.DBDriver, cfg.Timezone)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer db.Close()

	err = db.SeedSheetSources(ctx, model.SheetSources{
		ProductsURL: cfg.ProductsSheetURL,
		StoresURL:   cfg.StoresSheetURL,
	})
	if err != nil {
		log.Fatalf("failed to seed sheet settings: %v", err)
	}

	var backend cache.Cache
	switch cfg.CacheBackend {
	case "redis":
		rc, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "price-tracker:")
		if err != nil {
			log.Fatalf("failed to connect cache: %v", err)
		}
		defer rc.Close()
		backend = rc
	default:
		backend = cache.NewMemory(10 * time.Minute)
	}
	catalog := cache.NewCatalogCache(backend, cfg.CacheTTL)

	client := sheets.NewClient(cfg.SheetUserAgent, cfg.SheetFetchTimeout)
	syncer := tracker.NewSyncer(client, db, catalog, cfg.Timezone)

	scheduler := tracker.NewScheduler(syncer, db, db, catalog, cfg.SyncInterval)
	scheduler.SetRunOnStart(cfg.SyncOnStart)
	if cfg.BarkKey != "" {
		scheduler.SetNotifier(notify.NewBarkService(cfg.BarkKey))
	}
	scheduler.Start(ctx)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	api.SetupRoutes(r, api.NewHandlers(catalog, db, db, scheduler, cfg.SyncRateLimit), cfg.AdminToken)

	if cfg.AdminToken == "" {
		log.Println("ADMIN_TOKEN is not set, admin routes are disabled")
	}

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	go func() {
		log.Printf("Server started on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server Shutdown: %v", err)
	}

	scheduler.Stop()
	log.Println("graceful shutdown complete")
}
