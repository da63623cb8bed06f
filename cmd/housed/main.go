package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"golang.org/x/time/rate"

	"github.com/NoamFav/Laundry/config"
	"github.com/NoamFav/Laundry/internal/api"
	"github.com/NoamFav/Laundry/internal/db"
	"github.com/NoamFav/Laundry/internal/directory"
	"github.com/NoamFav/Laundry/internal/history"
	"github.com/NoamFav/Laundry/internal/laundry"
	"github.com/NoamFav/Laundry/internal/notification"
	"github.com/NoamFav/Laundry/internal/presence"
	"github.com/NoamFav/Laundry/internal/session"
	"github.com/NoamFav/Laundry/internal/store"
	"github.com/NoamFav/Laundry/internal/tasks"
)

func main() {
	logger := log.New(os.Stdout, "housed ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		logger.Println("VAPID keys not configured; push notifications disabled")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := directory.New(cfg.House)
	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	secret := []byte(cfg.Session.Secret)
	if len(secret) == 0 {
		// Random secret per process: tokens die with the server.
		secret = []byte(fmt.Sprintf("housed-ephemeral-%d", time.Now().UnixNano()))
	}

	hist := history.NewRecorder(gormDB)
	sessions := session.NewManager(dir, secret, cfg.Session.TTL)
	presenceSvc := presence.NewService(appStore, dir)
	taskSvc := tasks.NewService(appStore, dir, hist)
	scheduler := laundry.NewScheduler(appStore, dir, hist)

	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
	scheduler.OnDone(func(a laundry.Appliance) {
		pool.Dispatch(string(a))
	})
	pool.Start(ctx)

	// Auto-complete cycles when their end time elapses.
	go scheduler.Watch(ctx, laundry.Washer)
	go scheduler.Watch(ctx, laundry.Dryer)

	router := api.NewRouter(api.Deps{
		Directory: dir,
		Store:     appStore,
		Sessions:  sessions,
		Presence:  presenceSvc,
		Tasks:     taskSvc,
		Laundry:   scheduler,
		History:   hist,
		DB:        gormDB,
		WebPush:   webpushOptions,
	}, api.RouterConfig{
		RateLimit: rate.Limit(cfg.Server.RateLimitPerSec),
		RateBurst: cfg.Server.RateLimitBurst,
		CacheTTL:  time.Duration(cfg.Server.CacheTTLSeconds) * time.Second,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
