package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shelfmark/shelfmark/internal/config"
	"github.com/shelfmark/shelfmark/internal/database"
	"github.com/shelfmark/shelfmark/internal/database/books"
	"github.com/shelfmark/shelfmark/internal/database/highlights"
	"github.com/shelfmark/shelfmark/internal/database/snapshots"
	http_controllers "github.com/shelfmark/shelfmark/internal/http"
	"github.com/shelfmark/shelfmark/internal/identity"
	"github.com/shelfmark/shelfmark/internal/scheduler"
	"github.com/shelfmark/shelfmark/internal/snapshot"
	"github.com/shelfmark/shelfmark/internal/store"
	"github.com/shelfmark/shelfmark/internal/tracker"
	"github.com/shelfmark/shelfmark/internal/views"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then drains it within
// the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown requested, waiting up to %v", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the reading engine together and serves it.
func Run(cfg *config.Config, version string) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting shelfmark", zap.String("version", version))

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("error closing database", zap.Error(err))
		}
	}()

	bookRepo := books.NewRepository(db.DB)
	highlightRepo := highlights.NewRepository(db.DB)
	snapshotRepo := snapshots.NewRepository(db.DB)

	snaps := snapshot.NewManager(snapshotRepo, logger)
	entityStore := store.New()
	entityStore.Restore(snaps.Load())

	provider := identity.NewStatic(cfg.Identity.UserID)
	service := tracker.NewService(entityStore, bookRepo, highlightRepo, provider, logger)

	// A fresh install has neither snapshot nor state; pull whatever the
	// remote mirror already holds for this user.
	if len(entityStore.Books()) == 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := service.Hydrate(ctx); err != nil {
			logger.Warn("remote hydration skipped", zap.Error(err))
		}
		cancel()
	}

	var snapScheduler *scheduler.SnapshotScheduler
	if cfg.Snapshot.Enabled {
		snapScheduler = scheduler.NewSnapshotScheduler(entityStore, snaps, cfg.Snapshot.Schedule, logger)
		if err := snapScheduler.Start(); err != nil {
			logger.Fatal("failed to start snapshot scheduler", zap.Error(err))
		}
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Service:  service,
		Store:    entityStore,
		Views:    views.NewCache(),
		Database: db,
		Version:  version,
	})

	onShutdown := func(ctx context.Context) {
		if snapScheduler != nil {
			snapScheduler.Stop()
		}
		if err := snaps.Save(entityStore.State()); err != nil {
			logger.Warn("final snapshot save failed", zap.Error(err))
		}
	}

	Serve(router, cfg, onShutdown)
}
