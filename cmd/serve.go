package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"video-tracking-system/internal/database"
	"video-tracking-system/internal/handlers"
	"video-tracking-system/internal/repository"
	"video-tracking-system/internal/services"
	"video-tracking-system/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()
		cfg, log := rt.cfg, rt.log

		if !skipMigrate {
			if err := database.Migrate(rt.db); err != nil {
				return err
			}
		}

		store, err := storage.NewLocalStore(cfg.Upload.Dir)
		if err != nil {
			return err
		}

		videoCache := rt.videoCache()
		defer videoCache.Close()

		publisher, stopFanout := rt.eventFanout()
		defer stopFanout()

		videoRepo := repository.NewVideoRepository(rt.db, log)
		analytics := services.NewAnalyticsService(videoRepo, publisher, videoCache, log)
		uploads := services.NewUploadService(store, videoRepo, log)

		if cfg.GinMode == "release" {
			gin.SetMode(gin.ReleaseMode)
		}

		server := handlers.NewServer(analytics, uploads, log, handlers.Options{
			RequestTimeout: cfg.RequestTimeout,
			MaxUploadBytes: cfg.Upload.MaxBytes,
			UploadDir:      store.Dir(),
			HealthCheck: func(ctx context.Context) error {
				sqlDB, err := rt.db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
		})

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           server.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		log.WithField("port", cfg.Port).Info("Server started")

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("Shutting down server...")

		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()

		if err := srv.Shutdown(ctxShutdown); err != nil {
			log.WithError(err).Error("Server forced to shutdown")
			return err
		}

		log.Info("Server exited")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run migrations on startup")
}
