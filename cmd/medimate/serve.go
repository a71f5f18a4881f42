package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medimate/internal/db"
	"github.com/medimate/internal/handler"
	"github.com/medimate/internal/router"
	"github.com/medimate/internal/service"
	"github.com/medimate/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, flush, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer flush()

	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		logger.Error("failed to initialize database", zap.String("path", cfg.DatabasePath), zap.Error(err))
		return fmt.Errorf("initialize database: %w", err)
	}

	if err := db.EnsureUser(db.DB, cfg.OwnerUserName, cfg.OwnerPassword); err != nil {
		if !errors.Is(err, db.ErrUserExists) {
			return fmt.Errorf("ensure owner account: %w", err)
		}
		logger.Warn("owner account already exists, OWNER_USER_NAME ignored", zap.String("username", cfg.OwnerUserName))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	medications := service.NewMedicationService(storage.NewSnapshotStore(storage.NewGormKV(db.DB)))
	if err := medications.Load(ctx); err != nil {
		return err
	}

	system := service.NewSystemSettingService(db.DB, service.SystemSettings{
		Language:       cfg.Language,
		AIProvider:     cfg.AIProvider,
		GeminiAPIKey:   cfg.GeminiAPIKey,
		OpenAIAPIKey:   cfg.OpenAIAPIKey,
		DeepSeekAPIKey: cfg.DeepSeekAPIKey,
	})
	if enabled, provider, err := system.AIEnabled(); err == nil && !enabled {
		logger.Warn("AI api key missing, parse and tip fall back to manual entry", zap.String("provider", provider))
	}

	api := handler.NewAPI(db.DB, medications, system)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.SetupRouter(api, cfg.SessionSecret, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("run server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}
