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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/edu-workflow-api/api/swagger"
	"github.com/noah-isme/edu-workflow-api/internal/handler"
	"github.com/noah-isme/edu-workflow-api/internal/repository"
	"github.com/noah-isme/edu-workflow-api/internal/seed"
	"github.com/noah-isme/edu-workflow-api/internal/server"
	"github.com/noah-isme/edu-workflow-api/internal/service"
	"github.com/noah-isme/edu-workflow-api/pkg/cache"
	"github.com/noah-isme/edu-workflow-api/pkg/config"
	"github.com/noah-isme/edu-workflow-api/pkg/logger"
)

// @title Edu Workflow API
// @version 0.1.0
// @description Workflow templates, running instances, approvals and audit trails for academic processes
// @BasePath /api/v1
// @schemes http

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetricsService()

	var storeOpts []repository.WorkflowStoreOption
	directory := repository.NewUserDirectory()
	if cfg.Workflow.SeedDemoData {
		storeOpts = append(storeOpts, repository.WithTemplates(seed.Templates()...))
		directory = repository.NewUserDirectory(seed.Users()...)
		logr.Info("demo data seeded", zap.Int("templates", len(seed.Templates())), zap.Int("users", len(seed.Users())))
	}
	store := repository.NewWorkflowStore(storeOpts...)

	validate, err := service.NewValidator()
	if err != nil {
		logr.Fatal("failed to init validator", zap.Error(err))
	}
	workflow, err := service.NewWorkflowService(store, validate, logr.Named("workflow"),
		service.WithEventRecorder(metrics),
	)
	if err != nil {
		logr.Fatal("failed to init workflow service", zap.Error(err))
	}

	var (
		cacheSvc *service.CacheService
		pinger   handler.Pinger
	)
	if cfg.Export.CacheEnabled {
		client, err := cache.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			logr.Warn("export cache disabled, redis unavailable", zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(client, "edu-workflow", logr.Named("cache"))
			defer repo.Close() //nolint:errcheck
			cacheSvc = service.NewCacheService(repo, metrics, cfg.Export.CacheTTL, logr.Named("cache"), true)
			pinger = repo
		}
	}
	exports := service.NewAuditExportService(workflow, cacheSvc, cfg.Export.CacheTTL, logr.Named("export"))

	router := server.NewRouter(server.Deps{
		Config:    cfg,
		Logger:    logr,
		Workflow:  workflow,
		Exports:   exports,
		Metrics:   metrics,
		Directory: directory,
		Cache:     pinger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "enforcePermissions", cfg.Workflow.EnforcePermissions)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
	}
}
