package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/doctran/doctran/internal/config"
	"github.com/doctran/doctran/internal/db"
	"github.com/doctran/doctran/internal/extract"
	"github.com/doctran/doctran/internal/filestore"
	"github.com/doctran/doctran/internal/handler"
	"github.com/doctran/doctran/internal/job"
	"github.com/doctran/doctran/internal/middleware"
	"github.com/doctran/doctran/internal/notify"
	"github.com/doctran/doctran/internal/pipeline"
	"github.com/doctran/doctran/internal/repo"
	"github.com/doctran/doctran/internal/schedule"
	"github.com/doctran/doctran/internal/service"
	"github.com/doctran/doctran/internal/translator"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "doctran",
		Short: "document translation server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run doctran server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			database, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(database); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, database)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, database *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("file_store", cfg.FileStore.Type),
		zap.String("translator", cfg.Translator.Provider),
	)

	docRepo := repo.NewDocumentRepo(database)
	unitRepo := repo.NewUnitRepo(database)
	translationRepo := repo.NewTranslationRepo(database)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	trans, err := translator.New(cfg.Translator.Provider, cfg.Translator.Model, cfg.Translator.Data)
	if err != nil {
		return fmt.Errorf("init translator: %w", err)
	}
	if cfg.Translator.CacheSize > 0 {
		trans = translator.WrapLRUCache(trans, cfg.Translator.CacheSize,
			time.Duration(cfg.Translator.CacheTTLHours)*time.Hour)
	}

	hub := notify.NewHub()
	pool := pipeline.NewPool(cfg.Pipeline.Workers, cfg.Pipeline.QueueSize)
	extractor := extract.NewTextExtractor(store)
	pipelineService := pipeline.NewService(docRepo, unitRepo, translationRepo, extractor, trans, hub, pool, pipeline.Options{
		ChunkSize:  cfg.Pipeline.ChunkSize,
		SourceLang: cfg.Translator.SourceLang,
		TargetLang: cfg.Translator.TargetLang,
		Timeout:    time.Duration(cfg.Translator.TimeoutSeconds) * time.Second,
	})

	documentService := service.NewDocumentService(docRepo, store)
	unitService := service.NewUnitService(docRepo, unitRepo, translationRepo)

	deps := handler.RouterDeps{
		Documents: handler.NewDocumentHandler(documentService),
		Units:     handler.NewUnitHandler(unitService),
		Pipeline:  handler.NewPipelineHandler(pipelineService),
		Events:    handler.NewEventsHandler(hub, docRepo),
		JWTSecret: []byte(cfg.JWTSecret),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	sweep := job.NewStaleSweepJob(unitRepo, pipelineService, time.Duration(cfg.Pipeline.StaleAfterMinute)*time.Minute)
	if err := scheduler.AddJob(sweep, cfg.Pipeline.SweepSpec); err != nil {
		return fmt.Errorf("schedule sweep job: %w", err)
	}
	scheduler.Start(ctx)

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	scheduler.Stop()
	pool.Close()
	return nil
}
