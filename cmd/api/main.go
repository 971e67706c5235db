package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ablay/godrain/internal/config"
	"github.com/ablay/godrain/internal/drain"
	"github.com/ablay/godrain/internal/logger"
	"github.com/ablay/godrain/internal/server"
	"github.com/ablay/godrain/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logg, err := logger.Init()
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer logg.Sync()

	cfg, err := config.Load()
	if err != nil {
		logg.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	minioClient, err := storage.NewMinIOClient(cfg.MinIO)
	if err != nil {
		logg.Fatal("connect minio", zap.Error(err))
	}

	if err := storage.EnsureBucket(ctx, minioClient, cfg.MinIO.Bucket, cfg.MinIO.Region); err != nil {
		logg.Fatal("ensure bucket", zap.Error(err))
	}

	blobStore := storage.NewBlobStore(minioClient, cfg.MinIO.Bucket, logg)
	drainService := drain.NewService(blobStore, logg)

	router := server.NewRouter(server.Dependencies{
		Config:       cfg,
		Logger:       logg,
		ObjectStore:  minioClient,
		DrainService: drainService,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logg.Info("GoDrain API listening", zap.String("address", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logg.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Error("shutdown error", zap.Error(err))
	}

	// Let fire-and-forget index updates finish before the process exits.
	drainService.Wait()
}
