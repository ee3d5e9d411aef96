package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/sam-evolv/property-assistant-sub010/internal/bootstrap"
	"github.com/sam-evolv/property-assistant-sub010/internal/config"
	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/logger"
	"github.com/sam-evolv/property-assistant-sub010/internal/server"
	"github.com/sam-evolv/property-assistant-sub010/internal/tracer"
	"github.com/sam-evolv/property-assistant-sub010/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Tracer
	shutdownTracer := tracer.InitTracer(cfg.App.OtelEnabled, cfg.App.OtelEndpoint, sysLogger)
	defer shutdownTracer(context.Background())

	// 3. Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction(), database.DefaultPoolConfig())
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg, sysLogger)
	if err != nil {
		log.Panicf("Unable to build container: %v", err)
	}
	defer container.Close()

	// 5. Background Services
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Panicf("Unable to start exchange consumer: %v", err)
	}

	// 6. Server
	srv := server.New(cfg, container, sysLogger)
	go func() {
		<-ctx.Done()
		sysLogger.Info("SERVER", "Shutting down", nil)
		if err := srv.Shutdown(); err != nil {
			sysLogger.Error("SERVER", "Shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	if err := srv.Run(); err != nil {
		sysLogger.Error("SERVER", "Server stopped", map[string]interface{}{"error": err.Error()})
	}
}
