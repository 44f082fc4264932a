package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-tracker/internal/config"
	"task-tracker/internal/handler"
	"task-tracker/internal/httpserver"
	"task-tracker/internal/logger"
	"task-tracker/internal/repository"
	"task-tracker/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.IsLocal())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := repository.NewDB(cfg.DB, zl)
	if err != nil {
		zl.Fatal("db", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	logRepo := repository.NewLogRepository(db)

	auditSvc := service.NewAuditService(logRepo, zl)
	statusSvc := service.NewStatusService(statusRepo)
	userSvc := service.NewUserService(userRepo)
	taskSvc := service.NewTaskService(taskRepo, statusRepo, userRepo, auditSvc)

	seedCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = statusSvc.EnsureDefaults(seedCtx, cfg.DefaultStatuses)
	cancel()
	if err != nil {
		zl.Fatal("seed statuses", zap.Error(err))
	}

	router := httpserver.NewRouter(httpserver.Handlers{
		Tasks:    handler.NewTaskHandler(taskSvc, cfg.ActorHeader, zl),
		Users:    handler.NewUserHandler(userSvc, zl),
		Statuses: handler.NewStatusHandler(statusSvc, zl),
	}, db, zl)

	server := httpserver.NewServer(cfg.HTTPAddr, router, cfg.ShutdownTimeout, zl)

	zl.Info("task tracker started", zap.String("env", cfg.Env), zap.String("db_driver", cfg.DB.Driver))
	if err := server.Run(ctx); err != nil {
		zl.Error("server stopped with error", zap.Error(err))
		return
	}
	zl.Info("shutdown complete")
}
