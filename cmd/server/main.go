package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	_ "github.com/easayliu/smart-rename/docs"
	"github.com/easayliu/smart-rename/internal/application/container"
	"github.com/easayliu/smart-rename/internal/infrastructure/config"
	"github.com/easayliu/smart-rename/internal/interfaces/http/routes"
	"github.com/easayliu/smart-rename/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

// @title Smart Rename API
// @version 1.0
// @description 成本感知的文件命名建议服务

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	configPath := flag.String("config", "", "配置文件路径，默认查找 ./configs/config.yaml")
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfigFrom(*configPath)
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	// 初始化日志
	if err := logger.Init(logger.Options{
		Level:     cfg.Log.Level,
		Output:    cfg.Log.Output,
		Format:    cfg.Log.Format,
		FilePath:  cfg.Log.FilePath,
		Colorize:  cfg.Log.Colorize,
		AddSource: cfg.Log.AddSource,
	}); err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer logger.Close()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化服务容器
	c := container.NewServiceContainer(cfg)
	if err := c.ValidateServices(); err != nil {
		log.Fatal("Failed to initialize service container: ", err)
	}

	sched, err := c.GetScheduler()
	if err != nil {
		log.Fatal("Failed to get scheduler: ", err)
	}
	if err := sched.Start(); err != nil {
		log.Fatal("Failed to start scheduler: ", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           routes.SetupRoutes(c),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 启动服务器
	go func() {
		logger.Info("Starting server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("Server shutdown incomplete", "error", err)
	}
	c.Shutdown()

	logger.Info("Server stopped")
}
