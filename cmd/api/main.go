package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"agro-advisor/internal/app"
	"agro-advisor/internal/core/config"
	"agro-advisor/internal/core/logger"
	"agro-advisor/internal/core/server"
	"agro-advisor/internal/transport/http/router"
)

func main() {
	cfgPath := flag.String("config", "", "config file (default $CONFIG_PATH or ./configs/config.local.yaml)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.MustLoad(*cfgPath)
	log, cleanup := logger.New(logger.FromConfig(cfg.Log))
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()
	if cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer a.Close()

	// 用户端
	r := router.NewAPIEngine(log, a.JWT, a.Registry, a.Options)
	srv := server.BuildServer(cfg.App.HTTP, r)
	log.Info("user api starting",
		zap.String("addr", srv.Addr),
		zap.String("api_v1", "/api/v1"),
		zap.String("weather_cache", cfg.Weather.Cache),
	)
	if err := server.Run(ctx, srv, log, 10*time.Second); err != nil {
		log.Error("user api stopped with error", zap.Error(err))
		return
	}
	log.Info("user api stopped gracefully")
}
