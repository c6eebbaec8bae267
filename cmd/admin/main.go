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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer a.Close()

	// 后台端只监听内网地址
	r := router.NewAdminEngine(log, a.JWT, a.Registry, a.Options)
	srv := server.BuildServer(config.HTTP{Host: cfg.App.Admin.Host, Port: cfg.App.Admin.Port}, r)
	log.Info("admin api starting", zap.String("addr", srv.Addr), zap.String("admin_v1", "/admin/v1"))
	if err := server.Run(ctx, srv, log, 10*time.Second); err != nil {
		log.Error("admin api stopped with error", zap.Error(err))
		return
	}
	log.Info("admin api stopped gracefully")
}
