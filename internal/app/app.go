// Package app assembles storage, services and HTTP modules from config.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"agro-advisor/internal/core/auth"
	"agro-advisor/internal/core/cache"
	"agro-advisor/internal/core/config"
	"agro-advisor/internal/core/database"
	"agro-advisor/internal/domain"
	"agro-advisor/internal/feature/classifier"
	"agro-advisor/internal/feature/forecast"
	"agro-advisor/internal/feature/imagestore"
	"agro-advisor/internal/repo"
	"agro-advisor/internal/service"
	"agro-advisor/internal/transport/http/handler"
	"agro-advisor/internal/transport/http/router"
)

type App struct {
	DB       *gorm.DB
	JWT      *auth.JWTer
	Registry *router.Registry
	Options  router.Options

	closers []func()
}

// Build opens storage and wires every service. Call Close when done.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if cfg.JWT.Secret == "" {
		return nil, errors.New("jwt.secret is required (APP_JWT_SECRET)")
	}
	a := &App{}
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                log,
	})
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	a.DB = db
	a.closers = append(a.closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			a.Close()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		log.Info("automigrate done")
	}

	weatherCache, err := a.weatherCache(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	users, hist := repo.NewUserRepo(db), repo.NewHistoryRepo(db)
	creds := service.NewBcryptStore(cfg.Auth.BcryptCost)
	images := imagestore.NewLocal(cfg.Upload.Dir)

	reg := service.NewRegistrationService(users, creds, log)
	if cfg.Auth.MinPasswordLen > 0 {
		reg.MinPasswordLen = cfg.Auth.MinPasswordLen
	}
	login := service.NewLoginService(users, creds, log)
	if cfg.Auth.MaxAttempts > 0 {
		login.MaxAttempts = cfg.Auth.MaxAttempts
	}
	if w := cfg.Auth.LockoutWindow(); w > 0 {
		login.Window = w
	}
	accounts := service.NewAccountService(users, images, log)
	history := service.NewHistoryService(hist)
	detect := service.NewDetectionService(classifier.NewMock(uint64(time.Now().UnixNano())), images, history, log)
	weather := service.NewWeatherService(weatherCache, forecast.NewMock(), log)

	if s := cfg.Seed; s.AdminUsername != "" && s.AdminPassword != "" {
		created, err := reg.EnsureAdmin(ctx, domain.UserDraft{
			Username: s.AdminUsername,
			Password: s.AdminPassword,
			Name:     "Administrator",
			Email:    s.AdminEmail,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("seed admin: %w", err)
		}
		if created {
			log.Info("admin account seeded", zap.String("username", s.AdminUsername))
		}
	}

	a.JWT = &auth.JWTer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, TTL: cfg.JWT.TTL()}
	a.Registry = &router.Registry{}
	a.Registry.Register(
		&handler.AuthHandler{Reg: reg, Login: login, JWT: a.JWT, Log: log},
		&handler.AccountHandler{Accounts: accounts, Reg: reg, Log: log},
		&handler.HistoryHandler{History: history, Log: log},
		&handler.DetectionHandler{Detect: detect, Log: log},
		&handler.WeatherHandler{Weather: weather, Accounts: accounts, Log: log},
	)
	a.Options = router.Options{Sessions: accounts, MaxBodyBytes: cfg.Upload.MaxBytes, Health: a.ping}
	return a, nil
}

func (a *App) weatherCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (domain.WeatherCache, error) {
	stale := cfg.Weather.StaleAfter()
	switch cfg.Weather.Cache {
	case "", "db":
		return repo.NewWeatherRepo(a.DB, stale), nil
	case "redis":
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := c.Ping(ctx, 5*time.Second); err != nil {
			_ = c.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = c.Close() })
		log.Info("weather cache on redis", zap.String("addr", cfg.Redis.Addr))
		return repo.NewRedisWeatherCache(c, stale), nil
	case "mongo":
		client, db, err := database.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, 10*time.Second)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		})
		log.Info("weather cache on mongo", zap.String("database", cfg.Mongo.Database))
		return repo.NewMongoWeatherCache(db, stale), nil
	default:
		return nil, fmt.Errorf("unknown weather cache %q", cfg.Weather.Cache)
	}
}

func (a *App) ping(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
