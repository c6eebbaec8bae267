package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"agro-advisor/internal/core/auth"
	"agro-advisor/internal/core/server"
	mdw "agro-advisor/internal/transport/http/middleware"
	resp "agro-advisor/internal/transport/http/response"
)

type Options struct {
	// Sessions resolves token subjects to stored accounts; required.
	Sessions     mdw.SessionSource
	MaxBodyBytes int64
	Timeout      time.Duration
	// Health reports whether storage is reachable; nil means always healthy.
	Health func(ctx context.Context) error
}

func (o Options) withDefaults() Options {
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 16 << 20
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	return o
}

func newEngine(l *zap.Logger, o Options) *gin.Engine {
	r := server.NewRouter(l, server.Options{Fields: mdw.AccessFields, OnPanic: mdw.PanicEnvelope})
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(o.MaxBodyBytes),
		mdw.Timeout(o.Timeout),
		mdw.Metrics(),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		if o.Health != nil {
			if err := o.Health(c.Request.Context()); err != nil {
				l.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, resp.Error(resp.CodeServerError, "storage unavailable"))
				return
			}
		}
		c.JSON(http.StatusOK, resp.OK(gin.H{"ok": 1}))
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func NewAPIEngine(l *zap.Logger, jwter *auth.JWTer, reg *Registry, o Options) *gin.Engine {
	o = o.withDefaults()
	r := newEngine(l, o)

	api := r.Group("/api/v1")

	// 未登录接口按 IP 限速，限制暴力破解
	public := api.Group("")
	public.Use(mdw.RateLimitPerIP(rate.Every(time.Second), 20, 10*time.Minute))

	authed := api.Group("")
	authed.Use(mdw.AuthJWT(jwter, o.Sessions, l, ""))

	reg.MountAPI(public, authed)
	return r
}
