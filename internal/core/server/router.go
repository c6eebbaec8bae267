package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agro-advisor/internal/core/config"
)

type Options struct {
	// Fields adds per-request fields to the access log line.
	Fields ginzap.Fn
	// OnPanic writes the response after a recovered panic; nil aborts with 500.
	OnPanic gin.RecoveryFunc
}

// NewRouter returns an engine with zap access logging, panic recovery and
// permissive CORS for the dashboard front end.
func NewRouter(l *zap.Logger, o Options) *gin.Engine {
	r := gin.New()
	r.Use(ginzap.GinzapWithConfig(l, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/health", "/metrics"},
		Context:    o.Fields,
	}))
	if o.OnPanic != nil {
		r.Use(ginzap.CustomRecoveryWithZap(l, true, o.OnPanic))
	} else {
		r.Use(ginzap.RecoveryWithZap(l, true))
	}
	cc := cors.DefaultConfig()
	cc.AllowAllOrigins = true
	cc.AddAllowHeaders("Authorization", "Accept-Language")
	r.Use(cors.New(cc))
	return r
}

func BuildServer(h config.HTTP, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:           Addr(h.Host, h.Port),
		Handler:        handler,
		ReadTimeout:    seconds(h.ReadTimeoutSec, 15),
		WriteTimeout:   seconds(h.WriteTimeoutSec, 30),
		IdleTimeout:    seconds(h.IdleTimeoutSec, 60),
		MaxHeaderBytes: 1 << 20, // 1MB
	}
}

// Run serves until ctx is done, then shuts down with a grace period.
func Run(ctx context.Context, srv *http.Server, l *zap.Logger, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		l.Info("http starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	l.Info("http shutting down", zap.String("addr", srv.Addr))
	return srv.Shutdown(sctx)
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }

func seconds(v, def int) time.Duration {
	if v <= 0 {
		v = def
	}
	return time.Duration(v) * time.Second
}
