package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agro-advisor/internal/core/config"
)

func TestNewRouter_CORSAndRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(zap.NewNop(), Options{})
	r.GET("/boom", func(c *gin.Context) { panic("boom") })
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("panic status = %d", w.Code)
	}

	r2 := NewRouter(zap.NewNop(), Options{OnPanic: func(c *gin.Context, _ any) {
		c.AbortWithStatusJSON(http.StatusOK, gin.H{"code": 500})
	}})
	r2.GET("/boom", func(c *gin.Context) { panic("boom") })
	w = httptest.NewRecorder()
	r2.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusOK || w.Body.String() != `{"code":500}` {
		t.Fatalf("custom recovery = %d %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header: %v", w.Header())
	}
}

func TestBuildServer_Defaults(t *testing.T) {
	srv := BuildServer(config.HTTP{Host: "127.0.0.1", Port: 9000, ReadTimeoutSec: 5}, http.NotFoundHandler())
	if srv.Addr != "127.0.0.1:9000" {
		t.Fatalf("addr = %s", srv.Addr)
	}
	if srv.ReadTimeout != 5*time.Second || srv.WriteTimeout != 30*time.Second {
		t.Fatalf("timeouts = %v %v", srv.ReadTimeout, srv.WriteTimeout)
	}
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, srv, zap.NewNop(), time.Second) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
