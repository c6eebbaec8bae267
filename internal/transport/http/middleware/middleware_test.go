package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"agro-advisor/internal/core/auth"
	"agro-advisor/internal/domain"
	"agro-advisor/internal/transport/http/ez"
	resp "agro-advisor/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

func codeOf(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var r resp.Resp
	if err := json.Unmarshal(w.Body.Bytes(), &r); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return r.Code
}

type fakeUsers map[string]*domain.SessionUser

func (f fakeUsers) Get(_ context.Context, username string) (*domain.SessionUser, error) {
	if u, ok := f[username]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

type brokenUsers struct{}

func (brokenUsers) Get(context.Context, string) (*domain.SessionUser, error) {
	return nil, domain.Storage("find user", errors.New("db down"))
}

func TestAuthJWT(t *testing.T) {
	j := &auth.JWTer{Secret: []byte("k"), Issuer: "agro", TTL: time.Hour}
	created := time.Date(2024, 3, 1, 9, 0, 0, 123456789, time.UTC)
	ravi := &domain.SessionUser{Username: "ravi", Name: "Ravi", Email: "ravi@farm.in", Role: domain.RoleUser, CreatedAt: created}
	root := &domain.SessionUser{Username: "root", Role: domain.RoleAdmin, CreatedAt: created}
	users := fakeUsers{"ravi": ravi, "root": root}

	r := gin.New()
	r.GET("/me", AuthJWT(j, users, nil, ""), func(c *gin.Context) {
		s := auth.SessionFrom(c.Request.Context())
		c.JSON(http.StatusOK, resp.OK(gin.H{"u": ez.Session(c).Username, "ctx": s.Username, "email": s.Email}))
	})
	r.GET("/admin", AuthJWT(j, users, nil, domain.RoleAdmin), func(c *gin.Context) { c.JSON(http.StatusOK, resp.OK(nil)) })
	r.GET("/broken", AuthJWT(j, brokenUsers{}, nil, ""), func(c *gin.Context) { c.JSON(http.StatusOK, resp.OK(nil)) })

	call := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if c := codeOf(t, call("/me", "")); c != resp.CodeUnauthorized {
		t.Fatalf("missing token code = %d", c)
	}
	if c := codeOf(t, call("/me", "not-a-jwt")); c != resp.CodeUnauthorized {
		t.Fatalf("bad token code = %d", c)
	}

	userTok, _ := j.Issue(ravi)
	w := call("/me", userTok)
	if codeOf(t, w) != resp.CodeOK {
		t.Fatalf("me = %s", w.Body.String())
	}
	var body struct {
		Data struct{ U, Ctx, Email string } `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.U != "ravi" || body.Data.Ctx != "ravi" || body.Data.Email != "ravi@farm.in" {
		t.Fatalf("stored session not propagated: %s", w.Body.String())
	}
	if c := codeOf(t, call("/admin", userTok)); c != resp.CodeForbidden {
		t.Fatalf("user on admin route code = %d", c)
	}
	adminTok, _ := j.Issue(root)
	if c := codeOf(t, call("/admin", adminTok)); c != resp.CodeOK {
		t.Fatalf("admin code = %d", c)
	}
	if c := codeOf(t, call("/broken", userTok)); c != resp.CodeServerError {
		t.Fatalf("storage failure code = %d", c)
	}
}

func TestAuthJWT_StoredAccountWins(t *testing.T) {
	j := &auth.JWTer{Secret: []byte("k"), Issuer: "agro", TTL: time.Hour}
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	users := fakeUsers{"ravi": {Username: "ravi", Role: domain.RoleUser, CreatedAt: created}}

	r := gin.New()
	r.GET("/admin", AuthJWT(j, users, nil, domain.RoleAdmin), func(c *gin.Context) { c.JSON(http.StatusOK, resp.OK(nil)) })
	r.GET("/me", AuthJWT(j, users, nil, ""), func(c *gin.Context) { c.JSON(http.StatusOK, resp.OK(nil)) })
	call := func(path, token string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return codeOf(t, w)
	}

	// demoted: the claim still says admin
	promoted, _ := j.Issue(&domain.SessionUser{Username: "ravi", Role: domain.RoleAdmin, CreatedAt: created})
	if c := call("/admin", promoted); c != resp.CodeForbidden {
		t.Fatalf("claimed admin on admin route = %d", c)
	}
	// issued for an earlier account with the same username
	previous, _ := j.Issue(&domain.SessionUser{Username: "ravi", Role: domain.RoleUser, CreatedAt: created.Add(-time.Hour)})
	if c := call("/me", previous); c != resp.CodeUnauthorized {
		t.Fatalf("token of replaced account = %d", c)
	}
	gone, _ := j.Issue(&domain.SessionUser{Username: "asha", Role: domain.RoleUser, CreatedAt: created})
	if c := call("/me", gone); c != resp.CodeUnauthorized {
		t.Fatalf("token of deleted account = %d", c)
	}
}

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitPerIP(0.001, 2, time.Minute))
	r.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, resp.OK(nil)) })

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return codeOf(t, w)
	}
	if hit("10.0.0.1") != resp.CodeOK || hit("10.0.0.1") != resp.CodeOK {
		t.Fatal("burst should pass")
	}
	if c := hit("10.0.0.1"); c != resp.CodeTooManyRequests {
		t.Fatalf("third call code = %d", c)
	}
	if c := hit("10.0.0.2"); c != resp.CodeOK {
		t.Fatalf("other ip code = %d", c)
	}
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(20 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
	if c := codeOf(t, w); c != resp.CodeTimeout {
		t.Fatalf("code = %d", c)
	}
}

func TestRequestIDAndAccessFields(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var n int
	r.GET("/", func(c *gin.Context) {
		c.Set(ez.KeySession, &domain.SessionUser{Username: "ravi"})
		n = len(AccessFields(c))
		c.Status(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/?token=abc", nil)
	req.Header.Set(KeyRequestID, "rid-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get(KeyRequestID) != "rid-1" {
		t.Fatalf("request id header = %q", w.Header().Get(KeyRequestID))
	}
	if n != 3 {
		t.Fatalf("access fields = %d, want rid, username and query", n)
	}
	if got := mask(map[string][]string{"Token": {"abc"}, "q": {"x"}}); got["Token"][0] != "****" || got["q"][0] != "x" {
		t.Fatalf("mask = %v", got)
	}
}
