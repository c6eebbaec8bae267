package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if c.Auth.MaxAttempts != 5 || c.Auth.LockoutWindow() != time.Hour {
		t.Fatalf("auth defaults = %+v", c.Auth)
	}
	if c.Weather.Cache != "db" || c.Weather.StaleAfter() != time.Hour {
		t.Fatalf("weather defaults = %+v", c.Weather)
	}
	if c.DB.Driver != "sqlite" || c.App.HTTP.Port != 8080 {
		t.Fatalf("db/http defaults = %+v %+v", c.DB, c.App.HTTP)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
app:
  name: farm
  http:
    port: 9090
auth:
  maxAttempts: 3
weather:
  cache: redis
jwt:
  secret: from-file
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("APP_JWT_SECRET", "from-env")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if c.App.Name != "farm" || c.App.HTTP.Port != 9090 {
		t.Fatalf("app = %+v", c.App)
	}
	if c.Auth.MaxAttempts != 3 || c.Auth.LockoutWindowMin != 60 {
		t.Fatalf("auth = %+v", c.Auth)
	}
	if c.Weather.Cache != "redis" {
		t.Fatalf("weather = %+v", c.Weather)
	}
	if c.JWT.Secret != "from-env" {
		t.Fatalf("jwt secret = %q, want env override", c.JWT.Secret)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("app: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
