package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type Rotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate Rotate
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Mongo struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Auth struct {
	MaxAttempts      int
	LockoutWindowMin int
	BcryptCost       int
	MinPasswordLen   int
}

type Weather struct {
	Cache         string // db | redis | mongo
	StaleAfterMin int
}

type Upload struct {
	Dir      string
	MaxBytes int64
}

// Seed describes the admin account created on first start.
type Seed struct {
	AdminUsername string
	AdminPassword string
	AdminEmail    string
}

type Config struct {
	App     App
	Log     Log
	JWT     JWT
	DB      DB
	Redis   Redis `mapstructure:"redis"`
	Mongo   Mongo `mapstructure:"mongo"`
	Auth    Auth
	Weather Weather
	Upload  Upload
	Seed    Seed
}

func (a Auth) LockoutWindow() time.Duration {
	return time.Duration(a.LockoutWindowMin) * time.Minute
}

func (w Weather) StaleAfter() time.Duration {
	return time.Duration(w.StaleAfterMin) * time.Minute
}

func (j JWT) TTL() time.Duration {
	return time.Duration(j.AccessTokenTTLMin) * time.Minute
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "agro-advisor")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 15)
	v.SetDefault("app.http.writeTimeoutSec", 30)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.rotate.filename", "logs/app.log")
	v.SetDefault("log.rotate.maxSizeMB", 100)
	v.SetDefault("log.rotate.maxBackups", 7)
	v.SetDefault("log.rotate.maxAgeDays", 30)

	v.SetDefault("jwt.issuer", "agro-advisor")
	v.SetDefault("jwt.accessTokenTTLMin", 120)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "data/agro.db")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 60)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")

	v.SetDefault("mongo.database", "agro")

	v.SetDefault("auth.maxAttempts", 5)
	v.SetDefault("auth.lockoutWindowMin", 60)
	v.SetDefault("auth.minPasswordLen", 8)

	v.SetDefault("weather.cache", "db")
	v.SetDefault("weather.staleAfterMin", 60)

	v.SetDefault("upload.dir", "data/uploads")
	v.SetDefault("upload.maxBytes", 5<<20)
}

// Load reads the yaml file at path (or $CONFIG_PATH). A missing file is not an
// error: defaults and APP_* environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, err
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// MustLoad is Load that exits on error.
func MustLoad(path string) *Config {
	c, err := Load(path)
	if err != nil {
		panic("load config: " + err.Error())
	}
	return c
}
