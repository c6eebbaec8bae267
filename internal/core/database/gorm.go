package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
)

var ErrUnsupportedDriver = errors.New("unsupported db driver")

const defaultSQLitePath = "data/agro.db"

type Opts struct {
	Driver             string // sqlite | postgres | mysql
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string // silent / error / warn / info
	Log                *zap.Logger
}

func (o Opts) sqlite() bool { return o.Driver == "" || o.Driver == "sqlite" }

// NewGorm opens the relational store behind users, history and the weather
// table. SQLite needs no server and is the default.
func NewGorm(o Opts) (*gorm.DB, error) {
	dial, err := dialector(o)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dial, &gorm.Config{Logger: gormLogger(o)})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", o.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// 0 表示沿用 database/sql 的默认值
	if o.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	}
	if o.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	}
	if o.ConnMaxLifetimeMin > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)
	}
	if o.sqlite() {
		// readers alongside the single writer; persists in the db file
		if _, err := sqlDB.Exec("PRAGMA journal_mode = WAL;"); err != nil && o.Log != nil {
			o.Log.Warn("sqlite pragma", zap.String("pragma", "journal_mode"), zap.Error(err))
		}
	}
	return db.Session(&gorm.Session{
		PrepareStmt:            true,
		SkipDefaultTransaction: true, // 写操作需要事务时由仓储显式开启
	}), nil
}

func dialector(o Opts) (gorm.Dialector, error) {
	switch {
	case o.sqlite():
		path := o.DSN
		if path == "" {
			path = defaultSQLitePath
		}
		if !strings.HasPrefix(path, "file:") && path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		return sqlite.Open(sqliteDSN(path)), nil
	case o.Driver == "postgres":
		return postgres.Open(o.DSN), nil
	case o.Driver == "mysql":
		dsn := normalizeMySQLDSN(o.DSN, o.Username, o.Password)
		if o.Log != nil {
			o.Log.Info("mysql dsn", zap.String("dsn", maskDSN(dsn)))
		}
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, o.Driver)
	}
}

// sqliteDSN adds the per-connection pragmas. They go in the DSN rather than
// through Exec so every pooled connection enforces foreign keys.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// gormLogger routes gorm's SQL log through zap when a logger is given.
func gormLogger(o Opts) logger.Interface {
	lvl := logger.Warn
	switch o.LogLevel {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	}
	if o.Log == nil {
		return logger.Default.LogMode(lvl)
	}
	return logger.New(zapPrintf{o.Log.Named("gorm").Sugar()}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true, // 查无此人是正常分支
	})
}

type zapPrintf struct{ s *zap.SugaredLogger }

func (z zapPrintf) Printf(format string, args ...any) { z.s.Infof(format, args...) }
