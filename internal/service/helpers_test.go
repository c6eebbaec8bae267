package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"agro-advisor/internal/core/database"
	"agro-advisor/internal/domain"
	"agro-advisor/internal/repo"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// seedUsers inserts bare accounts so history rows have an owner.
func seedUsers(t *testing.T, db *gorm.DB, names ...string) {
	t.Helper()
	users := repo.NewUserRepo(db)
	for _, n := range names {
		u := &domain.User{Username: n, PasswordHash: "x", Name: n, Email: n + "@farm.in", Role: domain.RoleUser, FarmSize: domain.DefaultFarmSize}
		if err := users.Create(context.Background(), u); err != nil {
			t.Fatalf("seed %s: %v", n, err)
		}
	}
}

// clock is a settable time source shared by services under test.
type clock struct{ now time.Time }

func (c *clock) Now() time.Time          { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	db    *gorm.DB
	users *repo.UserRepo
	creds *BcryptStore
	reg   *RegistrationService
	login *LoginService
	clock *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)
	users := repo.NewUserRepo(db)
	creds := NewBcryptStore(bcrypt.MinCost)
	c := &clock{now: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)}

	reg := NewRegistrationService(users, creds, nil)
	reg.Now = c.Now
	login := NewLoginService(users, creds, nil)
	login.Now = c.Now
	return &fixture{db: db, users: users, creds: creds, reg: reg, login: login, clock: c}
}

func (f *fixture) mustRegister(t *testing.T, username, password, email string) *domain.User {
	t.Helper()
	u, err := f.reg.Register(context.Background(), nil, domain.UserDraft{
		Username: username, Password: password, Name: "Farmer " + username, Email: email,
	})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", username, err)
	}
	return u
}
