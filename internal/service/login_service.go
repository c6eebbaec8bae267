package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"agro-advisor/internal/domain"
)

const (
	MaxAttempts   = 5
	LockoutWindow = time.Hour
)

// LoginService authenticates users and applies the lockout policy.
//
// A user is locked while login_attempts >= MaxAttempts and less than
// LockoutWindow has passed since last_login. Failed attempts stamp last_login,
// so the window always runs from the latest failure; a rejected attempt on a
// locked account does not touch the record.
type LoginService struct {
	users       domain.UserRepository
	creds       domain.CredentialStore
	log         *zap.Logger
	MaxAttempts int
	Window      time.Duration
	Now         func() time.Time
}

func NewLoginService(users domain.UserRepository, creds domain.CredentialStore, log *zap.Logger) *LoginService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoginService{
		users:       users,
		creds:       creds,
		log:         log,
		MaxAttempts: MaxAttempts,
		Window:      LockoutWindow,
		Now:         time.Now,
	}
}

func (s *LoginService) Login(ctx context.Context, username, password string) (*domain.SessionUser, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		s.fail("storage", username, err)
		return nil, err
	}
	if u == nil {
		s.fail("unknown_user", username, nil)
		return nil, domain.ErrInvalidCredentials
	}

	now := s.Now()
	if s.locked(u, now) {
		s.fail("locked", username, nil)
		return nil, domain.ErrAccountLocked
	}

	ok, err := s.creds.Verify(u.PasswordHash, password)
	if err != nil {
		// corrupt hash: never authenticate, surface for the operator
		s.fail("credential_format", username, err)
		return nil, err
	}
	if !ok {
		attempts, err := s.users.RecordFailedLogin(ctx, username, now)
		if err != nil {
			s.fail("storage", username, err)
			return nil, err
		}
		s.fail("bad_password", username, nil, zap.Int("attempts", attempts))
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.users.UpdateLoginState(ctx, username, 0, now); err != nil {
		s.fail("storage", username, err)
		return nil, err
	}
	u.LoginAttempts = 0
	u.LastLogin = &now
	loginTotal.WithLabelValues("success").Inc()
	s.log.Info("login succeeded", zap.String("username", username))
	return u.Session(), nil
}

// Locked reports whether username is currently locked out.
func (s *LoginService) Locked(ctx context.Context, username string) (bool, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil || u == nil {
		return false, err
	}
	return s.locked(u, s.Now()), nil
}

func (s *LoginService) locked(u *domain.User, now time.Time) bool {
	if u.LoginAttempts < s.MaxAttempts || u.LastLogin == nil {
		return false
	}
	return now.Sub(*u.LastLogin) < s.Window
}

func (s *LoginService) fail(reason, username string, err error, extra ...zap.Field) {
	loginTotal.WithLabelValues(reason).Inc()
	fields := append([]zap.Field{zap.String("reason", reason), zap.String("username", username)}, extra...)
	if err != nil {
		s.log.Error("login failed", append(fields, zap.Error(err))...)
		return
	}
	s.log.Info("login failed", fields...)
}
