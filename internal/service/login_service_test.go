package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"agro-advisor/internal/domain"
)

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	f.mustRegister(t, "ravi", "harvest2024", "ravi@farm.in")

	s, err := f.login.Login(context.Background(), "ravi", "harvest2024")
	if err != nil {
		t.Fatalf("Login error = %v", err)
	}
	if s.Username != "ravi" || s.Role != domain.RoleUser || s.LastLogin == nil || !s.LastLogin.Equal(f.clock.now) {
		t.Fatalf("session = %+v", s)
	}
}

func TestLogin_UnknownUserLooksLikeBadPassword(t *testing.T) {
	f := newFixture(t)
	f.mustRegister(t, "ravi", "harvest2024", "ravi@farm.in")

	_, errUnknown := f.login.Login(context.Background(), "nobody", "harvest2024")
	_, errWrong := f.login.Login(context.Background(), "ravi", "wrong-pass")
	if !errors.Is(errUnknown, domain.ErrInvalidCredentials) || !errors.Is(errWrong, domain.ErrInvalidCredentials) {
		t.Fatalf("errors = %v / %v", errUnknown, errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Fatalf("messages differ: %q vs %q", errUnknown, errWrong)
	}
}

func TestLogin_LockoutFromLatestFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mustRegister(t, "ravi", "harvest2024", "ravi@farm.in")

	for i := 0; i < MaxAttempts; i++ {
		f.clock.Advance(time.Minute)
		if _, err := f.login.Login(ctx, "ravi", "wrong-pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d error = %v", i+1, err)
		}
	}
	lastFailure := f.clock.now

	// correct password is refused while locked, and the record is untouched
	f.clock.Advance(59 * time.Minute)
	if _, err := f.login.Login(ctx, "ravi", "harvest2024"); !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("locked login error = %v", err)
	}
	u, _ := f.users.FindByUsername(ctx, "ravi")
	if u.LoginAttempts != MaxAttempts || !u.LastLogin.Equal(lastFailure) {
		t.Fatalf("locked attempt changed record: attempts=%d last=%v", u.LoginAttempts, u.LastLogin)
	}
	if locked, _ := f.login.Locked(ctx, "ravi"); !locked {
		t.Fatal("Locked() = false inside the window")
	}

	// window measured from the latest failure has now elapsed
	f.clock.Advance(time.Minute)
	s, err := f.login.Login(ctx, "ravi", "harvest2024")
	if err != nil {
		t.Fatalf("login after window error = %v", err)
	}
	if s.Username != "ravi" {
		t.Fatalf("session = %+v", s)
	}
	u, _ = f.users.FindByUsername(ctx, "ravi")
	if u.LoginAttempts != 0 || !u.LastLogin.Equal(f.clock.now) {
		t.Fatalf("after success: attempts=%d last=%v", u.LoginAttempts, u.LastLogin)
	}
}

func TestLogin_FailureAfterWindowRelocks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mustRegister(t, "ravi", "harvest2024", "ravi@farm.in")
	for i := 0; i < MaxAttempts; i++ {
		_, _ = f.login.Login(ctx, "ravi", "wrong-pass")
	}

	f.clock.Advance(LockoutWindow + time.Second)
	if _, err := f.login.Login(ctx, "ravi", "still-wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("post-window wrong password error = %v", err)
	}
	f.clock.Advance(time.Second)
	if _, err := f.login.Login(ctx, "ravi", "harvest2024"); !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("expected relock, got %v", err)
	}
}

func TestLogin_CorruptHash(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := &domain.User{Username: "broken", PasswordHash: "not-a-bcrypt-hash", Name: "B", Email: "b@farm.in", Role: domain.RoleUser}
	if err := f.users.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	_, err := f.login.Login(ctx, "broken", "whatever1")
	if domain.KindOf(err) != domain.KindCredentialFormat {
		t.Fatalf("error = %v, want credential format", err)
	}
	got, _ := f.users.FindByUsername(ctx, "broken")
	if got.LoginAttempts != 0 {
		t.Fatalf("corrupt hash counted as failure: %d", got.LoginAttempts)
	}
}
