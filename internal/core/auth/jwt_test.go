package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"agro-advisor/internal/domain"
)

func TestJWTer_IssueParse(t *testing.T) {
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "agro", TTL: time.Hour}
	tok, err := j.Issue(&domain.SessionUser{Username: "alice", Name: "Alice", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("Issue error = %v", err)
	}
	c, err := j.Parse(tok)
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	s := c.Session()
	if s.Username != "alice" || s.Name != "Alice" || !s.IsAdmin() {
		t.Fatalf("unexpected session: %+v", s)
	}
}

func TestJWTer_ParseRejects(t *testing.T) {
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "agro", TTL: time.Hour}
	tok, _ := j.Issue(&domain.SessionUser{Username: "alice", Role: domain.RoleUser})

	other := &JWTer{Secret: []byte("other-secret"), Issuer: "agro", TTL: time.Hour}
	if _, err := other.Parse(tok); err == nil {
		t.Fatalf("expected signature error")
	}
	wrongIssuer := &JWTer{Secret: []byte("test-secret"), Issuer: "someone-else", TTL: time.Hour}
	if _, err := wrongIssuer.Parse(tok); err == nil {
		t.Fatalf("expected issuer error")
	}
	expired := &JWTer{Secret: []byte("test-secret"), Issuer: "agro", TTL: -2 * time.Hour}
	old, _ := expired.Issue(&domain.SessionUser{Username: "alice"})
	if _, err := j.Parse(old); err == nil {
		t.Fatalf("expected expiry error")
	}
	if _, err := j.Parse("garbage"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSessionContext(t *testing.T) {
	ctx := context.Background()
	if SessionFrom(ctx) != nil {
		t.Fatalf("expected nil session on empty context")
	}
	u := &domain.SessionUser{Username: "bob"}
	if got := SessionFrom(WithSession(ctx, u)); got != u {
		t.Fatalf("SessionFrom = %+v, want %+v", got, u)
	}
}

func TestJWTer_Clock(t *testing.T) {
	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	j := &JWTer{Secret: []byte("k"), Issuer: "agro", TTL: time.Hour, Now: func() time.Time { return at }}
	tok, err := j.Issue(&domain.SessionUser{Username: "ravi"})
	if err != nil {
		t.Fatal(err)
	}
	at = at.Add(59 * time.Minute)
	if _, err := j.Parse(tok); err != nil {
		t.Fatalf("token rejected inside TTL: %v", err)
	}
	// one minute of leeway past expiry
	at = at.Add(3 * time.Minute)
	if _, err := j.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Parse after expiry = %v, want ErrInvalidToken", err)
	}
}

func TestJWTer_EmptySecret(t *testing.T) {
	j := &JWTer{Issuer: "agro", TTL: time.Hour}
	if _, err := j.Issue(&domain.SessionUser{Username: "ravi"}); !errors.Is(err, ErrNoSecret) {
		t.Fatalf("Issue = %v, want ErrNoSecret", err)
	}
}
