package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"agro-advisor/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSecret     = errors.New("jwt secret is empty")
)

// Claims carries just enough to authorize a request; the full profile is
// loaded from the user store when needed.
type Claims struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"` // user | admin
	// Since is the subject account's created_at in unix nanoseconds. A
	// deleted and re-registered username gets a new value, so old tokens
	// stop matching.
	Since int64 `json:"since,omitempty"`
	jwt.RegisteredClaims
}

// Session is the session user carried by the token.
func (c *Claims) Session() *domain.SessionUser {
	s := &domain.SessionUser{Username: c.Username, Name: c.Name, Role: c.Role}
	if c.Since != 0 {
		s.CreatedAt = time.Unix(0, c.Since)
	}
	return s
}

// Matches reports whether the token was issued for this incarnation of the
// stored account.
func (c *Claims) Matches(u *domain.SessionUser) bool {
	return u != nil && u.Username == c.Username && !u.CreatedAt.IsZero() && u.CreatedAt.UnixNano() == c.Since
}

type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

func (j *JWTer) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

// Issue signs an HS256 access token for u.
func (j *JWTer) Issue(u *domain.SessionUser) (string, error) {
	if len(j.Secret) == 0 {
		return "", ErrNoSecret
	}
	iat := j.now()
	var since int64
	if !u.CreatedAt.IsZero() {
		since = u.CreatedAt.UnixNano()
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: u.Username,
		Name:     u.Name,
		Role:     u.Role,
		Since:    since,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.Username,
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(j.TTL)),
		},
	})
	return tok.SignedString(j.Secret)
}

func (j *JWTer) Parse(raw string) (*Claims, error) {
	var c Claims
	t, err := jwt.ParseWithClaims(raw, &c, j.key,
		jwt.WithIssuer(j.Issuer),
		jwt.WithLeeway(time.Minute),
		jwt.WithTimeFunc(j.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !t.Valid || c.Username == "" {
		return nil, ErrInvalidToken
	}
	return &c, nil
}

func (j *JWTer) key(*jwt.Token) (any, error) {
	if len(j.Secret) == 0 {
		return nil, ErrNoSecret
	}
	return j.Secret, nil
}
