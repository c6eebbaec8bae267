package domain

import (
	"context"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const DefaultFarmSize = 5.0

// User is a persisted account. Username, PasswordHash and CreatedAt never
// change after creation.
type User struct {
	Username      string     `gorm:"primaryKey;size:64" json:"username"`
	PasswordHash  string     `gorm:"size:100;not null" json:"-"`
	Name          string     `gorm:"size:128;not null" json:"name"`
	Email         string     `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Role          string     `gorm:"size:16;not null;default:user" json:"role"`
	FarmSize      float64    `gorm:"not null;default:5" json:"farmSize"`
	Location      string     `gorm:"size:128" json:"location"`
	LoginAttempts int        `gorm:"not null;default:0" json:"loginAttempts"`
	LastLogin     *time.Time `json:"lastLogin"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func (User) TableName() string { return "users" }

// UserDraft is the input to registration. Password is the raw password and is
// never persisted.
type UserDraft struct {
	Username string
	Password string
	Name     string
	Email    string
	Role     string
	FarmSize *float64
	Location string
}

// SessionUser is the part of a User that is safe to hand to the presentation
// layer.
type SessionUser struct {
	Username  string     `json:"username"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	FarmSize  float64    `json:"farmSize"`
	Location  string     `json:"location"`
	LastLogin *time.Time `json:"lastLogin"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (u *SessionUser) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// Session returns u with the password hash stripped.
func (u *User) Session() *SessionUser {
	return &SessionUser{
		Username:  u.Username,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		FarmSize:  u.FarmSize,
		Location:  u.Location,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}

// ProfileUpdate carries the mutable profile fields; nil means unchanged.
type ProfileUpdate struct {
	FarmSize *float64
	Location *string
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByUsername(ctx context.Context, username string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateLoginState(ctx context.Context, username string, attempts int, lastLogin time.Time) error
	// RecordFailedLogin atomically increments login_attempts, stamps
	// last_login and returns the new attempt count.
	RecordFailedLogin(ctx context.Context, username string, at time.Time) (int, error)
	UpdateProfile(ctx context.Context, username string, p ProfileUpdate) (*User, error)
	Delete(ctx context.Context, username string) (bool, error)
	ListAll(ctx context.Context) ([]User, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

// CredentialStore hashes and verifies passwords.
type CredentialStore interface {
	Hash(password string) (string, error)
	Verify(hash, candidate string) (bool, error)
}
