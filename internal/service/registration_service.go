package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"agro-advisor/internal/domain"
)

const (
	MinPasswordLen = 8
	maxPasswordLen = 72 // bcrypt input limit, in bytes
)

// RegistrationService validates drafts and creates accounts.
type RegistrationService struct {
	users          domain.UserRepository
	creds          domain.CredentialStore
	validate       *validator.Validate
	log            *zap.Logger
	MinPasswordLen int
	Now            func() time.Time
}

func NewRegistrationService(users domain.UserRepository, creds domain.CredentialStore, log *zap.Logger) *RegistrationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistrationService{
		users:          users,
		creds:          creds,
		validate:       validator.New(),
		log:            log,
		MinPasswordLen: MinPasswordLen,
		Now:            time.Now,
	}
}

// Register creates an account. actor is the authenticated caller, nil for a
// self-service sign-up; only an admin actor may create another admin.
//
// Checks run in a fixed order and the first violation wins: required fields,
// password length, email grammar, username uniqueness, email uniqueness.
// Privilege is checked before the uniqueness lookups so an unprivileged caller
// cannot discover existing accounts through the admin path.
func (s *RegistrationService) Register(ctx context.Context, actor *domain.SessionUser, d domain.UserDraft) (*domain.User, error) {
	u, err := s.register(ctx, d, actor.IsAdmin())
	if err != nil {
		registerTotal.WithLabelValues(domain.CodeOf(err)).Inc()
		if domain.KindOf(err) == domain.KindStorage {
			s.log.Error("register failed", zap.String("username", d.Username), zap.Error(err))
		}
		return nil, err
	}
	registerTotal.WithLabelValues("success").Inc()
	s.log.Info("user registered", zap.String("username", u.Username), zap.String("role", u.Role))
	return u, nil
}

// EnsureAdmin creates the bootstrap admin unless an admin already exists.
func (s *RegistrationService) EnsureAdmin(ctx context.Context, d domain.UserDraft) (bool, error) {
	n, err := s.users.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	d.Role = domain.RoleAdmin
	if _, err := s.register(ctx, d, true); err != nil {
		return false, err
	}
	s.log.Info("bootstrap admin created", zap.String("username", d.Username))
	return true, nil
}

func (s *RegistrationService) register(ctx context.Context, d domain.UserDraft, privileged bool) (*domain.User, error) {
	d.Username = strings.TrimSpace(d.Username)
	d.Name = strings.TrimSpace(d.Name)
	d.Email = NormalizeEmail(d.Email)
	d.Location = strings.TrimSpace(d.Location)

	if d.Username == "" || d.Password == "" || d.Name == "" || d.Email == "" {
		return nil, domain.ErrMissingFields
	}
	if utf8.RuneCountInString(d.Password) < s.MinPasswordLen {
		return nil, domain.ErrWeakPassword
	}
	if len(d.Password) > maxPasswordLen {
		return nil, domain.ErrPasswordTooLong
	}
	if !s.ValidEmail(d.Email) {
		return nil, domain.ErrInvalidEmail
	}

	role := strings.ToLower(strings.TrimSpace(d.Role))
	switch role {
	case "":
		role = domain.RoleUser
	case domain.RoleUser:
	case domain.RoleAdmin:
		if !privileged {
			return nil, domain.ErrInsufficientPrivilege
		}
	default:
		return nil, domain.ErrInvalidRole
	}

	farmSize := domain.DefaultFarmSize
	if d.FarmSize != nil {
		farmSize = *d.FarmSize
	}
	if farmSize < 0 {
		return nil, domain.ErrInvalidFarmSize
	}

	if taken, err := s.users.ExistsByUsername(ctx, d.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, domain.ErrUsernameTaken
	}
	if taken, err := s.users.ExistsByEmail(ctx, d.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, domain.ErrEmailTaken
	}

	hash, err := s.creds.Hash(d.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Username:      d.Username,
		PasswordHash:  hash,
		Name:          d.Name,
		Email:         d.Email,
		Role:          role,
		FarmSize:      farmSize,
		Location:      d.Location,
		LoginAttempts: 0,
		CreatedAt:     s.Now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ValidEmail accepts local-part@domain where the domain contains a dot.
func (s *RegistrationService) ValidEmail(email string) bool {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	host := email[at+1:]
	dot := strings.IndexByte(host, '.')
	return dot > 0 && dot < len(host)-1
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
