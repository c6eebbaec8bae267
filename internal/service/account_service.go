package service

import (
	"context"

	"go.uber.org/zap"

	"agro-advisor/internal/domain"
)

// AccountService covers profile edits and the administrative user paths.
type AccountService struct {
	users  domain.UserRepository
	images domain.FileStore
	log    *zap.Logger
}

func NewAccountService(users domain.UserRepository, images domain.FileStore, log *zap.Logger) *AccountService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountService{users: users, images: images, log: log}
}

func (s *AccountService) Get(ctx context.Context, username string) (*domain.SessionUser, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u.Session(), nil
}

// UpdateProfile changes the caller's own farm size and location.
func (s *AccountService) UpdateProfile(ctx context.Context, actor *domain.SessionUser, p domain.ProfileUpdate) (*domain.SessionUser, error) {
	if actor == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if p.FarmSize != nil && *p.FarmSize < 0 {
		return nil, domain.ErrInvalidFarmSize
	}
	u, err := s.users.UpdateProfile(ctx, actor.Username, p)
	if err != nil {
		return nil, err
	}
	return u.Session(), nil
}

func (s *AccountService) List(ctx context.Context, actor *domain.SessionUser) ([]domain.SessionUser, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrInsufficientPrivilege
	}
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SessionUser, 0, len(users))
	for i := range users {
		out = append(out, *users[i].Session())
	}
	return out, nil
}

// Delete removes username with its history rows. Stored images are removed
// best-effort afterwards. Reports false when the user does not exist.
func (s *AccountService) Delete(ctx context.Context, actor *domain.SessionUser, username string) (bool, error) {
	if !actor.IsAdmin() {
		return false, domain.ErrInsufficientPrivilege
	}
	ok, err := s.users.Delete(ctx, username)
	if err != nil || !ok {
		return ok, err
	}
	if s.images != nil {
		if err := s.images.RemoveAll(ctx, username); err != nil {
			s.log.Warn("remove user images", zap.String("username", username), zap.Error(err))
		}
	}
	s.log.Info("user deleted", zap.String("username", username), zap.String("by", actor.Username))
	return true, nil
}
