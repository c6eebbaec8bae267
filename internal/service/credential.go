package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"agro-advisor/internal/domain"
	"agro-advisor/pkg/utils"
)

// BcryptStore is the bcrypt-backed credential store. The default cost keeps a
// verification in the tens of milliseconds.
type BcryptStore struct {
	Cost int
}

func NewBcryptStore(cost int) *BcryptStore {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptStore{Cost: cost}
}

var _ domain.CredentialStore = (*BcryptStore)(nil)

func (s *BcryptStore) Hash(password string) (string, error) {
	h, err := utils.HashPassword(password, s.Cost)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return "", domain.ErrPasswordTooLong
	}
	return h, err
}

func (s *BcryptStore) Verify(hash, candidate string) (bool, error) {
	ok, err := utils.CheckPassword(candidate, hash)
	if err != nil {
		return false, &domain.Error{
			Kind: domain.KindCredentialFormat,
			Code: domain.ErrCredentialFormat.Code,
			Msg:  domain.ErrCredentialFormat.Msg,
			Err:  err,
		}
	}
	return ok, nil
}
