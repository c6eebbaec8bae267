package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"agro-advisor/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

var _ domain.UserRepository = (*UserRepo)(nil)

// Create inserts u. Uniqueness is checked up front for a precise error and
// enforced again by the unique indexes for racing inserts.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if taken, err := exists(tx, "username = ?", u.Username); err != nil {
			return err
		} else if taken {
			return domain.ErrUsernameTaken
		}
		if taken, err := exists(tx, "email = ?", u.Email); err != nil {
			return err
		} else if taken {
			return domain.ErrEmailTaken
		}
		return tx.Create(u).Error
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrUsernameTaken), errors.Is(err, domain.ErrEmailTaken):
		return err
	case isDupKey(err):
		// lost a race: find out which key collided
		if taken, e := r.ExistsByUsername(ctx, u.Username); e == nil && taken {
			return domain.ErrUsernameTaken
		}
		return domain.ErrEmailTaken
	default:
		return domain.Storage("create user", err)
	}
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Storage("find user", err)
	}
	return &u, nil
}

func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	ok, err := exists(r.db.WithContext(ctx), "username = ?", username)
	if err != nil {
		return false, domain.Storage("check username", err)
	}
	return ok, nil
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ok, err := exists(r.db.WithContext(ctx), "email = ?", email)
	if err != nil {
		return false, domain.Storage("check email", err)
	}
	return ok, nil
}

func (r *UserRepo) UpdateLoginState(ctx context.Context, username string, attempts int, lastLogin time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("username = ?", username).
		Updates(map[string]any{"login_attempts": attempts, "last_login": lastLogin})
	if res.Error != nil {
		return domain.Storage("update login state", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) RecordFailedLogin(ctx context.Context, username string, at time.Time) (int, error) {
	var attempts int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.User{}).
			Where("username = ?", username).
			Updates(map[string]any{
				"login_attempts": gorm.Expr("login_attempts + 1"),
				"last_login":     at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrUserNotFound
		}
		return tx.Model(&domain.User{}).
			Select("login_attempts").
			Where("username = ?", username).
			Scan(&attempts).Error
	})
	if errors.Is(err, domain.ErrUserNotFound) {
		return 0, err
	}
	if err != nil {
		return 0, domain.Storage("record failed login", err)
	}
	return attempts, nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, username string, p domain.ProfileUpdate) (*domain.User, error) {
	var out domain.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cols := map[string]any{}
		if p.FarmSize != nil {
			cols["farm_size"] = *p.FarmSize
		}
		if p.Location != nil {
			cols["location"] = strings.TrimSpace(*p.Location)
		}
		if len(cols) > 0 {
			res := tx.Model(&domain.User{}).Where("username = ?", username).Updates(cols)
			if res.Error != nil {
				return res.Error
			}
		}
		err := tx.First(&out, "username = ?", username).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	})
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, domain.Storage("update profile", err)
	}
	return &out, nil
}

// Delete removes the user together with their crop and detection history.
func (r *UserRepo) Delete(ctx context.Context, username string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("username = ?", username).Delete(&domain.CropRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("username = ?", username).Delete(&domain.DetectionRecord{}).Error; err != nil {
			return err
		}
		res := tx.Where("username = ?", username).Delete(&domain.User{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		if !deleted {
			// roll back, nothing is removed for an unknown user
			return errNoUser
		}
		return nil
	})
	if errors.Is(err, errNoUser) {
		return false, nil
	}
	if err != nil {
		return false, domain.Storage("delete user", err)
	}
	return deleted, nil
}

var errNoUser = errors.New("no such user")

func (r *UserRepo) ListAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&users).Error; err != nil {
		return nil, domain.Storage("list users", err)
	}
	return users, nil
}

func (r *UserRepo) CountByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("role = ?", role).Count(&n).Error; err != nil {
		return 0, domain.Storage("count users", err)
	}
	return n, nil
}

func exists(tx *gorm.DB, query string, args ...any) (bool, error) {
	var n int64
	if err := tx.Model(&domain.User{}).Where(query, args...).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

// isFKViolation reports a history row whose owning user does not exist.
func isFKViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key")
}
