package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/chathub/internal/auth"
	roleDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auth.RepositoryAPI {
	return &Repository{db: db}
}

func (r *Repository) GetCredentials(ctx context.Context, email string) (*auth.Credentials, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &auth.Credentials{
		UserID:       u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
	}, nil
}

// GetProfile merges the user's own permissions with those of the role named like user.role.
func (r *Repository) GetProfile(ctx context.Context, userID string) (*auth.Profile, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var rl roleDatamodel.Role
	var rolePerms []string
	err = r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", u.Role).First(&rl).Error
	switch {
	case err == nil:
		rolePerms = rl.Permissions
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	profile := &auth.Profile{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Permissions: union(u.Permissions, rolePerms),
		IsActive:    u.IsActive,
	}
	if u.TenantID != nil {
		profile.TenantID = *u.TenantID
	}
	return profile, nil
}

func (r *Repository) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		UpdateColumn("last_login_at", at).Error
}

func union(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, list := range lists {
		for _, p := range list {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
