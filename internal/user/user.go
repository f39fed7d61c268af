package user

import (
	"time"

	"github.com/frahmantamala/chathub/internal"
	userDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/user"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

var Roles = []string{RoleAdmin, RoleManager, RoleUser}

type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	Permissions  []string   `json:"permissions"`
	TenantID     *string    `json:"tenant_id,omitempty"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

var (
	ErrUserNotFound     = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	ErrEmailTaken       = internal.NewConflictError("a user with this email already exists", internal.ErrCodeDuplicate)
	ErrCannotDeleteSelf = internal.NewValidationError("you cannot delete your own account", internal.ErrCodeSelfDelete)
	ErrCannotGrant      = internal.NewForbiddenError("you cannot grant a role or permission you do not hold", internal.ErrCodeInsufficientPerms)
)

func (u *User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == internal.PermissionAll || p == permission {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func ToDataModel(u *User) *userDatamodel.User {
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &userDatamodel.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Permissions:  perms,
		TenantID:     u.TenantID,
		IsActive:     u.IsActive,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	perms := []string(u.Permissions)
	if perms == nil {
		perms = []string{}
	}
	return &User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Permissions:  perms,
		TenantID:     u.TenantID,
		IsActive:     u.IsActive,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
