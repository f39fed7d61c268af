package role

import (
	"time"

	"github.com/frahmantamala/chathub/internal"
	roleDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/role"
)

const (
	SystemAdmin   = "admin"
	SystemManager = "manager"
	SystemUser    = "user"
)

type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	IsSystem    bool      `json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var (
	ErrRoleNotFound           = internal.NewNotFoundError("role not found", internal.ErrCodeRoleNotFound)
	ErrRoleNameTaken          = internal.NewConflictError("a role with this name already exists", internal.ErrCodeDuplicate)
	ErrCannotDeleteSystemRole = internal.NewValidationError("system roles cannot be deleted", internal.ErrCodeSystemRole)
	ErrCannotRenameSystemRole = internal.NewValidationError("system roles cannot be renamed", internal.ErrCodeSystemRole)
)

func IsSystemRoleName(name string) bool {
	return name == SystemAdmin || name == SystemManager || name == SystemUser
}

func (r *Role) HasPermission(permission string) bool {
	for _, p := range r.Permissions {
		if p == PermAll || p == permission {
			return true
		}
	}
	return false
}

// DefaultRoles are the built-in roles every installation starts with.
func DefaultRoles() []*Role {
	return []*Role{
		{
			Name:        SystemAdmin,
			Description: "Full access to every feature",
			Permissions: []string{PermAll},
			IsSystem:    true,
		},
		{
			Name:        SystemManager,
			Description: "Manages chat configuration and views administration",
			Permissions: []string{
				PermDashboardView,
				PermModelsView, PermModelsManage,
				PermTemplatesView, PermTemplatesEdit,
				PermFollowUpsView, PermFollowUpsEdit,
				PermKnowledgeView, PermKnowledgeEdit,
				PermWidgetView, PermWidgetManage,
				PermUsersView, PermRolesView, PermTenantsView,
			},
			IsSystem: true,
		},
		{
			Name:        SystemUser,
			Description: "Read-only access to chat configuration",
			Permissions: []string{
				PermDashboardView, PermModelsView, PermTemplatesView,
				PermFollowUpsView, PermKnowledgeView, PermWidgetView,
			},
			IsSystem: true,
		},
	}
}

func ToDataModel(r *Role) *roleDatamodel.Role {
	perms := r.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &roleDatamodel.Role{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: perms,
		IsSystem:    r.IsSystem,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func FromDataModel(r *roleDatamodel.Role) *Role {
	perms := []string(r.Permissions)
	if perms == nil {
		perms = []string{}
	}
	return &Role{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: perms,
		IsSystem:    r.IsSystem,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
