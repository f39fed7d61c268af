package user

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/chathub/internal"
	userDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/user"
	"github.com/frahmantamala/chathub/internal/core/query"
	"github.com/frahmantamala/chathub/internal/role"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type RepositoryAPI interface {
	List(ctx context.Context, params query.ListParams) ([]*userDatamodel.User, int64, error)
	GetByID(ctx context.Context, id string) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	Update(ctx context.Context, u *userDatamodel.User) error
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type Service struct {
	repo       RepositoryAPI
	logger     *slog.Logger
	bcryptCost int
}

func NewService(repo RepositoryAPI, logger *slog.Logger, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

func (s *Service) List(ctx context.Context, params query.ListParams) (query.Page[*User], error) {
	rows, total, err := s.repo.List(ctx, params)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return query.Page[*User]{}, internal.NewInternalError("failed to list users", err)
	}

	items := make([]*User, 0, len(rows))
	for _, row := range rows {
		items = append(items, FromDataModel(row))
	}
	return query.Page[*User]{Items: items, Total: total, Params: params}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get user", err)
	}
	if row == nil {
		return nil, ErrUserNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*User, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if dto.Role != RoleUser || len(dto.Permissions) > 0 {
		if err := authorizeGrant(ctx, dto.Role, dto.Permissions); err != nil {
			return nil, err
		}
	}

	if err := s.ensureEmailFree(ctx, dto.Email, ""); err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	u := &User{
		ID:           uuid.NewString(),
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: hash,
		Role:         dto.Role,
		Permissions:  dedupe(dto.Permissions),
		TenantID:     dto.TenantID,
		IsActive:     true,
	}
	if dto.IsActive != nil {
		u.IsActive = *dto.IsActive
	}

	row := ToDataModel(u)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user created", "user_id", row.ID, "role", row.Role)
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateUserDTO) (*User, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	roleChanged := dto.Role != nil && *dto.Role != current.Role
	permsChanged := dto.Permissions != nil && !sameSet(dedupe(*dto.Permissions), current.Permissions)
	if roleChanged || permsChanged {
		var grantRole string
		var grantPerms []string
		if roleChanged {
			grantRole = *dto.Role
		}
		if permsChanged {
			grantPerms = *dto.Permissions
		}
		if err := authorizeGrant(ctx, grantRole, grantPerms); err != nil {
			s.logger.Warn("user privilege change denied", "user_id", id, "actor_id", internal.UserIDFromContext(ctx))
			return nil, err
		}
	}

	if dto.Email != nil && *dto.Email != current.Email {
		if err := s.ensureEmailFree(ctx, *dto.Email, id); err != nil {
			return nil, err
		}
		current.Email = *dto.Email
	}
	if dto.Name != nil {
		current.Name = *dto.Name
	}
	if dto.Role != nil {
		current.Role = *dto.Role
	}
	if dto.Permissions != nil {
		current.Permissions = dedupe(*dto.Permissions)
	}
	if dto.TenantID != nil {
		if *dto.TenantID == "" {
			current.TenantID = nil
		} else {
			current.TenantID = dto.TenantID
		}
	}
	if dto.IsActive != nil {
		current.IsActive = *dto.IsActive
	}
	if dto.Password != nil {
		hash, err := s.HashPassword(*dto.Password)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		current.PasswordHash = hash
	}

	row := ToDataModel(current)
	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, internal.NewInternalError("failed to update user", err)
	}
	return FromDataModel(row), nil
}

// Delete removes a user. actorID is the caller, who may not delete themselves.
func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	if id == actorID {
		return ErrCannotDeleteSelf
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return internal.NewInternalError("failed to delete user", err)
	}
	if !deleted {
		return ErrUserNotFound
	}

	s.logger.Info("user deleted", "user_id", id, "actor_id", actorID)
	return nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email, exceptID string) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return internal.NewInternalError("failed to check email", err)
	}
	if existing != nil && existing.ID != exceptID {
		return ErrEmailTaken
	}
	return nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// authorizeGrant requires roles.manage to hand out roleName or perms, and the caller must
// already hold each permission. Only "all" holders may assign the admin role.
// A context without a principal (seeder, CLI) is trusted.
func authorizeGrant(ctx context.Context, roleName string, perms []string) error {
	actor, ok := internal.UserFromContext(ctx)
	if !ok {
		return nil
	}
	if !actor.HasPermission(role.PermRolesManage) {
		return ErrCannotGrant
	}
	if roleName == RoleAdmin && !actor.HasPermission(internal.PermissionAll) {
		return ErrCannotGrant
	}
	for _, p := range dedupe(perms) {
		if !actor.HasPermission(p) {
			return ErrCannotGrant
		}
	}
	return nil
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]struct{}, len(a))
	for _, v := range a {
		seen[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := seen[v]; !ok {
			return false
		}
	}
	return true
}
