package role

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/chathub/internal"
	roleDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/role"
	"github.com/frahmantamala/chathub/internal/core/query"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	List(ctx context.Context, params query.ListParams) ([]*roleDatamodel.Role, int64, error)
	GetByID(ctx context.Context, id string) (*roleDatamodel.Role, error)
	GetByName(ctx context.Context, name string) (*roleDatamodel.Role, error)
	Create(ctx context.Context, r *roleDatamodel.Role) error
	Update(ctx context.Context, r *roleDatamodel.Role) error
	Delete(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, params query.ListParams) (query.Page[*Role], error) {
	rows, total, err := s.repo.List(ctx, params)
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return query.Page[*Role]{}, internal.NewInternalError("failed to list roles", err)
	}
	items := make([]*Role, 0, len(rows))
	for _, row := range rows {
		items = append(items, FromDataModel(row))
	}
	return query.Page[*Role]{Items: items, Total: total, Params: params}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Role, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get role", err)
	}
	if row == nil {
		return nil, ErrRoleNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto CreateRoleDTO) (*Role, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, dto.Name, ""); err != nil {
		return nil, err
	}

	row := ToDataModel(&Role{
		ID:          uuid.NewString(),
		Name:        dto.Name,
		Description: dto.Description,
		Permissions: dto.Permissions,
		IsSystem:    IsSystemRoleName(dto.Name),
	})
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create role", "error", err, "name", dto.Name)
		return nil, internal.NewInternalError("failed to create role", err)
	}

	s.logger.Info("role created", "role_id", row.ID, "name", row.Name)
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateRoleDTO) (*Role, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil && *dto.Name != current.Name {
		if current.IsSystem {
			return nil, ErrCannotRenameSystemRole
		}
		if err := s.ensureNameFree(ctx, *dto.Name, id); err != nil {
			return nil, err
		}
		current.Name = *dto.Name
	}
	if dto.Description != nil {
		current.Description = *dto.Description
	}
	if dto.Permissions != nil {
		current.Permissions = *dto.Permissions
	}

	row := ToDataModel(current)
	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update role", "error", err, "role_id", id)
		return nil, internal.NewInternalError("failed to update role", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.IsSystem || IsSystemRoleName(current.Name) {
		return ErrCannotDeleteSystemRole
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete role", "error", err, "role_id", id)
		return internal.NewInternalError("failed to delete role", err)
	}
	if !deleted {
		return ErrRoleNotFound
	}
	s.logger.Info("role deleted", "role_id", id, "name", current.Name)
	return nil
}

func (s *Service) Permissions() []Permission {
	return Catalog
}

func (s *Service) ensureNameFree(ctx context.Context, name, exceptID string) error {
	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return internal.NewInternalError("failed to check role name", err)
	}
	if existing != nil && existing.ID != exceptID {
		return ErrRoleNameTaken
	}
	return nil
}
