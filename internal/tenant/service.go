package tenant

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/chathub/internal"
	tenantDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/tenant"
	"github.com/frahmantamala/chathub/internal/core/query"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	List(ctx context.Context, params query.ListParams) ([]*tenantDatamodel.Tenant, int64, error)
	GetByID(ctx context.Context, id string) (*tenantDatamodel.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*tenantDatamodel.Tenant, error)
	Create(ctx context.Context, t *tenantDatamodel.Tenant) error
	Update(ctx context.Context, t *tenantDatamodel.Tenant) error
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, params query.ListParams) (query.Page[*Tenant], error) {
	rows, total, err := s.repo.List(ctx, params)
	if err != nil {
		s.logger.Error("failed to list tenants", "error", err)
		return query.Page[*Tenant]{}, internal.NewInternalError("failed to list tenants", err)
	}
	items := make([]*Tenant, 0, len(rows))
	for _, row := range rows {
		items = append(items, FromDataModel(row))
	}
	return query.Page[*Tenant]{Items: items, Total: total, Params: params}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Tenant, error) {
	row, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto CreateTenantDTO) (*Tenant, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, dto.Slug, ""); err != nil {
		return nil, err
	}

	row := &tenantDatamodel.Tenant{
		ID:     uuid.NewString(),
		Name:   dto.Name,
		Slug:   dto.Slug,
		Plan:   dto.Plan,
		Status: dto.Status,
		Domain: dto.Domain,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create tenant", "error", err, "slug", dto.Slug)
		return nil, internal.NewInternalError("failed to create tenant", err)
	}
	s.logger.Info("tenant created", "tenant_id", row.ID, "slug", row.Slug, "plan", row.Plan)
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateTenantDTO) (*Tenant, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if dto.Slug != nil && *dto.Slug != row.Slug {
		if err := s.ensureSlugFree(ctx, *dto.Slug, id); err != nil {
			return nil, err
		}
		row.Slug = *dto.Slug
	}
	if dto.Name != nil {
		row.Name = *dto.Name
	}
	if dto.Plan != nil {
		row.Plan = *dto.Plan
	}
	if dto.Status != nil {
		row.Status = *dto.Status
	}
	if dto.Domain != nil {
		row.Domain = *dto.Domain
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to update tenant", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to delete tenant", err)
	}
	if !deleted {
		return ErrTenantNotFound
	}
	return nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) get(ctx context.Context, id string) (*tenantDatamodel.Tenant, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get tenant", err)
	}
	if row == nil {
		return nil, ErrTenantNotFound
	}
	return row, nil
}

func (s *Service) ensureSlugFree(ctx context.Context, slug, exceptID string) error {
	if slug == "" {
		return ErrInvalidSlug
	}
	existing, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return internal.NewInternalError("failed to check slug", err)
	}
	if existing != nil && existing.ID != exceptID {
		return ErrSlugTaken
	}
	return nil
}
