package template

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/chathub/internal"
	templateDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/template"
	"github.com/frahmantamala/chathub/internal/core/query"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	List(ctx context.Context, params query.ListParams) ([]*templateDatamodel.PromptTemplate, int64, error)
	GetByID(ctx context.Context, id string) (*templateDatamodel.PromptTemplate, error)
	Create(ctx context.Context, t *templateDatamodel.PromptTemplate) error
	Update(ctx context.Context, t *templateDatamodel.PromptTemplate) error
	Delete(ctx context.Context, id string) (bool, error)
	Categories(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, params query.ListParams) (query.Page[*PromptTemplate], error) {
	rows, total, err := s.repo.List(ctx, params)
	if err != nil {
		s.logger.Error("failed to list templates", "error", err)
		return query.Page[*PromptTemplate]{}, internal.NewInternalError("failed to list templates", err)
	}
	items := make([]*PromptTemplate, 0, len(rows))
	for _, row := range rows {
		items = append(items, FromDataModel(row))
	}
	return query.Page[*PromptTemplate]{Items: items, Total: total, Params: params}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*PromptTemplate, error) {
	row, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto CreateTemplateDTO) (*PromptTemplate, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := &templateDatamodel.PromptTemplate{
		ID:         uuid.NewString(),
		Name:       dto.Name,
		Category:   dto.Category,
		PromptText: dto.PromptText,
		Tags:       dto.Tags,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create template", "error", err)
		return nil, internal.NewInternalError("failed to create template", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateTemplateDTO) (*PromptTemplate, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if dto.Name != nil {
		row.Name = *dto.Name
	}
	if dto.Category != nil {
		row.Category = *dto.Category
	}
	if dto.PromptText != nil {
		row.PromptText = *dto.PromptText
	}
	if dto.Tags != nil {
		row.Tags = *dto.Tags
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update template", "error", err, "template_id", id)
		return nil, internal.NewInternalError("failed to update template", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to delete template", err)
	}
	if !deleted {
		return ErrTemplateNotFound
	}
	return nil
}

// Categories returns the distinct categories in use, sorted.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	cats, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list categories", err)
	}
	if cats == nil {
		cats = []string{}
	}
	return cats, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) get(ctx context.Context, id string) (*templateDatamodel.PromptTemplate, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get template", err)
	}
	if row == nil {
		return nil, ErrTemplateNotFound
	}
	return row, nil
}
