package aimodel

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/chathub/internal"
	aimodelDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/aimodel"
	"github.com/frahmantamala/chathub/internal/core/events"
	"github.com/frahmantamala/chathub/internal/core/query"
	"github.com/google/uuid"
)

// RepositoryAPI keeps at most one default model. Create and Update clear every other
// default in the same transaction when the row is default, and Create makes the row default
// when none exists yet. DeleteNonDefault never removes the default row.
type RepositoryAPI interface {
	List(ctx context.Context, params query.ListParams) ([]*aimodelDatamodel.AIModel, int64, error)
	GetByID(ctx context.Context, id string) (*aimodelDatamodel.AIModel, error)
	GetDefault(ctx context.Context) (*aimodelDatamodel.AIModel, error)
	Create(ctx context.Context, m *aimodelDatamodel.AIModel) error
	Update(ctx context.Context, m *aimodelDatamodel.AIModel) error
	SetDefault(ctx context.Context, id string) (bool, error)
	DeleteNonDefault(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type Service struct {
	repo      RepositoryAPI
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) List(ctx context.Context, params query.ListParams) (query.Page[*AIModel], error) {
	rows, total, err := s.repo.List(ctx, params)
	if err != nil {
		s.logger.Error("failed to list models", "error", err)
		return query.Page[*AIModel]{}, internal.NewInternalError("failed to list models", err)
	}
	items := make([]*AIModel, 0, len(rows))
	for _, row := range rows {
		items = append(items, FromDataModel(row))
	}
	return query.Page[*AIModel]{Items: items, Total: total, Params: params}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*AIModel, error) {
	row, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) GetDefault(ctx context.Context) (*AIModel, error) {
	row, err := s.repo.GetDefault(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to get default model", err)
	}
	if row == nil {
		return nil, ErrModelNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto CreateModelDTO) (*AIModel, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if dto.IsDefault && dto.Status == StatusInactive {
		return nil, ErrInactiveDefaultModel
	}

	previous := s.currentDefaultID(ctx)

	row := &aimodelDatamodel.AIModel{
		ID:           uuid.NewString(),
		Name:         dto.Name,
		Provider:     dto.Provider,
		APIKey:       dto.APIKey,
		BaseURL:      dto.BaseURL,
		ModelType:    dto.ModelType,
		MaxTokens:    dto.MaxTokens,
		Temperature:  *dto.Temperature,
		IsDefault:    dto.IsDefault,
		Status:       dto.Status,
		Capabilities: dedupe(dto.Capabilities),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create model", "error", err, "name", dto.Name)
		return nil, internal.NewInternalError("failed to create model", err)
	}

	s.logger.Info("model created", "model_id", row.ID, "provider", row.Provider, "is_default", row.IsDefault)
	if row.IsDefault {
		s.publish(ctx, events.NewModelDefaultChangedEvent(row.ID, previous))
	}
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateModelDTO) (*AIModel, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	wasDefault := row.IsDefault

	if dto.IsDefault != nil && !*dto.IsDefault && wasDefault {
		return nil, ErrCannotUnsetDefault
	}

	if dto.Name != nil {
		row.Name = *dto.Name
	}
	if dto.Provider != nil {
		row.Provider = *dto.Provider
	}
	// Clients echo the masked key back; only a real key replaces the stored one.
	if dto.APIKey != nil && !strings.Contains(*dto.APIKey, "****") {
		row.APIKey = strings.TrimSpace(*dto.APIKey)
	}
	if dto.BaseURL != nil {
		row.BaseURL = strings.TrimSpace(*dto.BaseURL)
	}
	if dto.ModelType != nil {
		row.ModelType = strings.TrimSpace(*dto.ModelType)
	}
	if dto.MaxTokens != nil {
		row.MaxTokens = *dto.MaxTokens
	}
	if dto.Temperature != nil {
		row.Temperature = *dto.Temperature
	}
	if dto.Status != nil {
		row.Status = *dto.Status
	}
	if dto.Capabilities != nil {
		row.Capabilities = dedupe(*dto.Capabilities)
	}
	if dto.IsDefault != nil {
		row.IsDefault = *dto.IsDefault
	}

	if row.IsDefault && row.Status == StatusInactive {
		return nil, ErrInactiveDefaultModel
	}

	previous := ""
	if row.IsDefault && !wasDefault {
		previous = s.currentDefaultID(ctx)
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update model", "error", err, "model_id", id)
		return nil, internal.NewInternalError("failed to update model", err)
	}

	if row.IsDefault && !wasDefault {
		s.publish(ctx, events.NewModelDefaultChangedEvent(row.ID, previous))
	}
	return FromDataModel(row), nil
}

// SetDefault makes id the only default model.
func (s *Service) SetDefault(ctx context.Context, id string) (*AIModel, error) {
	row, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.Status == StatusInactive {
		return nil, ErrInactiveDefaultModel
	}
	if row.IsDefault {
		return FromDataModel(row), nil
	}

	previous := s.currentDefaultID(ctx)

	found, err := s.repo.SetDefault(ctx, id)
	if err != nil {
		s.logger.Error("failed to set default model", "error", err, "model_id", id)
		return nil, internal.NewInternalError("failed to set default model", err)
	}
	if !found {
		return nil, ErrModelNotFound
	}

	s.logger.Info("default model changed", "model_id", id, "previous_id", previous)
	s.publish(ctx, events.NewModelDefaultChangedEvent(id, previous))

	return s.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.DeleteNonDefault(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete model", "error", err, "model_id", id)
		return internal.NewInternalError("failed to delete model", err)
	}
	if deleted {
		s.logger.Info("model deleted", "model_id", id)
		return nil
	}

	// Nothing removed: either the id is unknown or it is the default.
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	return ErrCannotDeleteDefault
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) get(ctx context.Context, id string) (*aimodelDatamodel.AIModel, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get model", err)
	}
	if row == nil {
		return nil, ErrModelNotFound
	}
	return row, nil
}

func (s *Service) currentDefaultID(ctx context.Context) string {
	row, err := s.repo.GetDefault(ctx)
	if err != nil || row == nil {
		return ""
	}
	return row.ID
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
