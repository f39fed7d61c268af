package widget

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/frahmantamala/chathub/internal"
	widgetDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/widget"
	"github.com/frahmantamala/chathub/internal/core/events"
	"gorm.io/datatypes"
)

// RepositoryAPI stores one settings document per tenant. Get returns nil when none is stored.
type RepositoryAPI interface {
	Get(ctx context.Context, tenantID string) (*widgetDatamodel.Settings, error)
	Save(ctx context.Context, row *widgetDatamodel.Settings) error
	Delete(ctx context.Context, tenantID string) error
}

type Service struct {
	repo      RepositoryAPI
	schema    *Schema
	publisher events.Publisher
	scriptURL string
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, schema *Schema, publisher events.Publisher, scriptURL string, logger *slog.Logger) *Service {
	if schema == nil {
		schema = MustSchema()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		schema:    schema,
		publisher: publisher,
		scriptURL: scriptURL,
		logger:    logger,
	}
}

func (s *Service) Get(ctx context.Context, tenantID string) (*View, error) {
	row, err := s.repo.Get(ctx, tenantOrDefault(tenantID))
	if err != nil {
		s.logger.Error("failed to load widget settings", "error", err, "tenant_id", tenantID)
		return nil, internal.NewInternalError("failed to load widget settings", err)
	}
	if row == nil {
		return &View{TenantID: tenantOrDefault(tenantID), Settings: DefaultSettings(), IsDefault: true}, nil
	}

	var settings Settings
	if err := json.Unmarshal(row.Settings, &settings); err != nil {
		return nil, internal.NewInternalError("stored widget settings are corrupt", err)
	}
	updatedAt := row.UpdatedAt
	return &View{
		TenantID:  row.TenantID,
		Settings:  settings,
		UpdatedBy: row.UpdatedBy,
		UpdatedAt: &updatedAt,
	}, nil
}

// Update replaces the whole settings object.
func (s *Service) Update(ctx context.Context, tenantID, userID string, settings Settings) (*View, error) {
	if err := s.schema.Check(settings); err != nil {
		return nil, err
	}
	if err := s.save(ctx, tenantID, userID, settings); err != nil {
		return nil, err
	}
	s.logger.Info("widget settings updated", "tenant_id", tenantOrDefault(tenantID), "user_id", userID)
	return s.Get(ctx, tenantID)
}

// Reset drops the stored document so the defaults apply again.
func (s *Service) Reset(ctx context.Context, tenantID string) (*View, error) {
	if err := s.repo.Delete(ctx, tenantOrDefault(tenantID)); err != nil {
		return nil, internal.NewInternalError("failed to reset widget settings", err)
	}
	s.logger.Info("widget settings reset", "tenant_id", tenantOrDefault(tenantID))
	return s.Get(ctx, tenantID)
}

func (s *Service) Export(ctx context.Context, tenantID string) ([]byte, error) {
	view, err := s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(view.Settings, "", "  ")
	if err != nil {
		return nil, internal.NewInternalError("failed to encode widget settings", err)
	}
	return data, nil
}

// Import validates data against the schema before writing; on any failure the stored settings stay as they were.
func (s *Service) Import(ctx context.Context, tenantID, userID string, data []byte) (*View, error) {
	settings, err := s.schema.Parse(data)
	if err != nil {
		s.logger.Warn("widget settings import rejected", "tenant_id", tenantOrDefault(tenantID), "error", err)
		return nil, err
	}
	if err := s.save(ctx, tenantID, userID, settings); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewWidgetSettingsImportedEvent(tenantOrDefault(tenantID), userID))
	return s.Get(ctx, tenantID)
}

func (s *Service) EmbedCode(ctx context.Context, tenantID string) (*EmbedCode, error) {
	view, err := s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &EmbedCode{
		TenantID:  view.TenantID,
		ScriptURL: s.scriptURL,
		Code:      RenderEmbedCode(s.scriptURL, view.TenantID, view.Settings),
	}, nil
}

func (s *Service) save(ctx context.Context, tenantID, userID string, settings Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return internal.NewInternalError("failed to encode widget settings", err)
	}
	row := &widgetDatamodel.Settings{
		TenantID:  tenantOrDefault(tenantID),
		Settings:  datatypes.JSON(data),
		UpdatedBy: userID,
	}
	if err := s.repo.Save(ctx, row); err != nil {
		s.logger.Error("failed to save widget settings", "error", err, "tenant_id", row.TenantID)
		return internal.NewInternalError("failed to save widget settings", err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

func tenantOrDefault(tenantID string) string {
	if tenantID == "" {
		return internal.DefaultTenantID
	}
	return tenantID
}
