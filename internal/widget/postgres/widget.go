package postgres

import (
	"context"
	"errors"

	widgetDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/widget"
	"github.com/frahmantamala/chathub/internal/widget"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) widget.RepositoryAPI {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context, tenantID string) (*widgetDatamodel.Settings, error) {
	var row widgetDatamodel.Settings
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Save upserts the tenant's document.
func (r *SettingsRepository) Save(ctx context.Context, row *widgetDatamodel.Settings) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"settings", "updated_by", "updated_at"}),
	}).Create(row).Error
}

func (r *SettingsRepository) Delete(ctx context.Context, tenantID string) error {
	return r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Delete(&widgetDatamodel.Settings{}).Error
}
