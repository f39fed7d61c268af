package widget

import (
	"time"

	"gorm.io/datatypes"
)

// Settings stores one tenant's widget configuration as a single JSON document.
type Settings struct {
	TenantID  string         `gorm:"primaryKey;column:tenant_id;type:varchar(64)"`
	Settings  datatypes.JSON `gorm:"column:settings;not null"`
	UpdatedBy string         `gorm:"column:updated_by"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (Settings) TableName() string { return "widget_settings" }
