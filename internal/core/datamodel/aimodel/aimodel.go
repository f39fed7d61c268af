package aimodel

import (
	"time"

	"gorm.io/datatypes"
)

type AIModel struct {
	ID           string                      `gorm:"primaryKey;type:varchar(36)"`
	Name         string                      `gorm:"column:name;not null"`
	Provider     string                      `gorm:"column:provider;index;not null"`
	APIKey       string                      `gorm:"column:api_key"`
	BaseURL      string                      `gorm:"column:base_url"`
	ModelType    string                      `gorm:"column:model_type"`
	MaxTokens    int                         `gorm:"column:max_tokens"`
	Temperature  float64                     `gorm:"column:temperature"`
	IsDefault    bool                        `gorm:"column:is_default;index;default:false"`
	Status       string                      `gorm:"column:status;default:active"`
	Capabilities datatypes.JSONSlice[string] `gorm:"column:capabilities"`
	CreatedAt    time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (AIModel) TableName() string { return "ai_models" }
