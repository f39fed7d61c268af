package template

import (
	"time"

	"gorm.io/datatypes"
)

type PromptTemplate struct {
	ID         string                      `gorm:"primaryKey;type:varchar(36)"`
	Name       string                      `gorm:"column:name;not null"`
	Category   string                      `gorm:"column:category;index"`
	PromptText string                      `gorm:"column:prompt_text;not null"`
	Tags       datatypes.JSONSlice[string] `gorm:"column:tags"`
	CreatedAt  time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (PromptTemplate) TableName() string { return "prompt_templates" }
