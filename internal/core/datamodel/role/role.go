package role

import (
	"time"

	"gorm.io/datatypes"
)

type Role struct {
	ID          string                      `gorm:"primaryKey;type:varchar(36)"`
	Name        string                      `gorm:"column:name;uniqueIndex;not null"`
	Description string                      `gorm:"column:description"`
	Permissions datatypes.JSONSlice[string] `gorm:"column:permissions"`
	IsSystem    bool                        `gorm:"column:is_system;default:false"`
	CreatedAt   time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (Role) TableName() string { return "roles" }
