package tenant

import "time"

type Tenant struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	Name      string    `gorm:"column:name;not null"`
	Slug      string    `gorm:"column:slug;uniqueIndex;not null"`
	Plan      string    `gorm:"column:plan;default:starter"`
	Status    string    `gorm:"column:status;default:active"`
	Domain    string    `gorm:"column:domain"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Tenant) TableName() string { return "tenants" }
