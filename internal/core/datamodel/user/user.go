package user

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID           string                      `gorm:"primaryKey;type:varchar(36)"`
	Email        string                      `gorm:"column:email;uniqueIndex;not null"`
	Name         string                      `gorm:"column:name;not null"`
	PasswordHash string                      `gorm:"column:password_hash;not null"`
	Role         string                      `gorm:"column:role;index;not null"`
	Permissions  datatypes.JSONSlice[string] `gorm:"column:permissions"`
	TenantID     *string                     `gorm:"column:tenant_id;index"`
	IsActive     bool                        `gorm:"column:is_active;not null"`
	LastLoginAt  *time.Time                  `gorm:"column:last_login_at"`
	CreatedAt    time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }
