package knowledge

import "time"

type Source struct {
	ID            string     `gorm:"primaryKey;type:varchar(36)"`
	Name          string     `gorm:"column:name;not null"`
	Type          string     `gorm:"column:type;not null"`
	URL           string     `gorm:"column:url"`
	Content       string     `gorm:"column:content"`
	ObjectKey     string     `gorm:"column:object_key"`
	ContentType   string     `gorm:"column:content_type"`
	Size          int64      `gorm:"column:size"`
	Status        string     `gorm:"column:status;default:pending"`
	DocumentCount int        `gorm:"column:document_count;default:0"`
	LastSyncedAt  *time.Time `gorm:"column:last_synced_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Source) TableName() string { return "knowledge_sources" }
