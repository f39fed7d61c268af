package followup

import (
	"time"

	"gorm.io/datatypes"
)

type Flow struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	Status      string    `gorm:"column:status;default:draft"`
	Nodes       []Node    `gorm:"foreignKey:FlowID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Flow) TableName() string { return "followup_flows" }

type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
	Target   string `json:"target"`
}

type Node struct {
	ID         string                         `gorm:"primaryKey;type:varchar(36)"`
	FlowID     string                         `gorm:"column:flow_id;index;not null"`
	Position   int                            `gorm:"column:position;not null"`
	Type       string                         `gorm:"column:type;not null"`
	Content    string                         `gorm:"column:content"`
	Delay      int                            `gorm:"column:delay"`
	DelayUnit  string                         `gorm:"column:delay_unit"`
	Conditions datatypes.JSONSlice[Condition] `gorm:"column:conditions"`
	CreatedAt  time.Time                      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time                      `gorm:"column:updated_at;autoUpdateTime"`
}

func (Node) TableName() string { return "followup_nodes" }
