package template

import (
	"time"

	"github.com/frahmantamala/chathub/internal"
	templateDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/template"
)

// PromptTemplate is a reusable prompt the chat assistant can start from.
type PromptTemplate struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	PromptText string    `json:"prompt_text"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

var ErrTemplateNotFound = internal.NewNotFoundError("template not found", internal.ErrCodeTemplateNotFound)

func FromDataModel(row *templateDatamodel.PromptTemplate) *PromptTemplate {
	tags := []string(row.Tags)
	if tags == nil {
		tags = []string{}
	}
	return &PromptTemplate{
		ID:         row.ID,
		Name:       row.Name,
		Category:   row.Category,
		PromptText: row.PromptText,
		Tags:       tags,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
