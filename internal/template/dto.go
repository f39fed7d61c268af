package template

import (
	"strings"

	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/internal/core/common/validation"
)

type CreateTemplateDTO struct {
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	PromptText string   `json:"prompt_text"`
	Tags       []string `json:"tags"`
}

type UpdateTemplateDTO struct {
	Name       *string   `json:"name"`
	Category   *string   `json:"category"`
	PromptText *string   `json:"prompt_text"`
	Tags       *[]string `json:"tags"`
}

const defaultCategory = "general"

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func (d *CreateTemplateDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Category = strings.ToLower(strings.TrimSpace(d.Category))
	if d.Category == "" {
		d.Category = defaultCategory
	}
	d.Tags = normalizeTags(d.Tags)
}

func (d CreateTemplateDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("category", d.Category).MaxLength(50)
	v.Field("prompt_text", d.PromptText).Required().MaxLength(10000)
	return v.Validate()
}

func (d *UpdateTemplateDTO) Normalize() {
	if d.Name != nil {
		n := strings.TrimSpace(*d.Name)
		d.Name = &n
	}
	if d.Category != nil {
		c := strings.ToLower(strings.TrimSpace(*d.Category))
		if c == "" {
			c = defaultCategory
		}
		d.Category = &c
	}
	if d.Tags != nil {
		t := normalizeTags(*d.Tags)
		d.Tags = &t
	}
}

func (d UpdateTemplateDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(100)
	}
	if d.Category != nil {
		v.Field("category", *d.Category).MaxLength(50)
	}
	if d.PromptText != nil {
		v.Field("prompt_text", *d.PromptText).Required().MaxLength(10000)
	}
	return v.Validate()
}
