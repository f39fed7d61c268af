package knowledge

import (
	"strings"

	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/internal/core/common/validation"
)

// CreateSourceDTO creates url and text sources. Files go through Upload.
type CreateSourceDTO struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type UpdateSourceDTO struct {
	Name    *string `json:"name"`
	URL     *string `json:"url"`
	Content *string `json:"content"`
}

func (d *CreateSourceDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Type = strings.ToLower(strings.TrimSpace(d.Type))
	d.URL = strings.TrimSpace(d.URL)
}

func (d CreateSourceDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(200)
	v.Field("type", d.Type).Required().OneOf(TypeURL, TypeText)
	switch d.Type {
	case TypeURL:
		v.Field("url", d.URL).Required().URL()
	case TypeText:
		v.Field("content", d.Content).Required().MaxLength(1 << 20)
	}
	return v.Validate()
}

func (d *UpdateSourceDTO) Normalize() {
	if d.Name != nil {
		n := strings.TrimSpace(*d.Name)
		d.Name = &n
	}
	if d.URL != nil {
		u := strings.TrimSpace(*d.URL)
		d.URL = &u
	}
}

func (d UpdateSourceDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(200)
	}
	if d.URL != nil {
		v.Field("url", *d.URL).Required().URL()
	}
	if d.Content != nil {
		v.Field("content", *d.Content).Required().MaxLength(1 << 20)
	}
	return v.Validate()
}
