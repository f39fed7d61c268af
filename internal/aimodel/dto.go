package aimodel

import (
	"strings"

	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/internal/core/common/validation"
)

type CreateModelDTO struct {
	Name         string   `json:"name"`
	Provider     string   `json:"provider"`
	APIKey       string   `json:"api_key"`
	BaseURL      string   `json:"base_url"`
	ModelType    string   `json:"model_type"`
	MaxTokens    int      `json:"max_tokens"`
	Temperature  *float64 `json:"temperature"`
	IsDefault    bool     `json:"is_default"`
	Status       string   `json:"status"`
	Capabilities []string `json:"capabilities"`
}

type UpdateModelDTO struct {
	Name         *string   `json:"name"`
	Provider     *string   `json:"provider"`
	APIKey       *string   `json:"api_key"`
	BaseURL      *string   `json:"base_url"`
	ModelType    *string   `json:"model_type"`
	MaxTokens    *int      `json:"max_tokens"`
	Temperature  *float64  `json:"temperature"`
	IsDefault    *bool     `json:"is_default"`
	Status       *string   `json:"status"`
	Capabilities *[]string `json:"capabilities"`
}

const (
	defaultMaxTokens   = 2048
	defaultTemperature = 0.7
	maxTokensLimit     = 1000000
)

func (d *CreateModelDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Provider = strings.ToLower(strings.TrimSpace(d.Provider))
	d.APIKey = strings.TrimSpace(d.APIKey)
	d.BaseURL = strings.TrimSpace(d.BaseURL)
	d.ModelType = strings.TrimSpace(d.ModelType)
	if d.Status == "" {
		d.Status = StatusActive
	}
	if d.MaxTokens == 0 {
		d.MaxTokens = defaultMaxTokens
	}
	if d.Temperature == nil {
		t := defaultTemperature
		d.Temperature = &t
	}
}

func (d CreateModelDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("provider", d.Provider).Required().MaxLength(50)
	v.Field("model_type", d.ModelType).Required().MaxLength(100)
	v.Field("base_url", d.BaseURL).URL()
	v.Field("max_tokens", d.MaxTokens).Min(1).Max(maxTokensLimit)
	v.Field("temperature", d.Temperature).Min(0).Max(2)
	v.Field("status", d.Status).OneOf(StatusActive, StatusInactive)
	return v.Validate()
}

func (d *UpdateModelDTO) Normalize() {
	if d.Name != nil {
		n := strings.TrimSpace(*d.Name)
		d.Name = &n
	}
	if d.Provider != nil {
		p := strings.ToLower(strings.TrimSpace(*d.Provider))
		d.Provider = &p
	}
}

func (d UpdateModelDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(100)
	}
	if d.Provider != nil {
		v.Field("provider", *d.Provider).Required().MaxLength(50)
	}
	if d.ModelType != nil {
		v.Field("model_type", *d.ModelType).Required().MaxLength(100)
	}
	if d.BaseURL != nil {
		v.Field("base_url", *d.BaseURL).URL()
	}
	if d.MaxTokens != nil {
		v.Field("max_tokens", *d.MaxTokens).Min(1).Max(maxTokensLimit)
	}
	if d.Temperature != nil {
		v.Field("temperature", *d.Temperature).Min(0).Max(2)
	}
	if d.Status != nil {
		v.Field("status", *d.Status).Required().OneOf(StatusActive, StatusInactive)
	}
	return v.Validate()
}
