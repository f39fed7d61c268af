package aimodel

import (
	"strings"
	"time"

	"github.com/frahmantamala/chathub/internal"
	aimodelDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/aimodel"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// AIModel is a configured connection to an LLM provider. APIKey is always masked once it
// leaves the service.
type AIModel struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Provider     string    `json:"provider"`
	APIKey       string    `json:"api_key"`
	BaseURL      string    `json:"base_url"`
	ModelType    string    `json:"model_type"`
	MaxTokens    int       `json:"max_tokens"`
	Temperature  float64   `json:"temperature"`
	IsDefault    bool      `json:"is_default"`
	Status       string    `json:"status"`
	Capabilities []string  `json:"capabilities"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var (
	ErrModelNotFound        = internal.NewNotFoundError("model not found", internal.ErrCodeModelNotFound)
	ErrCannotDeleteDefault  = internal.NewValidationError("cannot delete the default model", internal.ErrCodeDefaultModel)
	ErrCannotUnsetDefault   = internal.NewValidationError("set another model as default instead", internal.ErrCodeDefaultModel)
	ErrInactiveDefaultModel = internal.NewValidationError("an inactive model cannot be the default", internal.ErrCodeDefaultModel)
)

// MaskAPIKey keeps the provider prefix and the last four characters: sk-****abcd.
func MaskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}

	prefix := ""
	if i := strings.Index(key, "-"); i > 0 && i <= 8 {
		prefix = key[:i+1]
	}
	return prefix + "****" + key[len(key)-4:]
}

// FromDataModel converts a row and masks its API key.
func FromDataModel(row *aimodelDatamodel.AIModel) *AIModel {
	if row == nil {
		return nil
	}
	caps := []string(row.Capabilities)
	if caps == nil {
		caps = []string{}
	}
	return &AIModel{
		ID:           row.ID,
		Name:         row.Name,
		Provider:     row.Provider,
		APIKey:       MaskAPIKey(row.APIKey),
		BaseURL:      row.BaseURL,
		ModelType:    row.ModelType,
		MaxTokens:    row.MaxTokens,
		Temperature:  row.Temperature,
		IsDefault:    row.IsDefault,
		Status:       row.Status,
		Capabilities: caps,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
