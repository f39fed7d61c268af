package aimodel

import (
	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/internal/core/common/validation"
	"github.com/frahmantamala/chathub/internal/core/wizard"
)

// ConnectionWizard walks through adding a model connection.
var ConnectionWizard = wizard.Definition{
	Name: "model",
	Steps: []wizard.Step{
		{
			Name: "basic",
			Validate: func(data map[string]interface{}) *internal.AppError {
				v := validation.NewValidator()
				v.Field("name", wizard.String(data, "name")).Required().MaxLength(100)
				v.Field("provider", wizard.String(data, "provider")).Required().MaxLength(50)
				v.Field("model_type", wizard.String(data, "model_type")).Required().MaxLength(100)
				return v.Validate()
			},
		},
		{
			Name: "connection",
			Validate: func(data map[string]interface{}) *internal.AppError {
				v := validation.NewValidator()
				v.Field("api_key", wizard.String(data, "api_key")).Required()
				v.Field("base_url", wizard.String(data, "base_url")).URL()
				return v.Validate()
			},
		},
		{
			Name: "parameters",
			Validate: func(data map[string]interface{}) *internal.AppError {
				v := validation.NewValidator()
				v.Field("max_tokens", wizard.Number(data, "max_tokens")).Min(1).Max(maxTokensLimit)
				v.Field("temperature", wizard.Number(data, "temperature")).Min(0).Max(2)
				return v.Validate()
			},
		},
		{Name: "review"},
	},
}
