package user

import (
	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/internal/core/common/validation"
	"github.com/frahmantamala/chathub/internal/core/wizard"
)

// CreationWizard is the account → role → permissions → review flow for new users.
var CreationWizard = wizard.Definition{
	Name: "user",
	Steps: []wizard.Step{
		{
			Name: "account",
			Validate: func(data map[string]interface{}) *internal.AppError {
				v := validation.NewValidator()
				v.Field("name", wizard.String(data, "name")).Required().MinLength(2).MaxLength(100)
				v.Field("email", wizard.String(data, "email")).Required().Email()
				v.Field("password", wizard.String(data, "password")).Required().MinLength(8).MaxLength(72)
				return v.Validate()
			},
		},
		{
			Name: "role",
			Validate: func(data map[string]interface{}) *internal.AppError {
				v := validation.NewValidator()
				v.Field("role", wizard.String(data, "role")).Required().OneOf(Roles...)
				return v.Validate()
			},
		},
		{Name: "permissions"},
		{Name: "review"},
	},
}
