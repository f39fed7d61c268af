package role

import (
	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/internal/core/common/validation"
	"github.com/frahmantamala/chathub/internal/core/wizard"
)

var CreationWizard = wizard.Definition{
	Name: "role",
	Steps: []wizard.Step{
		{
			Name: "details",
			Validate: func(data map[string]interface{}) *internal.AppError {
				v := validation.NewValidator()
				v.Field("name", wizard.String(data, "name")).Required().MinLength(2).MaxLength(50)
				v.Field("description", wizard.String(data, "description")).MaxLength(255)
				return v.Validate()
			},
		},
		{
			Name: "permissions",
			Validate: func(data map[string]interface{}) *internal.AppError {
				v := validation.NewValidator()
				v.Field("permissions", wizard.Strings(data, "permissions")).Required().Custom(knownPermissions("permissions"))
				return v.Validate()
			},
		},
		{Name: "review"},
	},
}
