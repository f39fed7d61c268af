package role

import (
	"fmt"
	"strings"

	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/internal/core/common/validation"
)

type CreateRoleDTO struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

type UpdateRoleDTO struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Permissions *[]string `json:"permissions"`
}

func knownPermissions(field string) func(interface{}) *internal.AppError {
	return func(value interface{}) *internal.AppError {
		perms, _ := value.([]string)
		if unknown := UnknownPermissions(perms); len(unknown) > 0 {
			return internal.NewValidationFieldError(field,
				fmt.Sprintf("unknown permissions: %s", strings.Join(unknown, ", ")), internal.ErrCodeInvalidValue)
		}
		return nil
	}
}

func (d *CreateRoleDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
}

func (d CreateRoleDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MinLength(2).MaxLength(50)
	v.Field("description", d.Description).MaxLength(255)
	v.Field("permissions", d.Permissions).Required().Custom(knownPermissions("permissions"))
	return v.Validate()
}

func (d *UpdateRoleDTO) Normalize() {
	if d.Name != nil {
		n := strings.TrimSpace(*d.Name)
		d.Name = &n
	}
}

func (d UpdateRoleDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MinLength(2).MaxLength(50)
	}
	if d.Description != nil {
		v.Field("description", *d.Description).MaxLength(255)
	}
	if d.Permissions != nil {
		v.Field("permissions", *d.Permissions).Required().Custom(knownPermissions("permissions"))
	}
	return v.Validate()
}
