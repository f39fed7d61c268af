package user

import (
	"strings"

	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/internal/core/common/validation"
)

type CreateUserDTO struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	TenantID    *string  `json:"tenant_id"`
	IsActive    *bool    `json:"is_active"`
}

// UpdateUserDTO is a partial update; nil fields are left unchanged.
type UpdateUserDTO struct {
	Name        *string   `json:"name"`
	Email       *string   `json:"email"`
	Password    *string   `json:"password"`
	Role        *string   `json:"role"`
	Permissions *[]string `json:"permissions"`
	TenantID    *string   `json:"tenant_id"`
	IsActive    *bool     `json:"is_active"`
}

func (d *CreateUserDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	if d.Role == "" {
		d.Role = RoleUser
	}
}

func (d CreateUserDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MinLength(2).MaxLength(100)
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required().MinLength(8).MaxLength(72)
	v.Field("role", d.Role).Required().OneOf(Roles...)
	return v.Validate()
}

func (d *UpdateUserDTO) Normalize() {
	if d.Name != nil {
		n := strings.TrimSpace(*d.Name)
		d.Name = &n
	}
	if d.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*d.Email))
		d.Email = &e
	}
}

func (d UpdateUserDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MinLength(2).MaxLength(100)
	}
	if d.Email != nil {
		v.Field("email", *d.Email).Required().Email()
	}
	if d.Password != nil {
		v.Field("password", *d.Password).Required().MinLength(8).MaxLength(72)
	}
	if d.Role != nil {
		v.Field("role", *d.Role).Required().OneOf(Roles...)
	}
	return v.Validate()
}
