package tenant

import (
	"strings"

	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/internal/core/common/validation"
)

type CreateTenantDTO struct {
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Plan   string `json:"plan"`
	Status string `json:"status"`
	Domain string `json:"domain"`
}

type UpdateTenantDTO struct {
	Name   *string `json:"name"`
	Slug   *string `json:"slug"`
	Plan   *string `json:"plan"`
	Status *string `json:"status"`
	Domain *string `json:"domain"`
}

func (d *CreateTenantDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	if strings.TrimSpace(d.Slug) == "" {
		d.Slug = Slugify(d.Name)
	} else {
		d.Slug = Slugify(d.Slug)
	}
	d.Plan = strings.ToLower(strings.TrimSpace(d.Plan))
	if d.Plan == "" {
		d.Plan = PlanStarter
	}
	d.Status = strings.ToLower(strings.TrimSpace(d.Status))
	if d.Status == "" {
		d.Status = StatusActive
	}
	d.Domain = strings.ToLower(strings.TrimSpace(d.Domain))
}

func (d CreateTenantDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("slug", d.Slug).Required().MaxLength(64)
	v.Field("plan", d.Plan).OneOf(PlanStarter, PlanGrowth, PlanEnterprise)
	v.Field("status", d.Status).OneOf(StatusActive, StatusSuspended)
	v.Field("domain", d.Domain).MaxLength(255).Hostname()
	return v.Validate()
}

func (d *UpdateTenantDTO) Normalize() {
	if d.Name != nil {
		n := strings.TrimSpace(*d.Name)
		d.Name = &n
	}
	if d.Slug != nil {
		s := Slugify(*d.Slug)
		d.Slug = &s
	}
	if d.Plan != nil {
		p := strings.ToLower(strings.TrimSpace(*d.Plan))
		d.Plan = &p
	}
	if d.Status != nil {
		s := strings.ToLower(strings.TrimSpace(*d.Status))
		d.Status = &s
	}
	if d.Domain != nil {
		dm := strings.ToLower(strings.TrimSpace(*d.Domain))
		d.Domain = &dm
	}
}

func (d UpdateTenantDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(100)
	}
	if d.Slug != nil {
		v.Field("slug", *d.Slug).Required().MaxLength(64)
	}
	if d.Plan != nil {
		v.Field("plan", *d.Plan).Required().OneOf(PlanStarter, PlanGrowth, PlanEnterprise)
	}
	if d.Status != nil {
		v.Field("status", *d.Status).Required().OneOf(StatusActive, StatusSuspended)
	}
	if d.Domain != nil {
		v.Field("domain", *d.Domain).MaxLength(255).Hostname()
	}
	return v.Validate()
}
