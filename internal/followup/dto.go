package followup

import (
	"fmt"
	"strings"

	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/internal/core/common/validation"
)

type CreateFlowDTO struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Nodes       []CreateNodeDTO `json:"nodes"`
}

type UpdateFlowDTO struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type SetStatusDTO struct {
	Status string `json:"status"`
}

type CreateNodeDTO struct {
	Type       string      `json:"type"`
	Content    string      `json:"content"`
	Delay      int         `json:"delay"`
	DelayUnit  string      `json:"delay_unit"`
	Conditions []Condition `json:"conditions"`
}

type UpdateNodeDTO struct {
	Type       *string      `json:"type"`
	Content    *string      `json:"content"`
	Delay      *int         `json:"delay"`
	DelayUnit  *string      `json:"delay_unit"`
	Conditions *[]Condition `json:"conditions"`
}

type MoveNodeDTO struct {
	Position int `json:"position"`
}

func (d *CreateFlowDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	for i := range d.Nodes {
		d.Nodes[i].Normalize()
	}
}

func (d CreateFlowDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("description", d.Description).MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}
	for i, n := range d.Nodes {
		if err := n.validate(fmt.Sprintf("nodes[%d].", i)); err != nil {
			return err
		}
	}
	return nil
}

func (d *UpdateFlowDTO) Normalize() {
	if d.Name != nil {
		n := strings.TrimSpace(*d.Name)
		d.Name = &n
	}
}

func (d UpdateFlowDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(100)
	}
	if d.Description != nil {
		v.Field("description", *d.Description).MaxLength(500)
	}
	return v.Validate()
}

func (d SetStatusDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("status", d.Status).Required().OneOf(Statuses...)
	return v.Validate()
}

func (d *CreateNodeDTO) Normalize() {
	d.Type = strings.ToLower(strings.TrimSpace(d.Type))
	d.DelayUnit = strings.ToLower(strings.TrimSpace(d.DelayUnit))
	if d.DelayUnit == "" {
		d.DelayUnit = UnitHours
	}
	for i := range d.Conditions {
		d.Conditions[i] = normalizeCondition(d.Conditions[i])
	}
}

func (d CreateNodeDTO) Validate() *internal.AppError {
	return d.validate("")
}

func (d CreateNodeDTO) validate(prefix string) *internal.AppError {
	v := validation.NewValidator()
	v.Field(prefix+"type", d.Type).Required().OneOf(NodeTypes...)
	v.Field(prefix+"content", d.Content).MaxLength(5000)
	v.Field(prefix+"delay", d.Delay).Min(0)
	v.Field(prefix+"delay_unit", d.DelayUnit).Required().OneOf(Units...)
	if err := v.Validate(); err != nil {
		return err
	}
	return validateConditions(prefix, d.Conditions)
}

func (d *UpdateNodeDTO) Normalize() {
	if d.Type != nil {
		t := strings.ToLower(strings.TrimSpace(*d.Type))
		d.Type = &t
	}
	if d.DelayUnit != nil {
		u := strings.ToLower(strings.TrimSpace(*d.DelayUnit))
		d.DelayUnit = &u
	}
	if d.Conditions != nil {
		for i := range *d.Conditions {
			(*d.Conditions)[i] = normalizeCondition((*d.Conditions)[i])
		}
	}
}

func (d UpdateNodeDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if d.Type != nil {
		v.Field("type", *d.Type).Required().OneOf(NodeTypes...)
	}
	if d.Content != nil {
		v.Field("content", *d.Content).MaxLength(5000)
	}
	if d.Delay != nil {
		v.Field("delay", *d.Delay).Min(0)
	}
	if d.DelayUnit != nil {
		v.Field("delay_unit", *d.DelayUnit).Required().OneOf(Units...)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	if d.Conditions != nil {
		return validateConditions("", *d.Conditions)
	}
	return nil
}

func normalizeCondition(c Condition) Condition {
	c.Field = strings.TrimSpace(c.Field)
	c.Operator = strings.ToLower(strings.TrimSpace(c.Operator))
	c.Target = strings.TrimSpace(c.Target)
	return c
}

func validateConditions(prefix string, conditions []Condition) *internal.AppError {
	for i, c := range conditions {
		v := validation.NewValidator()
		name := fmt.Sprintf("%sconditions[%d]", prefix, i)
		v.Field(name+".field", c.Field).Required()
		v.Field(name+".operator", c.Operator).Required().OneOf(Operators...)
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
