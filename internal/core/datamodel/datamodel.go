// Package datamodel lists every persisted row type.
package datamodel

import (
	"github.com/frahmantamala/chathub/internal/core/datamodel/aimodel"
	"github.com/frahmantamala/chathub/internal/core/datamodel/followup"
	"github.com/frahmantamala/chathub/internal/core/datamodel/knowledge"
	"github.com/frahmantamala/chathub/internal/core/datamodel/role"
	"github.com/frahmantamala/chathub/internal/core/datamodel/template"
	"github.com/frahmantamala/chathub/internal/core/datamodel/tenant"
	"github.com/frahmantamala/chathub/internal/core/datamodel/user"
	"github.com/frahmantamala/chathub/internal/core/datamodel/widget"
)

// All returns the row types in dependency order, for gorm AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&tenant.Tenant{},
		&role.Role{},
		&user.User{},
		&aimodel.AIModel{},
		&template.PromptTemplate{},
		&followup.Flow{},
		&followup.Node{},
		&knowledge.Source{},
		&widget.Settings{},
	}
}
