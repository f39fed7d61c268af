// Package seed loads the embedded demo fixtures into the database.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	aimodelDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/aimodel"
	followupDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/followup"
	knowledgeDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/knowledge"
	roleDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/role"
	templateDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/template"
	tenantDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/tenant"
	userDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/user"
	widgetDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/widget"
	"github.com/frahmantamala/chathub/internal/role"
	"github.com/frahmantamala/chathub/internal/tenant"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed fixtures.yml
var fixturesYAML []byte

type Fixtures struct {
	Version   string            `yaml:"version"`
	Tenants   []TenantFixture   `yaml:"tenants"`
	Users     []UserFixture     `yaml:"users"`
	Models    []ModelFixture    `yaml:"models"`
	Templates []TemplateFixture `yaml:"templates"`
	Flows     []FlowFixture     `yaml:"flows"`
	Sources   []SourceFixture   `yaml:"sources"`
}

type TenantFixture struct {
	Name   string `yaml:"name"`
	Slug   string `yaml:"slug"`
	Plan   string `yaml:"plan"`
	Domain string `yaml:"domain"`
}

type UserFixture struct {
	Name        string   `yaml:"name"`
	Email       string   `yaml:"email"`
	Password    string   `yaml:"password"`
	Role        string   `yaml:"role"`
	Permissions []string `yaml:"permissions"`
}

type ModelFixture struct {
	Name         string   `yaml:"name"`
	Provider     string   `yaml:"provider"`
	APIKey       string   `yaml:"api_key"`
	BaseURL      string   `yaml:"base_url"`
	ModelType    string   `yaml:"model_type"`
	MaxTokens    int      `yaml:"max_tokens"`
	Temperature  float64  `yaml:"temperature"`
	IsDefault    bool     `yaml:"is_default"`
	Status       string   `yaml:"status"`
	Capabilities []string `yaml:"capabilities"`
}

type TemplateFixture struct {
	Name       string   `yaml:"name"`
	Category   string   `yaml:"category"`
	PromptText string   `yaml:"prompt_text"`
	Tags       []string `yaml:"tags"`
}

type FlowFixture struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Status      string        `yaml:"status"`
	Nodes       []NodeFixture `yaml:"nodes"`
}

type NodeFixture struct {
	ID         string                        `yaml:"id"`
	Type       string                        `yaml:"type"`
	Content    string                        `yaml:"content"`
	Delay      int                           `yaml:"delay"`
	DelayUnit  string                        `yaml:"delay_unit"`
	Conditions []followupDatamodel.Condition `yaml:"conditions"`
}

type SourceFixture struct {
	Name          string `yaml:"name"`
	Type          string `yaml:"type"`
	URL           string `yaml:"url"`
	Content       string `yaml:"content"`
	Status        string `yaml:"status"`
	DocumentCount int    `yaml:"document_count"`
}

// Result counts the rows each run inserted.
type Result struct {
	Roles     int
	Users     int
	Tenants   int
	Models    int
	Templates int
	Flows     int
	Sources   int
}

func LoadFixtures() (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(fixturesYAML, &f); err != nil {
		return nil, fmt.Errorf("seed: decode fixtures: %w", err)
	}
	return &f, nil
}

type Seeder struct {
	db         *gorm.DB
	fixtures   *Fixtures
	bcryptCost int
	logger     *slog.Logger
}

func NewSeeder(db *gorm.DB, fixtures *Fixtures, bcryptCost int, logger *slog.Logger) *Seeder {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{db: db, fixtures: fixtures, bcryptCost: bcryptCost, logger: logger}
}

// Run inserts every fixture that is not already present, matching on its natural key.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []func(*gorm.DB, *Result) error{
			s.seedRoles,
			s.seedTenants,
			s.seedUsers,
			s.seedModels,
			s.seedTemplates,
			s.seedFlows,
			s.seedSources,
		}
		for _, step := range steps {
			if err := step(tx, &res); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	s.logger.Info("seed complete",
		"roles", res.Roles, "users", res.Users, "tenants", res.Tenants,
		"models", res.Models, "templates", res.Templates, "flows", res.Flows, "sources", res.Sources)
	return res, nil
}

// Clear removes every row the seeder manages, children first.
func (s *Seeder) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&followupDatamodel.Node{},
			&followupDatamodel.Flow{},
			&knowledgeDatamodel.Source{},
			&templateDatamodel.PromptTemplate{},
			&aimodelDatamodel.AIModel{},
			&widgetDatamodel.Settings{},
			&userDatamodel.User{},
			&roleDatamodel.Role{},
			&tenantDatamodel.Tenant{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("seed: clear %T: %w", model, err)
			}
		}
		return nil
	})
}

func exists(tx *gorm.DB, model interface{}, column string, value interface{}) (bool, error) {
	var n int64
	if err := tx.Model(model).Where(column+" = ?", value).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Seeder) seedRoles(tx *gorm.DB, res *Result) error {
	for _, r := range role.DefaultRoles() {
		found, err := exists(tx, &roleDatamodel.Role{}, "name", r.Name)
		if err != nil {
			return err
		}
		if found {
			continue
		}
		r.ID = uuid.NewString()
		if err := tx.Create(role.ToDataModel(r)).Error; err != nil {
			return fmt.Errorf("seed: role %s: %w", r.Name, err)
		}
		res.Roles++
	}
	return nil
}

func (s *Seeder) seedTenants(tx *gorm.DB, res *Result) error {
	for _, t := range s.fixtures.Tenants {
		slug := t.Slug
		if slug == "" {
			slug = tenant.Slugify(t.Name)
		}
		found, err := exists(tx, &tenantDatamodel.Tenant{}, "slug", slug)
		if err != nil {
			return err
		}
		if found {
			continue
		}
		row := &tenantDatamodel.Tenant{
			ID:     uuid.NewString(),
			Name:   t.Name,
			Slug:   slug,
			Plan:   orDefault(t.Plan, tenant.PlanStarter),
			Status: tenant.StatusActive,
			Domain: t.Domain,
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("seed: tenant %s: %w", slug, err)
		}
		res.Tenants++
	}
	return nil
}

func (s *Seeder) seedUsers(tx *gorm.DB, res *Result) error {
	for _, u := range s.fixtures.Users {
		found, err := exists(tx, &userDatamodel.User{}, "email", u.Email)
		if err != nil {
			return err
		}
		if found {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), s.bcryptCost)
		if err != nil {
			return fmt.Errorf("seed: hash password for %s: %w", u.Email, err)
		}
		row := &userDatamodel.User{
			ID:           uuid.NewString(),
			Email:        u.Email,
			Name:         u.Name,
			PasswordHash: string(hash),
			Role:         u.Role,
			Permissions:  u.Permissions,
			IsActive:     true,
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("seed: user %s: %w", u.Email, err)
		}
		res.Users++
	}
	return nil
}

func (s *Seeder) seedModels(tx *gorm.DB, res *Result) error {
	var defaults int64
	if err := tx.Model(&aimodelDatamodel.AIModel{}).Where("is_default = ?", true).Count(&defaults).Error; err != nil {
		return err
	}

	for _, m := range s.fixtures.Models {
		found, err := exists(tx, &aimodelDatamodel.AIModel{}, "name", m.Name)
		if err != nil {
			return err
		}
		if found {
			continue
		}
		isDefault := m.IsDefault && defaults == 0
		if isDefault {
			defaults++
		}
		row := &aimodelDatamodel.AIModel{
			ID:           uuid.NewString(),
			Name:         m.Name,
			Provider:     m.Provider,
			APIKey:       m.APIKey,
			BaseURL:      m.BaseURL,
			ModelType:    m.ModelType,
			MaxTokens:    m.MaxTokens,
			Temperature:  m.Temperature,
			IsDefault:    isDefault,
			Status:       orDefault(m.Status, "active"),
			Capabilities: m.Capabilities,
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("seed: model %s: %w", m.Name, err)
		}
		res.Models++
	}
	return nil
}

func (s *Seeder) seedTemplates(tx *gorm.DB, res *Result) error {
	for _, t := range s.fixtures.Templates {
		found, err := exists(tx, &templateDatamodel.PromptTemplate{}, "name", t.Name)
		if err != nil {
			return err
		}
		if found {
			continue
		}
		row := &templateDatamodel.PromptTemplate{
			ID:         uuid.NewString(),
			Name:       t.Name,
			Category:   orDefault(t.Category, "general"),
			PromptText: t.PromptText,
			Tags:       t.Tags,
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("seed: template %s: %w", t.Name, err)
		}
		res.Templates++
	}
	return nil
}

func (s *Seeder) seedFlows(tx *gorm.DB, res *Result) error {
	for _, f := range s.fixtures.Flows {
		found, err := exists(tx, &followupDatamodel.Flow{}, "name", f.Name)
		if err != nil {
			return err
		}
		if found {
			continue
		}
		flow := &followupDatamodel.Flow{
			ID:          uuid.NewString(),
			Name:        f.Name,
			Description: f.Description,
			Status:      orDefault(f.Status, "draft"),
		}
		if err := tx.Omit("Nodes").Create(flow).Error; err != nil {
			return fmt.Errorf("seed: flow %s: %w", f.Name, err)
		}
		for i, n := range f.Nodes {
			id := n.ID
			if id == "" {
				id = uuid.NewString()
			}
			node := &followupDatamodel.Node{
				ID:         id,
				FlowID:     flow.ID,
				Position:   i,
				Type:       n.Type,
				Content:    n.Content,
				Delay:      n.Delay,
				DelayUnit:  orDefault(n.DelayUnit, "hours"),
				Conditions: n.Conditions,
			}
			if err := tx.Create(node).Error; err != nil {
				return fmt.Errorf("seed: node %s of %s: %w", id, f.Name, err)
			}
		}
		res.Flows++
	}
	return nil
}

func (s *Seeder) seedSources(tx *gorm.DB, res *Result) error {
	now := time.Now().UTC()
	for _, src := range s.fixtures.Sources {
		found, err := exists(tx, &knowledgeDatamodel.Source{}, "name", src.Name)
		if err != nil {
			return err
		}
		if found {
			continue
		}
		if src.Type == "file" {
			return errors.New("seed: file sources need an upload and cannot be seeded")
		}
		row := &knowledgeDatamodel.Source{
			ID:            uuid.NewString(),
			Name:          src.Name,
			Type:          src.Type,
			URL:           src.URL,
			Content:       src.Content,
			Status:        orDefault(src.Status, "pending"),
			DocumentCount: src.DocumentCount,
		}
		if row.Status == "synced" {
			row.LastSyncedAt = &now
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("seed: source %s: %w", src.Name, err)
		}
		res.Sources++
	}
	return nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
