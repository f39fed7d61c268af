package postgres

import (
	"context"
	"errors"
	"strings"

	templateDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/template"
	"github.com/frahmantamala/chathub/internal/core/query"
	"github.com/frahmantamala/chathub/internal/template"
	"gorm.io/gorm"
)

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) template.RepositoryAPI {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) List(ctx context.Context, params query.ListParams) ([]*templateDatamodel.PromptTemplate, int64, error) {
	q := r.db.WithContext(ctx).Model(&templateDatamodel.PromptTemplate{})
	q = query.ApplySearch(q, params.Search, "name", "prompt_text")
	if category := params.Filter("category"); category != "" {
		q = q.Where("LOWER(category) = LOWER(?)", category)
	}
	if tag := params.Filter("tag"); tag != "" {
		// tags is a JSON array of strings; match the quoted element.
		q = q.Where("LOWER(CAST(tags AS TEXT)) LIKE ? ESCAPE '\\'", "%\""+query.EscapeLike(strings.ToLower(tag))+"\"%")
	}
	return query.FindPage[*templateDatamodel.PromptTemplate](q, params, "category ASC, name ASC, id ASC")
}

func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*templateDatamodel.PromptTemplate, error) {
	var t templateDatamodel.PromptTemplate
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepository) Create(ctx context.Context, t *templateDatamodel.PromptTemplate) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TemplateRepository) Update(ctx context.Context, t *templateDatamodel.PromptTemplate) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *TemplateRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&templateDatamodel.PromptTemplate{})
	return res.RowsAffected > 0, res.Error
}

func (r *TemplateRepository) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	err := r.db.WithContext(ctx).Model(&templateDatamodel.PromptTemplate{}).
		Distinct("category").
		Where("category <> ''").
		Order("category ASC").
		Pluck("category", &cats).Error
	return cats, err
}

func (r *TemplateRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&templateDatamodel.PromptTemplate{}).Count(&n).Error
	return n, err
}
