package postgres

import (
	"context"
	"errors"

	knowledgeDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/knowledge"
	"github.com/frahmantamala/chathub/internal/core/query"
	"github.com/frahmantamala/chathub/internal/knowledge"
	"gorm.io/gorm"
)

type SourceRepository struct {
	db *gorm.DB
}

func NewSourceRepository(db *gorm.DB) knowledge.RepositoryAPI {
	return &SourceRepository{db: db}
}

func (r *SourceRepository) List(ctx context.Context, params query.ListParams) ([]*knowledgeDatamodel.Source, int64, error) {
	q := r.db.WithContext(ctx).Model(&knowledgeDatamodel.Source{})
	q = query.ApplySearch(q, params.Search, "name", "url")
	if t := params.Filter("type"); t != "" {
		q = q.Where("type = ?", t)
	}
	if status := params.Filter("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	return query.FindPage[*knowledgeDatamodel.Source](q, params, "created_at DESC, id ASC")
}

func (r *SourceRepository) GetByID(ctx context.Context, id string) (*knowledgeDatamodel.Source, error) {
	var s knowledgeDatamodel.Source
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SourceRepository) Create(ctx context.Context, s *knowledgeDatamodel.Source) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SourceRepository) Update(ctx context.Context, s *knowledgeDatamodel.Source) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *SourceRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&knowledgeDatamodel.Source{})
	return res.RowsAffected > 0, res.Error
}

func (r *SourceRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&knowledgeDatamodel.Source{}).Count(&n).Error
	return n, err
}
