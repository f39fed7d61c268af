package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/chathub/internal/aimodel"
	aimodelDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/aimodel"
	"github.com/frahmantamala/chathub/internal/core/query"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ModelRepository struct {
	db *gorm.DB
}

func NewModelRepository(db *gorm.DB) aimodel.RepositoryAPI {
	return &ModelRepository{db: db}
}

func (r *ModelRepository) List(ctx context.Context, params query.ListParams) ([]*aimodelDatamodel.AIModel, int64, error) {
	q := r.db.WithContext(ctx).Model(&aimodelDatamodel.AIModel{})
	q = query.ApplySearch(q, params.Search, "name", "provider")
	if provider := params.Filter("provider"); provider != "" {
		q = q.Where("provider = ?", provider)
	}
	if status := params.Filter("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	return query.FindPage[*aimodelDatamodel.AIModel](q, params, "is_default DESC, name ASC, id ASC")
}

func (r *ModelRepository) GetByID(ctx context.Context, id string) (*aimodelDatamodel.AIModel, error) {
	return first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *ModelRepository) GetDefault(ctx context.Context) (*aimodelDatamodel.AIModel, error) {
	return first(r.db.WithContext(ctx).Where("is_default = ?", true).Order("updated_at DESC"))
}

const statusInactive = "inactive"

func (r *ModelRepository) Create(ctx context.Context, m *aimodelDatamodel.AIModel) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockModels(tx); err != nil {
			return err
		}
		// an inactive model never becomes the default implicitly
		if !m.IsDefault && m.Status != statusInactive {
			var defaults int64
			if err := tx.Model(&aimodelDatamodel.AIModel{}).Where("is_default = ?", true).Count(&defaults).Error; err != nil {
				return err
			}
			m.IsDefault = defaults == 0
		}
		if m.IsDefault {
			if err := clearDefaults(tx, m.ID); err != nil {
				return err
			}
		}
		return tx.Create(m).Error
	})
}

func (r *ModelRepository) Update(ctx context.Context, m *aimodelDatamodel.AIModel) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if m.IsDefault {
			if err := lockModels(tx); err != nil {
				return err
			}
			if err := clearDefaults(tx, m.ID); err != nil {
				return err
			}
		}
		return tx.Save(m).Error
	})
}

func (r *ModelRepository) SetDefault(ctx context.Context, id string) (bool, error) {
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockModels(tx); err != nil {
			return err
		}
		res := tx.Model(&aimodelDatamodel.AIModel{}).Where("id = ?", id).Update("is_default", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		found = true
		return clearDefaults(tx, id)
	})
	return found, err
}

func (r *ModelRepository) DeleteNonDefault(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND is_default = ?", id, false).
		Delete(&aimodelDatamodel.AIModel{})
	return res.RowsAffected > 0, res.Error
}

func (r *ModelRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&aimodelDatamodel.AIModel{}).Count(&n).Error
	return n, err
}

func first(q *gorm.DB) (*aimodelDatamodel.AIModel, error) {
	var m aimodelDatamodel.AIModel
	if err := q.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func clearDefaults(tx *gorm.DB, keepID string) error {
	return tx.Model(&aimodelDatamodel.AIModel{}).
		Where("is_default = ? AND id <> ?", true, keepID).
		Update("is_default", false).Error
}

// lockModels serializes default changes on postgres. SQLite already serializes writers.
func lockModels(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	var ids []string
	return tx.Model(&aimodelDatamodel.AIModel{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Pluck("id", &ids).Error
}
