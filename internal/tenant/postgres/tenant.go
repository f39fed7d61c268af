package postgres

import (
	"context"
	"errors"

	tenantDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/tenant"
	"github.com/frahmantamala/chathub/internal/core/query"
	"github.com/frahmantamala/chathub/internal/tenant"
	"gorm.io/gorm"
)

type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) tenant.RepositoryAPI {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) List(ctx context.Context, params query.ListParams) ([]*tenantDatamodel.Tenant, int64, error) {
	q := r.db.WithContext(ctx).Model(&tenantDatamodel.Tenant{})
	q = query.ApplySearch(q, params.Search, "name", "slug", "domain")
	if plan := params.Filter("plan"); plan != "" {
		q = q.Where("plan = ?", plan)
	}
	if status := params.Filter("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	return query.FindPage[*tenantDatamodel.Tenant](q, params, "name ASC, id ASC")
}

func (r *TenantRepository) GetByID(ctx context.Context, id string) (*tenantDatamodel.Tenant, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *TenantRepository) GetBySlug(ctx context.Context, slug string) (*tenantDatamodel.Tenant, error) {
	return r.first(r.db.WithContext(ctx).Where("slug = ?", slug))
}

func (r *TenantRepository) first(q *gorm.DB) (*tenantDatamodel.Tenant, error) {
	var t tenantDatamodel.Tenant
	if err := q.First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TenantRepository) Create(ctx context.Context, t *tenantDatamodel.Tenant) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TenantRepository) Update(ctx context.Context, t *tenantDatamodel.Tenant) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *TenantRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&tenantDatamodel.Tenant{})
	return res.RowsAffected > 0, res.Error
}

func (r *TenantRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&tenantDatamodel.Tenant{}).Count(&n).Error
	return n, err
}
