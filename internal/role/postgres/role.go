package postgres

import (
	"context"
	"errors"

	roleDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/role"
	"github.com/frahmantamala/chathub/internal/core/query"
	"github.com/frahmantamala/chathub/internal/role"
	"gorm.io/gorm"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) role.RepositoryAPI {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) List(ctx context.Context, params query.ListParams) ([]*roleDatamodel.Role, int64, error) {
	q := r.db.WithContext(ctx).Model(&roleDatamodel.Role{})
	q = query.ApplySearch(q, params.Search, "name", "description")
	return query.FindPage[*roleDatamodel.Role](q, params, "is_system DESC, name ASC")
}

func (r *RoleRepository) GetByID(ctx context.Context, id string) (*roleDatamodel.Role, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*roleDatamodel.Role, error) {
	return r.first(ctx, "LOWER(name) = LOWER(?)", name)
}

func (r *RoleRepository) first(ctx context.Context, cond string, arg interface{}) (*roleDatamodel.Role, error) {
	var row roleDatamodel.Role
	err := r.db.WithContext(ctx).Where(cond, arg).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *RoleRepository) Create(ctx context.Context, row *roleDatamodel.Role) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *RoleRepository) Update(ctx context.Context, row *roleDatamodel.Role) error {
	return r.db.WithContext(ctx).Save(row).Error
}

func (r *RoleRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&roleDatamodel.Role{})
	return res.RowsAffected > 0, res.Error
}
