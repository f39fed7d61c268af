package postgres

import (
	"context"
	"errors"
	"time"

	followupDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/followup"
	"github.com/frahmantamala/chathub/internal/core/query"
	"github.com/frahmantamala/chathub/internal/followup"
	"gorm.io/gorm"
)

type FlowRepository struct {
	db *gorm.DB
}

func NewFlowRepository(db *gorm.DB) followup.RepositoryAPI {
	return &FlowRepository{db: db}
}

func orderedNodes(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *FlowRepository) List(ctx context.Context, params query.ListParams) ([]*followupDatamodel.Flow, int64, error) {
	q := r.db.WithContext(ctx).Model(&followupDatamodel.Flow{})
	q = query.ApplySearch(q, params.Search, "name", "description")
	if status := params.Filter("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	flows, total, err := query.FindPage[*followupDatamodel.Flow](q, params, "created_at DESC, id ASC")
	if err != nil || len(flows) == 0 {
		return flows, total, err
	}

	ids := make([]string, 0, len(flows))
	byID := make(map[string]*followupDatamodel.Flow, len(flows))
	for _, f := range flows {
		ids = append(ids, f.ID)
		byID[f.ID] = f
	}
	var nodes []followupDatamodel.Node
	if err := r.db.WithContext(ctx).Where("flow_id IN ?", ids).Order("flow_id ASC, position ASC").Find(&nodes).Error; err != nil {
		return nil, 0, err
	}
	for _, n := range nodes {
		byID[n.FlowID].Nodes = append(byID[n.FlowID].Nodes, n)
	}
	return flows, total, nil
}

func (r *FlowRepository) GetByID(ctx context.Context, id string) (*followupDatamodel.Flow, error) {
	var f followupDatamodel.Flow
	err := r.db.WithContext(ctx).Preload("Nodes", orderedNodes).Where("id = ?", id).First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *FlowRepository) Create(ctx context.Context, f *followupDatamodel.Flow) error {
	return r.db.WithContext(ctx).Create(f).Error
}

// Update writes the flow's own columns; nodes change through the node methods.
func (r *FlowRepository) Update(ctx context.Context, f *followupDatamodel.Flow) error {
	return r.db.WithContext(ctx).Omit("Nodes").Save(f).Error
}

func (r *FlowRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("flow_id = ?", id).Delete(&followupDatamodel.Node{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&followupDatamodel.Flow{})
		deleted = res.RowsAffected > 0
		return res.Error
	})
	return deleted, err
}

func (r *FlowRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&followupDatamodel.Flow{}).Count(&n).Error
	return n, err
}

func (r *FlowRepository) AppendNode(ctx context.Context, n *followupDatamodel.Node) (bool, error) {
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var flows int64
		if err := tx.Model(&followupDatamodel.Flow{}).Where("id = ?", n.FlowID).Count(&flows).Error; err != nil {
			return err
		}
		if flows == 0 {
			return nil
		}
		found = true

		var count int64
		if err := tx.Model(&followupDatamodel.Node{}).Where("flow_id = ?", n.FlowID).Count(&count).Error; err != nil {
			return err
		}
		n.Position = int(count)
		if err := tx.Create(n).Error; err != nil {
			return err
		}
		return touchFlow(tx, n.FlowID)
	})
	return found, err
}

func (r *FlowRepository) GetNode(ctx context.Context, flowID, nodeID string) (*followupDatamodel.Node, error) {
	var n followupDatamodel.Node
	err := r.db.WithContext(ctx).Where("id = ? AND flow_id = ?", nodeID, flowID).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *FlowRepository) UpdateNode(ctx context.Context, n *followupDatamodel.Node) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(n).Error; err != nil {
			return err
		}
		return touchFlow(tx, n.FlowID)
	})
}

func (r *FlowRepository) DeleteNode(ctx context.Context, flowID, nodeID string) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND flow_id = ?", nodeID, flowID).Delete(&followupDatamodel.Node{})
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		deleted = true
		if err := renumber(tx, flowID, nil); err != nil {
			return err
		}
		return touchFlow(tx, flowID)
	})
	return deleted, err
}

func (r *FlowRepository) MoveNode(ctx context.Context, flowID, nodeID string, position int) (bool, error) {
	moved := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var nodes []followupDatamodel.Node
		if err := orderedNodes(tx.Where("flow_id = ?", flowID)).Find(&nodes).Error; err != nil {
			return err
		}

		from := -1
		for i := range nodes {
			if nodes[i].ID == nodeID {
				from = i
				break
			}
		}
		if from < 0 {
			return nil
		}
		moved = true

		to := position
		if to < 0 {
			to = 0
		}
		if to > len(nodes)-1 {
			to = len(nodes) - 1
		}

		node := nodes[from]
		nodes = append(nodes[:from], nodes[from+1:]...)
		nodes = append(nodes[:to], append([]followupDatamodel.Node{node}, nodes[to:]...)...)

		if err := renumber(tx, flowID, nodes); err != nil {
			return err
		}
		return touchFlow(tx, flowID)
	})
	return moved, err
}

// renumber rewrites positions to match order. A nil order reloads the current order.
func renumber(tx *gorm.DB, flowID string, order []followupDatamodel.Node) error {
	if order == nil {
		if err := orderedNodes(tx.Where("flow_id = ?", flowID)).Find(&order).Error; err != nil {
			return err
		}
	}
	for i := range order {
		if order[i].Position == i {
			continue
		}
		err := tx.Model(&followupDatamodel.Node{}).
			Where("id = ?", order[i].ID).
			UpdateColumn("position", i).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func touchFlow(tx *gorm.DB, flowID string) error {
	return tx.Model(&followupDatamodel.Flow{}).Where("id = ?", flowID).UpdateColumn("updated_at", time.Now()).Error
}
