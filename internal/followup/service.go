package followup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/chathub/internal"
	followupDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/followup"
	"github.com/frahmantamala/chathub/internal/core/events"
	"github.com/frahmantamala/chathub/internal/core/query"
	"github.com/google/uuid"
)

// RepositoryAPI stores flows and their ordered nodes. Node positions are 0-based and
// contiguous within a flow.
type RepositoryAPI interface {
	List(ctx context.Context, params query.ListParams) ([]*followupDatamodel.Flow, int64, error)
	GetByID(ctx context.Context, id string) (*followupDatamodel.Flow, error)
	Create(ctx context.Context, f *followupDatamodel.Flow) error
	Update(ctx context.Context, f *followupDatamodel.Flow) error
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)

	AppendNode(ctx context.Context, n *followupDatamodel.Node) (bool, error)
	GetNode(ctx context.Context, flowID, nodeID string) (*followupDatamodel.Node, error)
	UpdateNode(ctx context.Context, n *followupDatamodel.Node) error
	DeleteNode(ctx context.Context, flowID, nodeID string) (bool, error)
	MoveNode(ctx context.Context, flowID, nodeID string, position int) (bool, error)
}

type Service struct {
	repo      RepositoryAPI
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

func (s *Service) List(ctx context.Context, params query.ListParams) (query.Page[*Flow], error) {
	rows, total, err := s.repo.List(ctx, params)
	if err != nil {
		s.logger.Error("failed to list flows", "error", err)
		return query.Page[*Flow]{}, internal.NewInternalError("failed to list flows", err)
	}
	items := make([]*Flow, 0, len(rows))
	for _, row := range rows {
		items = append(items, FromDataModel(row))
	}
	return query.Page[*Flow]{Items: items, Total: total, Params: params}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Flow, error) {
	row, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto CreateFlowDTO) (*Flow, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := &followupDatamodel.Flow{
		ID:          uuid.NewString(),
		Name:        dto.Name,
		Description: dto.Description,
		Status:      StatusDraft,
	}
	for i, n := range dto.Nodes {
		row.Nodes = append(row.Nodes, followupDatamodel.Node{
			ID:         uuid.NewString(),
			FlowID:     row.ID,
			Position:   i,
			Type:       n.Type,
			Content:    n.Content,
			Delay:      n.Delay,
			DelayUnit:  n.DelayUnit,
			Conditions: conditionsToDataModel(n.Conditions),
		})
	}

	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create flow", "error", err)
		return nil, internal.NewInternalError("failed to create flow", err)
	}
	s.logger.Info("follow-up flow created", "flow_id", row.ID, "nodes", len(row.Nodes))
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateFlowDTO) (*Flow, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if dto.Name != nil {
		row.Name = *dto.Name
	}
	if dto.Description != nil {
		row.Description = *dto.Description
	}
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to update flow", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) SetStatus(ctx context.Context, id string, dto SetStatusDTO) (*Flow, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if dto.Status == StatusActive && len(row.Nodes) == 0 {
		return nil, ErrEmptyFlow
	}

	row.Status = dto.Status
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to update flow status", err)
	}
	s.logger.Info("follow-up flow status changed", "flow_id", id, "status", dto.Status)
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to delete flow", err)
	}
	if !deleted {
		return ErrFlowNotFound
	}
	return nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// AddNode appends a node to the end of flowID. No other flow is touched.
func (s *Service) AddNode(ctx context.Context, flowID string, dto CreateNodeDTO) (*Node, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := &followupDatamodel.Node{
		ID:         uuid.NewString(),
		FlowID:     flowID,
		Type:       dto.Type,
		Content:    dto.Content,
		Delay:      dto.Delay,
		DelayUnit:  dto.DelayUnit,
		Conditions: conditionsToDataModel(dto.Conditions),
	}
	found, err := s.repo.AppendNode(ctx, row)
	if err != nil {
		s.logger.Error("failed to add node", "error", err, "flow_id", flowID)
		return nil, internal.NewInternalError("failed to add node", err)
	}
	if !found {
		return nil, ErrFlowNotFound
	}

	s.publish(ctx, events.NewFollowUpNodeAddedEvent(flowID, row.ID, row.Type, row.Position))
	return NodeFromDataModel(row), nil
}

func (s *Service) UpdateNode(ctx context.Context, flowID, nodeID string, dto UpdateNodeDTO) (*Node, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.getNode(ctx, flowID, nodeID)
	if err != nil {
		return nil, err
	}
	if dto.Type != nil {
		row.Type = *dto.Type
	}
	if dto.Content != nil {
		row.Content = *dto.Content
	}
	if dto.Delay != nil {
		row.Delay = *dto.Delay
	}
	if dto.DelayUnit != nil {
		row.DelayUnit = *dto.DelayUnit
	}
	if dto.Conditions != nil {
		row.Conditions = conditionsToDataModel(*dto.Conditions)
	}

	if err := s.repo.UpdateNode(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to update node", err)
	}
	return NodeFromDataModel(row), nil
}

func (s *Service) DeleteNode(ctx context.Context, flowID, nodeID string) error {
	deleted, err := s.repo.DeleteNode(ctx, flowID, nodeID)
	if err != nil {
		return internal.NewInternalError("failed to delete node", err)
	}
	if !deleted {
		return ErrNodeNotFound
	}
	return nil
}

// MoveNode places the node at position, clamped to the flow's bounds, and returns the flow.
func (s *Service) MoveNode(ctx context.Context, flowID, nodeID string, dto MoveNodeDTO) (*Flow, error) {
	moved, err := s.repo.MoveNode(ctx, flowID, nodeID, dto.Position)
	if err != nil {
		return nil, internal.NewInternalError("failed to move node", err)
	}
	if !moved {
		return nil, ErrNodeNotFound
	}
	return s.GetByID(ctx, flowID)
}

// Validate reports condition targets that do not name a node of the same flow.
func (s *Service) Validate(ctx context.Context, flowID string) (*ValidationReport, error) {
	flow, err := s.GetByID(ctx, flowID)
	if err != nil {
		return nil, err
	}
	return CheckFlow(flow), nil
}

// CheckFlow is the pure part of Validate.
func CheckFlow(flow *Flow) *ValidationReport {
	ids := make(map[string]struct{}, len(flow.Nodes))
	for _, n := range flow.Nodes {
		ids[n.ID] = struct{}{}
	}

	report := &ValidationReport{FlowID: flow.ID, Issues: []Issue{}}
	for _, n := range flow.Nodes {
		if n.Type == NodeConditional && len(n.Conditions) == 0 {
			report.Issues = append(report.Issues, Issue{
				NodeID:    n.ID,
				Condition: -1,
				Message:   "conditional node has no conditions",
			})
		}
		for i, c := range n.Conditions {
			switch {
			case c.Target == "":
				report.Issues = append(report.Issues, Issue{NodeID: n.ID, Condition: i, Message: "condition has no target"})
			case c.Target == n.ID:
				report.Issues = append(report.Issues, Issue{NodeID: n.ID, Condition: i, Target: c.Target, Message: "condition targets its own node"})
			default:
				if _, ok := ids[c.Target]; !ok {
					report.Issues = append(report.Issues, Issue{
						NodeID:    n.ID,
						Condition: i,
						Target:    c.Target,
						Message:   fmt.Sprintf("target %q is not a node of this flow", c.Target),
					})
				}
			}
		}
	}
	report.Valid = len(report.Issues) == 0
	return report
}

func (s *Service) get(ctx context.Context, id string) (*followupDatamodel.Flow, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get flow", err)
	}
	if row == nil {
		return nil, ErrFlowNotFound
	}
	return row, nil
}

func (s *Service) getNode(ctx context.Context, flowID, nodeID string) (*followupDatamodel.Node, error) {
	row, err := s.repo.GetNode(ctx, flowID, nodeID)
	if err != nil {
		return nil, internal.NewInternalError("failed to get node", err)
	}
	if row == nil {
		return nil, ErrNodeNotFound
	}
	return row, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
