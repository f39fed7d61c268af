package followup

import (
	"time"

	"github.com/frahmantamala/chathub/internal"
	followupDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/followup"
)

const (
	StatusDraft  = "draft"
	StatusActive = "active"
	StatusPaused = "paused"

	NodeEmail       = "email"
	NodeTask        = "task"
	NodeConditional = "conditional"

	UnitMinutes = "minutes"
	UnitHours   = "hours"
	UnitDays    = "days"
)

var (
	Statuses  = []string{StatusDraft, StatusActive, StatusPaused}
	NodeTypes = []string{NodeEmail, NodeTask, NodeConditional}
	Units     = []string{UnitMinutes, UnitHours, UnitDays}
	Operators = []string{"equals", "not_equals", "contains", "greater_than", "less_than"}
)

type Flow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Nodes       []*Node   `json:"nodes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
	// Target is the id of the node to jump to. It is checked by Validate, not on write.
	Target string `json:"target"`
}

type Node struct {
	ID         string      `json:"id"`
	FlowID     string      `json:"flow_id"`
	Position   int         `json:"position"`
	Type       string      `json:"type"`
	Content    string      `json:"content"`
	Delay      int         `json:"delay"`
	DelayUnit  string      `json:"delay_unit"`
	Conditions []Condition `json:"conditions"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// DelayDuration converts the node delay into a duration.
func (n *Node) DelayDuration() time.Duration {
	d := time.Duration(n.Delay)
	switch n.DelayUnit {
	case UnitHours:
		return d * time.Hour
	case UnitDays:
		return d * 24 * time.Hour
	default:
		return d * time.Minute
	}
}

// Issue is one problem found by Validate.
type Issue struct {
	NodeID    string `json:"node_id"`
	Condition int    `json:"condition_index"`
	Target    string `json:"target,omitempty"`
	Message   string `json:"message"`
}

type ValidationReport struct {
	FlowID string  `json:"flow_id"`
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
}

var (
	ErrFlowNotFound = internal.NewNotFoundError("follow-up flow not found", internal.ErrCodeFlowNotFound)
	ErrNodeNotFound = internal.NewNotFoundError("follow-up node not found", internal.ErrCodeNodeNotFound)
	ErrEmptyFlow    = internal.NewValidationError("a flow needs at least one node before it can be activated", internal.ErrCodeInvalidValue)
)

func FromDataModel(row *followupDatamodel.Flow) *Flow {
	f := &Flow{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Status:      row.Status,
		Nodes:       make([]*Node, 0, len(row.Nodes)),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	for i := range row.Nodes {
		f.Nodes = append(f.Nodes, NodeFromDataModel(&row.Nodes[i]))
	}
	return f
}

func NodeFromDataModel(row *followupDatamodel.Node) *Node {
	n := &Node{
		ID:         row.ID,
		FlowID:     row.FlowID,
		Position:   row.Position,
		Type:       row.Type,
		Content:    row.Content,
		Delay:      row.Delay,
		DelayUnit:  row.DelayUnit,
		Conditions: make([]Condition, 0, len(row.Conditions)),
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
	for _, c := range row.Conditions {
		n.Conditions = append(n.Conditions, Condition(c))
	}
	return n
}

func conditionsToDataModel(in []Condition) []followupDatamodel.Condition {
	out := make([]followupDatamodel.Condition, 0, len(in))
	for _, c := range in {
		out = append(out, followupDatamodel.Condition(c))
	}
	return out
}
