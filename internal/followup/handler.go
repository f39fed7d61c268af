package followup

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/chathub/internal/core/query"
	"github.com/frahmantamala/chathub/internal/transport"
	"github.com/frahmantamala/chathub/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, params query.ListParams) (query.Page[*Flow], error)
	GetByID(ctx context.Context, id string) (*Flow, error)
	Create(ctx context.Context, dto CreateFlowDTO) (*Flow, error)
	Update(ctx context.Context, id string, dto UpdateFlowDTO) (*Flow, error)
	SetStatus(ctx context.Context, id string, dto SetStatusDTO) (*Flow, error)
	Delete(ctx context.Context, id string) error
	AddNode(ctx context.Context, flowID string, dto CreateNodeDTO) (*Node, error)
	UpdateNode(ctx context.Context, flowID, nodeID string, dto UpdateNodeDTO) (*Node, error)
	DeleteNode(ctx context.Context, flowID, nodeID string) error
	MoveNode(ctx context.Context, flowID, nodeID string, dto MoveNodeDTO) (*Flow, error)
	Validate(ctx context.Context, flowID string) (*ValidationReport, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// ListFlows handles GET /followups
func (h *Handler) ListFlows(w http.ResponseWriter, r *http.Request) {
	params := transport.ParseListParams(r, "status")

	page, err := h.Service.List(r.Context(), params)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WritePaginated(w, r, page.Items, page.Info())
}

func (h *Handler) GetFlow(w http.ResponseWriter, r *http.Request) {
	f, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, f, "")
}

func (h *Handler) CreateFlow(w http.ResponseWriter, r *http.Request) {
	var dto CreateFlowDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	f, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, f, "Flow created successfully")
}

func (h *Handler) UpdateFlow(w http.ResponseWriter, r *http.Request) {
	var dto UpdateFlowDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	f, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, f, "Flow updated successfully")
}

// SetStatus handles PUT /followups/{id}/status
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var dto SetStatusDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	f, err := h.Service.SetStatus(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, f, "Flow status updated")
}

func (h *Handler) DeleteFlow(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, nil, "Flow deleted successfully")
}

// AddNode handles POST /followups/{id}/nodes
func (h *Handler) AddNode(w http.ResponseWriter, r *http.Request) {
	var dto CreateNodeDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	n, err := h.Service.AddNode(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, n, "Node added successfully")
}

func (h *Handler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var dto UpdateNodeDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	n, err := h.Service.UpdateNode(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "nodeID"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, n, "Node updated successfully")
}

func (h *Handler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteNode(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "nodeID")); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, nil, "Node deleted successfully")
}

// MoveNode handles POST /followups/{id}/nodes/{nodeID}/move
func (h *Handler) MoveNode(w http.ResponseWriter, r *http.Request) {
	var dto MoveNodeDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	f, err := h.Service.MoveNode(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "nodeID"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, f, "Node moved")
}

// ValidateFlow handles GET /followups/{id}/validate
func (h *Handler) ValidateFlow(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Validate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, report, "")
}
