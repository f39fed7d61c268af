package aimodel

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/chathub/internal/core/query"
	"github.com/frahmantamala/chathub/internal/core/wizard"
	"github.com/frahmantamala/chathub/internal/transport"
	"github.com/frahmantamala/chathub/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, params query.ListParams) (query.Page[*AIModel], error)
	GetByID(ctx context.Context, id string) (*AIModel, error)
	GetDefault(ctx context.Context) (*AIModel, error)
	Create(ctx context.Context, dto CreateModelDTO) (*AIModel, error)
	Update(ctx context.Context, id string, dto UpdateModelDTO) (*AIModel, error)
	SetDefault(ctx context.Context, id string) (*AIModel, error)
	Delete(ctx context.Context, id string) error
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

// ListModels handles GET /models
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	params := transport.ParseListParams(r, "provider", "status")

	page, err := h.Service.List(r.Context(), params)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WritePaginated(w, r, page.Items, page.Info())
}

func (h *Handler) GetModel(w http.ResponseWriter, r *http.Request) {
	m, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, m, "")
}

// GetDefaultModel handles GET /models/default
func (h *Handler) GetDefaultModel(w http.ResponseWriter, r *http.Request) {
	m, err := h.Service.GetDefault(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, m, "")
}

func (h *Handler) CreateModel(w http.ResponseWriter, r *http.Request) {
	var dto CreateModelDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	m, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, m, "Model created successfully")
}

func (h *Handler) UpdateModel(w http.ResponseWriter, r *http.Request) {
	var dto UpdateModelDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	m, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, m, "Model updated successfully")
}

// SetDefaultModel handles POST /models/{id}/default
func (h *Handler) SetDefaultModel(w http.ResponseWriter, r *http.Request) {
	m, err := h.Service.SetDefault(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, m, "Default model updated")
}

func (h *Handler) DeleteModel(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, nil, "Model deleted successfully")
}

// Wizard handles POST /models/wizard
func (h *Handler) Wizard(w http.ResponseWriter, r *http.Request) {
	var req wizard.Request
	if err := h.DecodeJSON(w, r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	state, err := ConnectionWizard.Handle(req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, state, "")
}
