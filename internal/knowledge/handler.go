package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/chathub/internal/core/query"
	"github.com/frahmantamala/chathub/internal/transport"
	"github.com/frahmantamala/chathub/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, params query.ListParams) (query.Page[*Source], error)
	GetByID(ctx context.Context, id string) (*Source, error)
	Create(ctx context.Context, dto CreateSourceDTO) (*Source, error)
	Upload(ctx context.Context, up Upload) (*Source, error)
	Update(ctx context.Context, id string, dto UpdateSourceDTO) (*Source, error)
	Sync(ctx context.Context, id string) (*Source, error)
	Open(ctx context.Context, id string) (*Source, io.ReadCloser, error)
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

// ListSources handles GET /knowledge
func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	params := transport.ParseListParams(r, "type", "status")

	page, err := h.Service.List(r.Context(), params)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WritePaginated(w, r, page.Items, page.Info())
}

func (h *Handler) GetSource(w http.ResponseWriter, r *http.Request) {
	src, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, src, "")
}

func (h *Handler) CreateSource(w http.ResponseWriter, r *http.Request) {
	var dto CreateSourceDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	src, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, src, "Knowledge source created successfully")
}

// UploadSource handles POST /knowledge/upload (multipart: file, name)
func (h *Handler) UploadSource(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.HandleServiceError(w, ErrFileTooLarge)
			return
		}
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.HandleServiceError(w, ErrMissingFile)
		return
	}
	defer file.Close()

	src, err := h.Service.Upload(r.Context(), Upload{
		Name:        r.FormValue("name"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, src, "File uploaded successfully")
}

func (h *Handler) UpdateSource(w http.ResponseWriter, r *http.Request) {
	var dto UpdateSourceDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	src, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, src, "Knowledge source updated successfully")
}

// SyncSource handles POST /knowledge/{id}/sync
func (h *Handler) SyncSource(w http.ResponseWriter, r *http.Request) {
	src, err := h.Service.Sync(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, src, "Sync completed")
}

// DownloadSource handles GET /knowledge/{id}/download
func (h *Handler) DownloadSource(w http.ResponseWriter, r *http.Request) {
	src, rc, err := h.Service.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", src.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", src.Name))
	if src.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(src.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.Logger.WarnContext(r.Context(), "download interrupted", "source_id", src.ID, "error", err)
	}
}

func (h *Handler) DeleteSource(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, nil, "Knowledge source deleted successfully")
}
