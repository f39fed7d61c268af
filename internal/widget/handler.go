package widget

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/internal/transport"
	"github.com/frahmantamala/chathub/pkg/logger"
)

const maxImportBytes = 1 << 20

type ServiceAPI interface {
	Get(ctx context.Context, tenantID string) (*View, error)
	Update(ctx context.Context, tenantID, userID string, settings Settings) (*View, error)
	Reset(ctx context.Context, tenantID string) (*View, error)
	Export(ctx context.Context, tenantID string) ([]byte, error)
	Import(ctx context.Context, tenantID, userID string, data []byte) (*View, error)
	EmbedCode(ctx context.Context, tenantID string) (*EmbedCode, error)
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

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.Get(r.Context(), internal.TenantFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, view, "")
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings Settings
	if err := h.DecodeJSON(w, r, &settings); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	ctx := r.Context()
	view, err := h.Service.Update(ctx, internal.TenantFromContext(ctx), internal.UserIDFromContext(ctx), settings)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, view, "Widget settings saved")
}

func (h *Handler) ResetSettings(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.Reset(r.Context(), internal.TenantFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, view, "Widget settings reset to defaults")
}

func (h *Handler) ExportSettings(w http.ResponseWriter, r *http.Request) {
	tenantID := internal.TenantFromContext(r.Context())
	data, err := h.Service.Export(r.Context(), tenantID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": fmt.Sprintf("widget-settings-%s.json", tenantID),
	}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.Logger.Warn("failed to write widget export", "error", err)
	}
}

// ImportSettings accepts either a raw JSON body or a multipart upload in field "file".
func (h *Handler) ImportSettings(w http.ResponseWriter, r *http.Request) {
	data, err := readImport(w, r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	ctx := r.Context()
	view, err := h.Service.Import(ctx, internal.TenantFromContext(ctx), internal.UserIDFromContext(ctx), data)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, view, "Widget settings imported")
}

func (h *Handler) Embed(w http.ResponseWriter, r *http.Request) {
	code, err := h.Service.EmbedCode(r.Context(), internal.TenantFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, code, "")
}

func readImport(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, internal.NewValidationFieldError("file", "file is required", internal.ErrCodeValidationFailed)
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, internal.NewValidationError("failed to read uploaded file", internal.ErrCodeInvalidRequest).WithCause(err)
		}
		return data, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, internal.NewValidationError("failed to read request body", internal.ErrCodeInvalidRequest).WithCause(err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, internal.NewValidationError("request body is required", internal.ErrCodeInvalidRequest)
	}
	return data, nil
}
