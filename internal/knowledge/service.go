package knowledge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/frahmantamala/chathub/internal"
	knowledgeDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/knowledge"
	"github.com/frahmantamala/chathub/internal/core/query"
	"github.com/frahmantamala/chathub/internal/core/storage"
	"github.com/google/uuid"
)

// MaxUploadSize bounds a single uploaded file.
const MaxUploadSize = 10 << 20

type RepositoryAPI interface {
	List(ctx context.Context, params query.ListParams) ([]*knowledgeDatamodel.Source, int64, error)
	GetByID(ctx context.Context, id string) (*knowledgeDatamodel.Source, error)
	Create(ctx context.Context, s *knowledgeDatamodel.Source) error
	Update(ctx context.Context, s *knowledgeDatamodel.Source) error
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// Upload describes one multipart file.
type Upload struct {
	Name        string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Service struct {
	repo   RepositoryAPI
	store  storage.ObjectStore
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, store storage.ObjectStore, logger *slog.Logger) *Service {
	return &Service{repo: repo, store: store, logger: logger, now: time.Now}
}

func (s *Service) List(ctx context.Context, params query.ListParams) (query.Page[*Source], error) {
	rows, total, err := s.repo.List(ctx, params)
	if err != nil {
		s.logger.Error("failed to list knowledge sources", "error", err)
		return query.Page[*Source]{}, internal.NewInternalError("failed to list knowledge sources", err)
	}
	items := make([]*Source, 0, len(rows))
	for _, row := range rows {
		items = append(items, FromDataModel(row))
	}
	return query.Page[*Source]{Items: items, Total: total, Params: params}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Source, error) {
	row, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto CreateSourceDTO) (*Source, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := &knowledgeDatamodel.Source{
		ID:     uuid.NewString(),
		Name:   dto.Name,
		Type:   dto.Type,
		Status: StatusPending,
	}
	switch dto.Type {
	case TypeURL:
		row.URL = dto.URL
	case TypeText:
		row.Content = dto.Content
		row.ContentType = "text/plain"
		row.Size = int64(len(dto.Content))
	}

	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create knowledge source", "error", err)
		return nil, internal.NewInternalError("failed to create knowledge source", err)
	}
	return FromDataModel(row), nil
}

// Upload stores the file in the object store, then records the source.
func (s *Service) Upload(ctx context.Context, up Upload) (*Source, error) {
	if up.Body == nil || up.Filename == "" {
		return nil, ErrMissingFile
	}
	if up.Size > MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	name := strings.TrimSpace(up.Name)
	if name == "" {
		name = up.Filename
	}
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id := uuid.NewString()
	key := path.Join("knowledge", id, sanitizeFilename(up.Filename))

	if err := s.store.Put(ctx, key, up.Body, up.Size, contentType); err != nil {
		s.logger.Error("failed to store upload", "error", err, "key", key)
		return nil, internal.NewExternalError("failed to store file", err)
	}

	row := &knowledgeDatamodel.Source{
		ID:          id,
		Name:        name,
		Type:        TypeFile,
		ObjectKey:   key,
		ContentType: contentType,
		Size:        up.Size,
		Status:      StatusPending,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		if derr := s.store.Delete(ctx, key); derr != nil {
			s.logger.Warn("failed to remove orphaned upload", "error", derr, "key", key)
		}
		return nil, internal.NewInternalError("failed to create knowledge source", err)
	}

	s.logger.Info("knowledge file uploaded", "source_id", id, "size", up.Size, "content_type", contentType)
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateSourceDTO) (*Source, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if dto.URL != nil && row.Type != TypeURL {
		return nil, internal.NewValidationFieldError("url", "url can only be changed on url sources", internal.ErrCodeInvalidValue)
	}
	if dto.Content != nil && row.Type != TypeText {
		return nil, internal.NewValidationFieldError("content", "content can only be changed on text sources", internal.ErrCodeInvalidValue)
	}

	if dto.Name != nil {
		row.Name = *dto.Name
	}
	if dto.URL != nil && *dto.URL != row.URL {
		row.URL = *dto.URL
		row.Status = StatusPending
	}
	if dto.Content != nil && *dto.Content != row.Content {
		row.Content = *dto.Content
		row.Size = int64(len(row.Content))
		row.Status = StatusPending
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to update knowledge source", err)
	}
	return FromDataModel(row), nil
}

// Sync re-indexes a source: counts its documents and stamps the sync time. A source
// whose content cannot be read is marked failed.
func (s *Service) Sync(ctx context.Context, id string) (*Source, error) {
	row, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	count, syncErr := s.countDocuments(ctx, row)
	now := s.now()
	row.LastSyncedAt = &now
	if syncErr != nil {
		s.logger.Warn("knowledge sync failed", "source_id", id, "error", syncErr)
		row.Status = StatusFailed
	} else {
		row.Status = StatusSynced
		row.DocumentCount = count
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to update knowledge source", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) countDocuments(ctx context.Context, row *knowledgeDatamodel.Source) (int, error) {
	switch row.Type {
	case TypeText:
		return CountDocuments(strings.NewReader(row.Content))
	case TypeURL:
		return 1, nil
	}

	rc, err := s.store.Get(ctx, row.ObjectKey)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	if !isTextual(row.ContentType) {
		return 1, nil
	}
	return CountDocuments(rc)
}

// Open streams a file source's stored object.
func (s *Service) Open(ctx context.Context, id string) (*Source, io.ReadCloser, error) {
	row, err := s.get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if row.Type != TypeFile {
		return nil, nil, internal.NewValidationError("only file sources can be downloaded", internal.ErrCodeInvalidValue)
	}

	rc, err := s.store.Get(ctx, row.ObjectKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrSourceNotFound.WithCause(err)
		}
		return nil, nil, internal.NewExternalError("failed to read file", err)
	}
	return FromDataModel(row), rc, nil
}

// Delete removes the source and then its stored object.
func (s *Service) Delete(ctx context.Context, id string) error {
	row, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to delete knowledge source", err)
	}
	if !deleted {
		return ErrSourceNotFound
	}

	if row.ObjectKey != "" {
		if err := s.store.Delete(ctx, row.ObjectKey); err != nil {
			s.logger.Warn("failed to delete stored object", "error", err, "key", row.ObjectKey)
		}
	}
	return nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) get(ctx context.Context, id string) (*knowledgeDatamodel.Source, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get knowledge source", err)
	}
	if row == nil {
		return nil, ErrSourceNotFound
	}
	return row, nil
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "upload"
	}
	return out
}
