package knowledge

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/frahmantamala/chathub/internal"
	knowledgeDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/knowledge"
)

const (
	TypeFile = "file"
	TypeURL  = "url"
	TypeText = "text"

	StatusPending = "pending"
	StatusSynced  = "synced"
	StatusFailed  = "failed"
)

// Source is a body of knowledge the chat assistant answers from.
type Source struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	URL           string     `json:"url,omitempty"`
	Content       string     `json:"content,omitempty"`
	ObjectKey     string     `json:"object_key,omitempty"`
	ContentType   string     `json:"content_type,omitempty"`
	Size          int64      `json:"size"`
	Status        string     `json:"status"`
	DocumentCount int        `json:"document_count"`
	LastSyncedAt  *time.Time `json:"last_synced_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

var (
	ErrSourceNotFound = internal.NewNotFoundError("knowledge source not found", internal.ErrCodeSourceNotFound)
	ErrFileTooLarge   = internal.NewValidationError("file exceeds the upload limit", internal.ErrCodeOutOfRange)
	ErrMissingFile    = internal.NewValidationFieldError("file", "file is required", internal.ErrCodeValidationFailed)
)

func FromDataModel(row *knowledgeDatamodel.Source) *Source {
	return &Source{
		ID:            row.ID,
		Name:          row.Name,
		Type:          row.Type,
		URL:           row.URL,
		Content:       row.Content,
		ObjectKey:     row.ObjectKey,
		ContentType:   row.ContentType,
		Size:          row.Size,
		Status:        row.Status,
		DocumentCount: row.DocumentCount,
		LastSyncedAt:  row.LastSyncedAt,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

// CountDocuments splits text into documents at blank lines.
func CountDocuments(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	count := 0
	inDoc := false
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "" {
			inDoc = false
			continue
		}
		if !inDoc {
			count++
			inDoc = true
		}
	}
	return count, scanner.Err()
}

func isTextual(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "text/") ||
		strings.Contains(ct, "json") ||
		strings.Contains(ct, "markdown") ||
		strings.Contains(ct, "csv")
}
