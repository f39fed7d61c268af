package tenant

import (
	"strings"
	"time"

	"github.com/ettle/strcase"
	"github.com/frahmantamala/chathub/internal"
	tenantDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/tenant"
)

const (
	PlanStarter    = "starter"
	PlanGrowth     = "growth"
	PlanEnterprise = "enterprise"

	StatusActive    = "active"
	StatusSuspended = "suspended"
)

type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Plan      string    `json:"plan"`
	Status    string    `json:"status"`
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrTenantNotFound = internal.NewNotFoundError("tenant not found", internal.ErrCodeTenantNotFound)
	ErrSlugTaken      = internal.NewConflictError("a tenant with this slug already exists", internal.ErrCodeDuplicate)
	ErrInvalidSlug    = internal.NewValidationFieldError("slug", "slug must contain letters or digits", internal.ErrCodeInvalidValue)
)

// Slugify derives a URL-safe kebab-case slug from a name.
func Slugify(name string) string {
	kebab := strcase.ToKebab(strings.TrimSpace(name))

	var b strings.Builder
	dash := false
	for _, r := range kebab {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func FromDataModel(row *tenantDatamodel.Tenant) *Tenant {
	return &Tenant{
		ID:        row.ID,
		Name:      row.Name,
		Slug:      row.Slug,
		Plan:      row.Plan,
		Status:    row.Status,
		Domain:    row.Domain,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
