package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextUserKey      ctxKey = "user"
	ContextTenantKey    ctxKey = "tenant"
	PermissionAll              = "all"
	DefaultTenantID            = "default"
	TenantHeader               = "X-Tenant-ID"
	tenantHeaderMaxSize        = 64
)

// User is the authenticated principal carried through a request.
type User struct {
	ID          string
	Email       string
	Name        string
	Role        string
	TenantID    string
	Permissions []string
}

// HasPermission reports whether the principal holds permission, honoring the "all" sentinel.
func (u *User) HasPermission(permission string) bool {
	if u == nil {
		return false
	}
	for _, p := range u.Permissions {
		if p == PermissionAll || p == permission {
			return true
		}
	}
	return false
}

func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, user)
}

func UserFromContext(ctx context.Context) (*User, bool) {
	if ctx == nil {
		return nil, false
	}
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok && u != nil
}

func UserIDFromContext(ctx context.Context) string {
	if u, ok := UserFromContext(ctx); ok {
		return u.ID
	}
	return ""
}

func ContextWithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ContextTenantKey, tenantID)
}

// TenantFromContext falls back to the principal's tenant, then to DefaultTenantID.
func TenantFromContext(ctx context.Context) string {
	if ctx != nil {
		if t, ok := ctx.Value(ContextTenantKey).(string); ok && t != "" && len(t) <= tenantHeaderMaxSize {
			return t
		}
		if u, ok := UserFromContext(ctx); ok && u.TenantID != "" {
			return u.TenantID
		}
	}
	return DefaultTenantID
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
