package middleware

import (
	"net/http"

	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/pkg/logger"
)

// UserContext tags request logs with the authenticated user and resolves the tenant.
// X-Tenant-ID only switches tenants for users bound to none or holding "all".
func UserContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user, ok := internal.UserFromContext(ctx)
		if ok {
			ctx = logger.With(ctx, "user_id", user.ID, "role", user.Role)
		}
		if tenant := r.Header.Get(internal.TenantHeader); tenant != "" && ok && mayActAs(user, tenant) {
			ctx = internal.ContextWithTenant(ctx, tenant)
		}
		ctx = logger.With(ctx, "tenant_id", internal.TenantFromContext(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func mayActAs(user *internal.User, tenant string) bool {
	return user.TenantID == "" || user.TenantID == tenant || user.HasPermission(internal.PermissionAll)
}
