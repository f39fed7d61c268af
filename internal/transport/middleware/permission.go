package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/internal/transport"
)

// RequirePermission passes when the user holds any of permissions, or "all".
func RequirePermission(logger *slog.Logger, permissions ...string) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := internal.UserFromContext(r.Context())
			if !ok {
				base.HandleServiceError(w, internal.NewUnauthorizedError("Authentication required", internal.ErrCodeInvalidToken))
				return
			}

			for _, p := range permissions {
				if user.HasPermission(p) {
					next.ServeHTTP(w, r)
					return
				}
			}

			base.Logger.WarnContext(r.Context(), "access denied: user lacks required permissions",
				"user_id", user.ID,
				"required_permissions", permissions,
				"user_permissions", user.Permissions)
			base.HandleServiceError(w, internal.ErrForbidden)
		})
	}
}
