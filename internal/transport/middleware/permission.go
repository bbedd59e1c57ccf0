package middleware

import (
	"net/http"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/frahmantamala/uniform-manager/internal/transport"
	"github.com/frahmantamala/uniform-manager/pkg/logger"
)

// RequireRoles lets the request through only when the operator holds one of roles.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			base := transport.NewBaseHandler(logger.From(r.Context()))

			op, ok := internal.OperatorFromContext(r.Context())
			if !ok {
				base.WriteError(w, internal.ErrUnauthorized)
				return
			}

			if !op.HasAnyRole(roles...) {
				base.Logger.Warn("access denied: operator lacks required role",
					"operator", op.Subject,
					"operator_role", op.Role,
					"required_roles", roles)
				base.WriteError(w, internal.ErrForbidden.WithDetails(map[string]interface{}{
					"required_roles": roles,
				}))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireManager() func(http.Handler) http.Handler {
	return RequireRoles(internal.OperatorRoleManager, internal.OperatorRoleAdmin)
}

func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRoles(internal.OperatorRoleAdmin)
}
