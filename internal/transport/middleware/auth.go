package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/frahmantamala/uniform-manager/internal/auth"
	"github.com/frahmantamala/uniform-manager/internal/transport"
	"github.com/frahmantamala/uniform-manager/pkg/logger"
)

// LocalOperator acts on every request when authentication is disabled.
var LocalOperator = &internal.Operator{Subject: "local", Role: internal.OperatorRoleAdmin}

// Authenticate resolves the bearer token into an operator stored on the
// request context. With enabled false every request runs as LocalOperator.
func Authenticate(validator auth.TokenValidator, enabled bool, lg *slog.Logger) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(lg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op := LocalOperator
			if enabled {
				token := base.ExtractTokenFromHeader(r)
				if token == "" {
					base.WriteError(w, internal.ErrUnauthorized)
					return
				}

				var err error
				op, err = validator.ValidateToken(token)
				if err != nil {
					appErr, ok := internal.IsAppError(err)
					if !ok {
						appErr = internal.ErrInvalidToken
					}
					logger.From(r.Context()).Warn("token rejected", "code", appErr.Code, "error", err)
					base.WriteError(w, appErr)
					return
				}
			}

			ctx := internal.ContextWithOperator(r.Context(), op)
			ctx = logger.With(ctx, "operator", op.Subject, "operator_role", op.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
