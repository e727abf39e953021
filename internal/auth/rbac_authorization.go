package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/transport"
)

// RBACAuthorization gates routes on the caller's flattened permission keys.
type RBACAuthorization struct {
	*transport.BaseHandler
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{BaseHandler: transport.NewBaseHandler(logger)}
}

// Require allows the request when the user holds action on code or any parent code.
func (ra *RBACAuthorization) Require(code, action string) func(http.Handler) http.Handler {
	return ra.check(func(u *User) bool { return u.Can(code, action) }, code+"."+action)
}

// RequireAny allows the request when the user holds any of the actions on code.
func (ra *RBACAuthorization) RequireAny(code string, actions ...string) func(http.Handler) http.Handler {
	return ra.check(func(u *User) bool {
		return u.IsAdmin() || HasAnyGrant(u.Permissions, code, actions...)
	}, code)
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.check(func(u *User) bool { return u.IsAdmin() }, AdminRole)
}

func (ra *RBACAuthorization) check(allowed func(*User) bool, required string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				ra.HandleError(w, internal.ErrInvalidToken)
				return
			}

			if !allowed(user) {
				ra.Logger.WarnContext(r.Context(), "access denied: insufficient permissions",
					"user_id", user.ID,
					"required", required)
				ra.HandleError(w, internal.ErrUnauthorizedAccess)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
