package auth

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/transport"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
)

type ctxKey string

const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok && u != nil
}

// OwnerLookup resolves the user that owns a resource.
type OwnerLookup func(ctx context.Context, resourceID int64) (ownerUserID int64, found bool, err error)

// EmployeeOwner looks up the user account linked to an employee record.
func EmployeeOwner(db *sqlx.DB) OwnerLookup {
	query := db.Rebind("SELECT user_id FROM employees WHERE id = ?")
	return func(ctx context.Context, id int64) (int64, bool, error) {
		var owner sql.NullInt64
		if err := db.GetContext(ctx, &owner, query, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, false, nil
			}
			return 0, false, err
		}
		return owner.Int64, owner.Valid, nil
	}
}

// CanAccessOwned allows the owner of a resource or anyone holding code.action.
func CanAccessOwned(u *User, ownerID int64, code, action string) bool {
	if u == nil {
		return false
	}
	if ownerID != 0 && u.ID == ownerID {
		return true
	}
	return u.Can(code, action)
}

// RequireSelfOrPermission lets users reach their own record under the {param}
// URL parameter, and everyone else only with code.action.
func RequireSelfOrPermission(lookup OwnerLookup, param, code, action string) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(nil)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok {
				base.HandleError(w, internal.ErrInvalidToken)
				return
			}

			id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
			if err != nil {
				base.HandleError(w, internal.NewValidationFieldError(param, "invalid "+param, internal.ErrCodeInvalidRequest))
				return
			}

			if u.Can(code, action) {
				next.ServeHTTP(w, r)
				return
			}

			ownerID, found, err := lookup(r.Context(), id)
			if err != nil {
				base.HandleServiceError(w, r, err)
				return
			}
			if !found || !CanAccessOwned(u, ownerID, code, action) {
				base.HandleError(w, internal.ErrUnauthorizedAccess)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
