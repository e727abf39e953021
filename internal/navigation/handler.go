package navigation

import (
	"net/http"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	"github.com/frahmantamala/hr-management/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Resolver *Resolver
}

func NewHandler(baseHandler *transport.BaseHandler, resolver *Resolver) *Handler {
	return &Handler{BaseHandler: baseHandler, Resolver: resolver}
}

// Resolve handles GET /navigation/resolve?code=
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	res, err := h.Resolver.Resolve(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}

// Redirect handles GET /navigation/redirect?path=
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		h.HandleError(w, internal.NewValidationFieldError("path", "path is required", internal.ErrCodeInvalidRoute))
		return
	}
	res, err := h.Resolver.Redirect(r.Context(), path)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Menu(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleError(w, internal.ErrInvalidToken)
		return
	}
	menu, err := h.Resolver.Menu(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"modules": menu})
}
