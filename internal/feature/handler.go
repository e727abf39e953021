package feature

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hr-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, activeOnly bool) ([]*Feature, error)
	GetByID(ctx context.Context, id int64) (*Feature, error)
	Create(ctx context.Context, dto CreateFeatureDTO) (*Feature, error)
	Update(ctx context.Context, id int64, dto UpdateFeatureDTO) (*Feature, error)
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// List returns the catalog; ?active=true hides deactivated rows.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	features, err := h.Service.List(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, FeaturesResponse{Features: features, Total: len(features)})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	f, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, f)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateFeatureDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleError(w, err)
		return
	}
	f, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, f)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	var dto UpdateFeatureDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleError(w, err)
		return
	}
	f, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, f)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
