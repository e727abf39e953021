package succession

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListSections(ctx context.Context, filter SectionFilter) (*SectionsResponse, error)
	GetSection(ctx context.Context, id int64) (*Section, error)
	CreateSection(ctx context.Context, dto CreateSectionDTO) (*Section, error)
	UpdateSection(ctx context.Context, id int64, dto UpdateSectionDTO) (*Section, error)
	MarkReviewed(ctx context.Context, id, reviewerID int64) (*Section, error)
	DeleteSection(ctx context.Context, id int64) error
	Tasks(ctx context.Context) (*TasksResponse, error)
	UpdateTask(ctx context.Context, code string, dto UpdateTaskDTO) (Task, error)
	ResetTask(ctx context.Context, code string) (Task, error)
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

func (h *Handler) ListSections(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.Service.ListSections(r.Context(), SectionFilter{
		FeatureCode: q.Get("feature"),
		ModuleCode:  q.Get("module"),
	})
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetSection(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	sec, err := h.Service.GetSection(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, sec)
}

func (h *Handler) CreateSection(w http.ResponseWriter, r *http.Request) {
	var dto CreateSectionDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleError(w, err)
		return
	}
	sec, err := h.Service.CreateSection(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, sec)
}

func (h *Handler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	var dto UpdateSectionDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleError(w, err)
		return
	}
	sec, err := h.Service.UpdateSection(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, sec)
}

func (h *Handler) MarkReviewed(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	sec, err := h.Service.MarkReviewed(r.Context(), id, internal.UserIDFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, sec)
}

func (h *Handler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	if err := h.Service.DeleteSection(r.Context(), id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Tasks(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Service.Tasks(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var dto UpdateTaskDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleError(w, err)
		return
	}
	t, err := h.Service.UpdateTask(r.Context(), chi.URLParam(r, "code"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) ResetTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.Service.ResetTask(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}
