package leave

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/transport"
)

type ServiceAPI interface {
	ListTypes(ctx context.Context, activeOnly bool) (*LeaveTypesResponse, error)
	CreateType(ctx context.Context, dto CreateLeaveTypeDTO) (*LeaveType, error)
	Balances(ctx context.Context, employeeID int64, year int) (*BalancesResponse, error)
	Adjust(ctx context.Context, employeeID int64, dto AdjustDTO) (*Balance, error)
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

func (h *Handler) ListTypes(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Service.ListTypes(r.Context(), r.URL.Query().Get("all") != "true")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateType(w http.ResponseWriter, r *http.Request) {
	var dto CreateLeaveTypeDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleError(w, err)
		return
	}
	t, err := h.Service.CreateType(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) Balances(w http.ResponseWriter, r *http.Request) {
	employeeID, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	var year int
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 2000 || y > 2100 {
			h.HandleError(w, internal.NewValidationFieldError("year", "year must be between 2000 and 2100", internal.ErrCodeInvalidRequest))
			return
		}
		year = y
	}

	resp, err := h.Service.Balances(r.Context(), employeeID, year)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Adjust(w http.ResponseWriter, r *http.Request) {
	employeeID, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	var dto AdjustDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleError(w, err)
		return
	}
	b, err := h.Service.Adjust(r.Context(), employeeID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, b)
}
