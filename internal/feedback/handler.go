package feedback

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListConsentTypes(ctx context.Context, activeOnly bool) (*ConsentTypesResponse, error)
	GetConsentType(ctx context.Context, code string) (*ConsentType, error)
	CreateConsentType(ctx context.Context, dto CreateConsentTypeDTO) (*ConsentType, error)
	UpdateConsentType(ctx context.Context, code string, dto UpdateConsentTypeDTO) (*ConsentType, error)
	DeleteConsentType(ctx context.Context, code string) error
	Grant(ctx context.Context, employeeID int64, dto ConsentDTO) (*ConsentRecord, error)
	Withdraw(ctx context.Context, employeeID int64, dto ConsentDTO) (*ConsentRecord, error)
	ListRecords(ctx context.Context, filter RecordFilter) (*RecordsResponse, error)
	Status(ctx context.Context, employeeID int64, cycle string) (*ConsentStatus, error)
	ListPolicies(ctx context.Context, code string) (*PoliciesResponse, error)
	CreatePolicy(ctx context.Context, userID int64, dto CreatePolicyDTO) (*Policy, error)
	ActivatePolicy(ctx context.Context, id int64) (*Policy, error)
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

func (h *Handler) ListConsentTypes(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Service.ListConsentTypes(r.Context(), r.URL.Query().Get("all") != "true")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetConsentType(w http.ResponseWriter, r *http.Request) {
	ct, err := h.Service.GetConsentType(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ct)
}

func (h *Handler) CreateConsentType(w http.ResponseWriter, r *http.Request) {
	var dto CreateConsentTypeDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleError(w, err)
		return
	}
	ct, err := h.Service.CreateConsentType(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, ct)
}

func (h *Handler) UpdateConsentType(w http.ResponseWriter, r *http.Request) {
	var dto UpdateConsentTypeDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleError(w, err)
		return
	}
	ct, err := h.Service.UpdateConsentType(r.Context(), chi.URLParam(r, "code"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ct)
}

func (h *Handler) DeleteConsentType(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteConsentType(r.Context(), chi.URLParam(r, "code")); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Grant(w http.ResponseWriter, r *http.Request) {
	h.consent(w, r, h.Service.Grant)
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.consent(w, r, h.Service.Withdraw)
}

func (h *Handler) consent(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64, ConsentDTO) (*ConsentRecord, error)) {
	employeeID, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	var dto ConsentDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleError(w, err)
		return
	}
	rec, err := fn(r.Context(), employeeID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rec)
}

// Status returns the employee's consents for ?cycle=.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	employeeID, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	status, err := h.Service.Status(r.Context(), employeeID, r.URL.Query().Get("cycle"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, status)
}

func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := RecordFilter{ConsentTypeCode: q.Get("consent_type"), Cycle: q.Get("cycle")}
	if raw := q.Get("employee_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.HandleError(w, internal.NewValidationFieldError("employee_id", "employee_id must be a positive integer", internal.ErrCodeInvalidRequest))
			return
		}
		filter.EmployeeID = id
	}
	resp, err := h.Service.ListRecords(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Service.ListPolicies(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var dto CreatePolicyDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleError(w, err)
		return
	}
	p, err := h.Service.CreatePolicy(r.Context(), internal.UserIDFromContext(r.Context()), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) ActivatePolicy(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	p, err := h.Service.ActivatePolicy(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}
