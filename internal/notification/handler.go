package notification

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) (*NotificationsResponse, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	CreateAccessRequest(ctx context.Context, requesterID int64, dto CreateAccessRequestDTO) (*AccessRequest, error)
	ListAccessRequests(ctx context.Context, status string, requesterID int64) (*AccessRequestsResponse, error)
	PendingCount(ctx context.Context) (int64, error)
	Approve(ctx context.Context, id, reviewerID int64, dto DecisionDTO) (*AccessRequest, error)
	Deny(ctx context.Context, id, reviewerID int64, dto DecisionDTO) (*AccessRequest, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Hub     *Hub
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, hub *Hub) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Hub:         hub,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)
	unreadOnly := r.URL.Query().Get("unread") == "true"
	resp, err := h.Service.List(r.Context(), internal.UserIDFromContext(r.Context()), unreadOnly, limit, offset)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.Service.UnreadCount(r.Context(), internal.UserIDFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CountResponse{Count: n})
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	if err := h.Service.MarkRead(r.Context(), internal.UserIDFromContext(r.Context()), id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.Service.MarkAllRead(r.Context(), internal.UserIDFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CountResponse{Count: n})
}

func (h *Handler) CreateAccessRequest(w http.ResponseWriter, r *http.Request) {
	var dto CreateAccessRequestDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleError(w, err)
		return
	}
	req, err := h.Service.CreateAccessRequest(r.Context(), internal.UserIDFromContext(r.Context()), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, req)
}

// ListAccessRequests returns every request, optionally filtered by ?status=.
func (h *Handler) ListAccessRequests(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Service.ListAccessRequests(r.Context(), r.URL.Query().Get("status"), 0)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) MyAccessRequests(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Service.ListAccessRequests(r.Context(), r.URL.Query().Get("status"), internal.UserIDFromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) PendingCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.Service.PendingCount(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CountResponse{Count: n})
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Approve)
}

func (h *Handler) Deny(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Deny)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64, int64, DecisionDTO) (*AccessRequest, error)) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	var dto DecisionDTO
	if r.ContentLength != 0 {
		if err := h.DecodeJSON(w, r, &dto); err != nil {
			h.HandleError(w, err)
			return
		}
	}
	req, err := fn(r.Context(), id, internal.UserIDFromContext(r.Context()), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, req)
}

// Realtime upgrades to the websocket change channel.
func (h *Handler) Realtime(w http.ResponseWriter, r *http.Request) {
	h.Hub.Serve(w, r, internal.UserIDFromContext(r.Context()))
}
