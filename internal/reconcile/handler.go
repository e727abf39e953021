package reconcile

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hr-management/internal/registry"
	"github.com/frahmantamala/hr-management/internal/transport"
)

type ServiceAPI interface {
	Report(ctx context.Context) (*Report, error)
	Sync(ctx context.Context) (*SyncResult, error)
}

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	Registry *registry.Holder
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, holder *registry.Holder) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service, Registry: holder}
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Report(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.Sync(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

// Scan exposes the flattened registry.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Registry.Get().Scan())
}
