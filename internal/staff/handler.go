package staff

import (
	"context"
	"net/http"

	"github.com/frahmantamala/uniform-manager/internal/transport"
)

type ServiceAPI interface {
	ListStaff(ctx context.Context) ([]StaffOption, error)
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

func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	members, err := h.Service.ListStaff(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, StaffResponse{Staff: members})
}
