package stock

import (
	"context"
	"net/http"

	"github.com/frahmantamala/uniform-manager/internal/transport"
)

type ServiceAPI interface {
	ListUniforms(ctx context.Context) ([]UniformItemOption, error)
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

func (h *Handler) ListUniforms(w http.ResponseWriter, r *http.Request) {
	uniforms, err := h.Service.ListUniforms(r.Context())
	if err != nil {
		h.Logger.Error("ListUniforms: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, UniformsResponse{Uniforms: uniforms})
}
