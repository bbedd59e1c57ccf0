package importer

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/frahmantamala/uniform-manager/internal/transport"
)

const maxCSVBytes = 5 << 20

type ServiceAPI interface {
	ImportUniforms(ctx context.Context, r io.Reader) (*Result, error)
	ImportStaff(ctx context.Context, r io.Reader) (*Result, error)
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

func (h *Handler) ImportUniforms(w http.ResponseWriter, r *http.Request) {
	h.importWith(w, r, h.Service.ImportUniforms)
}

func (h *Handler) ImportStaff(w http.ResponseWriter, r *http.Request) {
	h.importWith(w, r, h.Service.ImportStaff)
}

func (h *Handler) importWith(w http.ResponseWriter, r *http.Request, run func(context.Context, io.Reader) (*Result, error)) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCSVBytes))
	if err != nil {
		h.HandleServiceError(w, internal.NewValidationError("failed to read CSV body", internal.ErrCodeValidationFailed).WithCause(err))
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		h.HandleServiceError(w, errEmptyCSV)
		return
	}

	res, err := run(r.Context(), bytes.NewReader(body))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, res)
}
