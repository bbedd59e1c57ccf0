package request

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/frahmantamala/uniform-manager/internal/transport"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

const IdempotencyHeader = "Idempotency-Key"

type ServiceAPI interface {
	CreateRequest(ctx context.Context, dto CreateRequestDTO) (*RequestView, error)
	ChangeRequestStatus(ctx context.Context, trackingNumber, status string) (*RequestView, error)
	GetRequestByTrackingNumber(ctx context.Context, trackingNumber string) (*RequestView, error)
	ListRequests(ctx context.Context, filter ListFilter) ([]*RequestView, ListFilter, error)
}

// SubmissionGuard claims Idempotency-Key values so a form submitted twice
// creates one request.
type SubmissionGuard interface {
	Claim(ctx context.Context, scope, key string) (bool, error)
	Release(ctx context.Context, scope, key string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Guard   SubmissionGuard
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, guard SubmissionGuard) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Guard:       guard,
	}
}

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var dto CreateRequestDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	ctx := r.Context()
	key := r.Header.Get(IdempotencyHeader)
	scope := submissionScope(ctx)
	claimed := false
	if key != "" && h.Guard != nil {
		ok, err := h.Guard.Claim(ctx, scope, key)
		switch {
		case err != nil:
			h.Logger.Warn("idempotency guard unavailable, continuing without it", "error", err)
		case !ok:
			h.HandleServiceError(w, internal.ErrDuplicateSubmission.WithDetails(map[string]interface{}{
				"idempotency_key": key,
			}))
			return
		default:
			claimed = true
		}
	}

	view, err := h.Service.CreateRequest(ctx, dto)
	if err != nil {
		if claimed {
			if relErr := h.Guard.Release(ctx, scope, key); relErr != nil {
				h.Logger.Warn("failed to release idempotency key", "error", relErr)
			}
		}
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, RequestResponse{Request: view})
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.GetRequestByTrackingNumber(r.Context(), chi.URLParam(r, "trackingNumber"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RequestResponse{Request: view})
}

func (h *Handler) ChangeRequestStatus(w http.ResponseWriter, r *http.Request) {
	var dto ChangeStatusDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	view, err := h.Service.ChangeRequestStatus(r.Context(), chi.URLParam(r, "trackingNumber"), dto.Status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RequestResponse{Request: view})
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{Status: q.Get("status")}

	if raw := q.Get("staff_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.WriteError(w, internal.NewValidationFieldError("staff_id", "staff_id must be a UUID", internal.ErrCodeValidationFailed))
			return
		}
		filter.StaffID = &id
	}

	var ok bool
	if filter.Limit, ok = intParam(q.Get("limit")); !ok {
		h.WriteError(w, internal.NewValidationFieldError("limit", "limit must be a non-negative integer", internal.ErrCodeValidationFailed))
		return
	}
	if filter.Offset, ok = intParam(q.Get("offset")); !ok {
		h.WriteError(w, internal.NewValidationFieldError("offset", "offset must be a non-negative integer", internal.ErrCodeValidationFailed))
		return
	}

	views, applied, err := h.Service.ListRequests(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RequestsResponse{
		Requests: views,
		Limit:    applied.Limit,
		Offset:   applied.Offset,
	})
}

func submissionScope(ctx context.Context) string {
	if op, ok := internal.OperatorFromContext(ctx); ok {
		return op.Subject
	}
	return "anonymous"
}

func intParam(raw string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
