package request_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/frahmantamala/uniform-manager/internal/request"
	"github.com/frahmantamala/uniform-manager/internal/staff"
	"github.com/frahmantamala/uniform-manager/internal/stock"
	"github.com/frahmantamala/uniform-manager/internal/transport"
	"github.com/frahmantamala/uniform-manager/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeGuard struct {
	claimed  map[string]bool
	released []string
	err      error
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{claimed: make(map[string]bool)}
}

func (g *fakeGuard) Claim(_ context.Context, scope, key string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	k := scope + ":" + key
	if g.claimed[k] {
		return false, nil
	}
	g.claimed[k] = true
	return true, nil
}

func (g *fakeGuard) Release(_ context.Context, scope, key string) error {
	k := scope + ":" + key
	delete(g.claimed, k)
	g.released = append(g.released, k)
	return nil
}

var _ = Describe("Request Handler", func() {
	var (
		store  *fakeStore
		guard  *fakeGuard
		router *chi.Mux
		member *staff.Staff
		polo   *stock.UniformItem
	)

	BeforeEach(func() {
		store = newFakeStore()
		guard = newFakeGuard()
		cashier := store.addRole("cashier", limit(4), 180)
		member = store.addMember("Citra", cashier)
		polo = store.addItem("Polo Shirt", "M", 20)

		now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
		service := request.NewService(
			store, store, fakeStaff{store}, fakeRoles{store}, fakeStock{store}, store,
			request.Options{LowStockThreshold: 5, Now: func() time.Time { return now }},
			logger.Discard(),
		)
		handler := request.NewHandler(transport.NewBaseHandler(logger.Discard()), service, guard)

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				op := &internal.Operator{Subject: "store-42", Role: internal.OperatorRoleStaff}
				next.ServeHTTP(w, r.WithContext(internal.ContextWithOperator(r.Context(), op)))
			})
		})
		router.Get("/requests", handler.ListRequests)
		router.Post("/requests", handler.CreateRequest)
		router.Get("/requests/{trackingNumber}", handler.GetRequest)
		router.Put("/requests/{trackingNumber}", handler.ChangeRequestStatus)
	})

	do := func(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	createBody := func(qty string) string {
		return fmt.Sprintf(`{"staff_id":%q,"items":[{"uniform_item_id":%q,"quantity":%s}]}`, member.ID, polo.ID, qty)
	}

	errorCode := func(w *httptest.ResponseRecorder) internal.ErrorCode {
		var body struct {
			Error struct {
				Code internal.ErrorCode `json:"code"`
			} `json:"error"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		return body.Error.Code
	}

	Describe("POST /requests", func() {
		It("should create a request", func() {
			w := do(http.MethodPost, "/requests", createBody("2"), nil)

			Expect(w.Code).To(Equal(http.StatusCreated))
			var resp request.RequestResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Request.Status).To(Equal(request.StatusRequested))
			Expect(resp.Request.Items[0].Quantity).To(Equal(int64(2)))
		})

		It("should reject a duplicate submission with the same key", func() {
			headers := map[string]string{request.IdempotencyHeader: "form-1"}

			Expect(do(http.MethodPost, "/requests", createBody("1"), headers).Code).To(Equal(http.StatusCreated))

			w := do(http.MethodPost, "/requests", createBody("1"), headers)
			Expect(w.Code).To(Equal(http.StatusConflict))
			Expect(errorCode(w)).To(Equal(internal.ErrCodeDuplicateSubmission))
			Expect(store.requests).To(HaveLen(1))
		})

		It("should release the key when the request is rejected", func() {
			headers := map[string]string{request.IdempotencyHeader: "form-2"}

			w := do(http.MethodPost, "/requests", createBody("9"), headers)
			Expect(w.Code).To(Equal(http.StatusConflict))
			Expect(errorCode(w)).To(Equal(internal.ErrCodeQuotaExceeded))
			Expect(guard.released).To(ConsistOf("store-42:form-2"))

			Expect(do(http.MethodPost, "/requests", createBody("1"), headers).Code).To(Equal(http.StatusCreated))
		})

		It("should continue without the guard when it is unavailable", func() {
			guard.err = fmt.Errorf("redis: connection refused")
			headers := map[string]string{request.IdempotencyHeader: "form-3"}

			Expect(do(http.MethodPost, "/requests", createBody("1"), headers).Code).To(Equal(http.StatusCreated))
			Expect(do(http.MethodPost, "/requests", createBody("1"), headers).Code).To(Equal(http.StatusCreated))
		})

		It("should return INVALID_QUANTITY for fractional quantities", func() {
			w := do(http.MethodPost, "/requests", createBody("2.5"), nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(errorCode(w)).To(Equal(internal.ErrCodeInvalidQuantity))
		})

		It("should return INVALID_QUANTITY for quantities that overflow int64", func() {
			w := do(http.MethodPost, "/requests", createBody("18446744073709551619"), nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(errorCode(w)).To(Equal(internal.ErrCodeInvalidQuantity))
			Expect(store.requests).To(BeEmpty())
			Expect(store.items[polo.ID].StockOnHand).To(Equal(int64(20)))
		})

		It("should reject malformed bodies", func() {
			w := do(http.MethodPost, "/requests", `{"staff_id":`, nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(errorCode(w)).To(Equal(internal.ErrCodeValidationFailed))
		})
	})

	Describe("GET and PUT /requests/{trackingNumber}", func() {
		var tracking string

		BeforeEach(func() {
			w := do(http.MethodPost, "/requests", createBody("1"), nil)
			Expect(w.Code).To(Equal(http.StatusCreated))
			var resp request.RequestResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			tracking = resp.Request.TrackingNumber
		})

		It("should fetch a request", func() {
			w := do(http.MethodGet, "/requests/"+tracking, "", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("should return 404 for unknown tracking numbers", func() {
			w := do(http.MethodGet, "/requests/UR-000000000000", "", nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(errorCode(w)).To(Equal(internal.ErrCodeRequestNotFound))
		})

		It("should change the status", func() {
			w := do(http.MethodPut, "/requests/"+tracking, `{"status":"ARRIVED"}`, nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp request.RequestResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Request.Status).To(Equal(request.StatusArrived))
		})

		It("should reject unknown statuses", func() {
			w := do(http.MethodPut, "/requests/"+tracking, `{"status":"LOST"}`, nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(errorCode(w)).To(Equal(internal.ErrCodeInvalidRequestStatus))
		})
	})

	Describe("GET /requests", func() {
		It("should report the applied paging", func() {
			w := do(http.MethodGet, "/requests?limit=500&offset=0", "", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp request.RequestsResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Limit).To(Equal(request.MaxListLimit))
			Expect(resp.Requests).To(BeEmpty())
		})

		DescribeTable("should reject bad query parameters",
			func(query string, code internal.ErrorCode) {
				w := do(http.MethodGet, "/requests?"+query, "", nil)
				Expect(w.Code).To(Equal(http.StatusBadRequest))
				Expect(errorCode(w)).To(Equal(code))
			},
			Entry("negative limit", "limit=-1", internal.ErrCodeValidationFailed),
			Entry("non-numeric offset", "offset=abc", internal.ErrCodeValidationFailed),
			Entry("malformed staff id", "staff_id=nope", internal.ErrCodeValidationFailed),
			Entry("unknown status", "status=LOST", internal.ErrCodeInvalidRequestStatus),
		)
	})
})
