package role_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/frahmantamala/uniform-manager/internal/role"
	"github.com/frahmantamala/uniform-manager/internal/staff"
	"github.com/frahmantamala/uniform-manager/internal/transport"
	"github.com/frahmantamala/uniform-manager/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Role Handler", func() {
	var (
		roles   *MockRoleRepository
		members *MockStaffStore
		router  *chi.Mux
		cashier *role.Role
	)

	BeforeEach(func() {
		roles = NewMockRoleRepository()
		members = NewMockStaffStore()
		cashier = &role.Role{ID: uuid.New(), Name: "cashier", UniformLimit: ptr(4), CooldownDays: 180}
		roles.roles[cashier.ID] = cashier

		service := role.NewService(roles, members, members, &MockTx{store: members}, nil, nil, logger.Discard())
		handler := role.NewHandler(transport.NewBaseHandler(logger.Discard()), service)

		router = chi.NewRouter()
		router.Get("/roles", handler.ListRoles)
		router.Patch("/roles/{id}", handler.UpdateRolePolicy)
	})

	patch := func(id, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, "/roles/"+id, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
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

	It("should list roles", func() {
		req := httptest.NewRequest(http.MethodGet, "/roles", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp role.RolesResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Roles).To(HaveLen(1))
	})

	It("should switch a role to unlimited on an explicit null", func() {
		w := patch(cashier.ID.String(), `{"uniform_limit": null}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp role.UpdateRolePolicyResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Role.UniformLimit).To(BeNil())
		Expect(resp.Role.CooldownDays).To(Equal(int64(180)))
	})

	It("should keep the limit when the field is absent", func() {
		w := patch(cashier.ID.String(), `{"cooldown_days": 30}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp role.UpdateRolePolicyResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(*resp.Role.UniformLimit).To(Equal(int64(4)))
		Expect(resp.Role.CooldownDays).To(Equal(int64(30)))
	})

	It("should reconcile holders through the endpoint", func() {
		opened := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
		holder := &staff.Staff{ID: uuid.New(), RoleID: cashier.ID, LastRequestDate: &opened}
		members.members[holder.ID] = holder
		members.usage[holder.ID] = 2

		w := patch(cashier.ID.String(), `{"uniform_limit": 2}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(members.members[holder.ID].IsCooldown).To(BeTrue())
	})

	It("should reject negative policies", func() {
		w := patch(cashier.ID.String(), `{"cooldown_days": -1}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(w)).To(Equal(internal.ErrCodeInvalidRolePolicy))
	})

	It("should reject an empty body", func() {
		w := patch(cashier.ID.String(), `{}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(w)).To(Equal(internal.ErrCodeInvalidRolePolicy))
	})

	It("should reject unknown fields", func() {
		w := patch(cashier.ID.String(), `{"limit": 3}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(w)).To(Equal(internal.ErrCodeValidationFailed))
	})

	It("should reject malformed role ids", func() {
		w := patch("not-a-uuid", `{"uniform_limit": 1}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should return 404 for unknown roles", func() {
		w := patch(uuid.NewString(), `{"uniform_limit": 1}`)
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(errorCode(w)).To(Equal(internal.ErrCodeRoleNotFound))
	})
})
