package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/fmastery/admin-console/internal/apiclient"
	"github.com/fmastery/admin-console/internal/apiclient/apitest"
	"github.com/fmastery/admin-console/internal/auth"
	"github.com/fmastery/admin-console/internal/core/events"
	"github.com/fmastery/admin-console/internal/listing"
	"github.com/fmastery/admin-console/internal/session"
	"github.com/fmastery/admin-console/internal/shell"
	"github.com/fmastery/admin-console/internal/transport"
	"github.com/fmastery/admin-console/internal/transport/openapi"
	"github.com/fmastery/admin-console/internal/transport/rest"
	"github.com/fmastery/admin-console/internal/user"
	"github.com/fmastery/admin-console/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type usersScreen struct{ users listing.Collection }

func (s usersScreen) Collections() []listing.Collection { return []listing.Collection{s.users} }

var _ = Describe("Router", func() {
	var (
		backend *apitest.Server
		flow    *auth.Flow
		router  *chi.Mux
	)

	BeforeEach(func() {
		ctx := context.Background()
		backend = apitest.NewServer()
		backend.AddOperator(apitest.Operator{
			Email:    "ops@example.com",
			Password: "hunter22",
			Profile:  map[string]interface{}{"id": 9, "FullName": "Ops Person", "Email": "ops@example.com"},
		})
		backend.JSON(http.MethodGet, user.AllUsersPath, func(*http.Request) interface{} {
			return []map[string]interface{}{
				{"id": 1, "name": "Bea", "email": "bea@example.com", "status": "active"},
				{"id": 2, "name": "Al", "email": "al@example.com", "status": "banned"},
			}
		})

		lg := logger.Discard()
		store := session.NewStore(session.NewMemoryBackend(), lg)
		client, err := apiclient.New(backend.URL, store, apiclient.WithLogger(lg))
		Expect(err).NotTo(HaveOccurred())
		bus := events.NewEventBus(lg)
		flow = auth.NewFlow(client, bus, lg)
		flow.Restore(ctx)

		toasts := listing.NewToastLog(10, lg)
		users := listing.NewController(user.NewResource(user.NewService(client).FetchAll), toasts, lg)
		shell.New(flow, bus, lg).Register(shell.ViewUsers, usersScreen{users})

		validator, err := openapi.NewValidator(ctx, lg)
		Expect(err).NotTo(HaveOccurred())

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Handlers{
			Health: rest.NewHealthHandler(store, backend.URL),
			Auth:   auth.NewHandler(flow),
			Users:  user.NewHandler(transport.NewBaseHandler(lg), users),
		}, rest.RouterConfig{Gate: flow, Validator: validator}, lg)
	})

	AfterEach(func() {
		backend.Close()
	})

	serve := func(method, target, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body != "" {
			req = httptest.NewRequest(method, target, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(method, target, nil)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	errorCode := func(rec *httptest.ResponseRecorder) string {
		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		return body.Error.Code
	}

	It("should reject protected routes while anonymous", func() {
		rec := serve(http.MethodGet, "/api/v1/users", "")
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(errorCode(rec)).To(Equal("LOGIN_REQUIRED"))
		Expect(backend.Calls(http.MethodGet, user.AllUsersPath)).To(BeZero())
	})

	It("should serve the users view after login", func() {
		rec := serve(http.MethodPost, "/api/v1/session/login", `{"email":"ops@example.com","password":"hunter22"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"state":"authenticated"`))

		rec = serve(http.MethodGet, "/api/v1/users?sort=name", "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var view listing.View[user.User]
		Expect(json.Unmarshal(rec.Body.Bytes(), &view)).To(Succeed())
		Expect(view.Total).To(Equal(2))
		Expect(view.Rows[0].Item.Name).To(Equal("Al"))
		Expect(rec.Header().Get("X-Request-ID")).NotTo(BeEmpty())
	})

	It("should answer 401 when the session expires during a list load", func() {
		rec := serve(http.MethodPost, "/api/v1/session/login", `{"email":"ops@example.com","password":"hunter22"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(serve(http.MethodGet, "/api/v1/users", "").Code).To(Equal(http.StatusOK))

		backend.ExpireAccessTokens()
		backend.RevokeRefreshTokens()

		rec = serve(http.MethodGet, "/api/v1/users?refresh=true", "")
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(errorCode(rec)).To(Equal("SESSION_EXPIRED"))
		Expect(flow.Authenticated()).To(BeFalse())

		rec = serve(http.MethodGet, "/api/v1/users", "")
		Expect(errorCode(rec)).To(Equal("LOGIN_REQUIRED"))
	})

	It("should validate request bodies against the document", func() {
		rec := serve(http.MethodPost, "/api/v1/session/login", `{"email":"ops@example.com"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(rec)).To(Equal("VALIDATION_FAILED"))
		Expect(backend.Calls(http.MethodPost, auth.LoginPath)).To(BeZero())
	})

	It("should surface the backend's login message", func() {
		rec := serve(http.MethodPost, "/api/v1/session/login", `{"email":"ops@example.com","password":"wrong-one"}`)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(rec.Body.String()).To(ContainSubstring("Invalid email or password"))
	})

	It("should report both health components", func() {
		rec := serve(http.MethodGet, "/api/v1/health", "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var health rest.HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &health)).To(Succeed())
		Expect(health.Status).To(Equal(rest.HealthHealthy))
		Expect(health.Components).To(HaveKey("session"))
		Expect(health.Components).To(HaveKey("upstream"))
	})

	It("should answer unknown routes with a JSON not found", func() {
		rec := serve(http.MethodGet, "/api/v1/nope", "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(rec.Header().Get("Content-Type")).To(ContainSubstring("application/json"))
	})
})
