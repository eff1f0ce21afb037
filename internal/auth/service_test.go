package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/fmastery/admin-console/internal"
	"github.com/fmastery/admin-console/internal/apiclient"
	"github.com/fmastery/admin-console/internal/apiclient/apitest"
	"github.com/fmastery/admin-console/internal/auth"
	"github.com/fmastery/admin-console/internal/core/events"
	"github.com/fmastery/admin-console/internal/session"
	"github.com/fmastery/admin-console/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e.EventType())
	return nil
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

var _ = Describe("Flow", func() {
	var (
		ctx     context.Context
		backend *apitest.Server
		store   *session.Store
		client  *apiclient.Client
		bus     *events.EventBus
		rec     *recorder
		flow    *auth.Flow
	)

	BeforeEach(func() {
		ctx = context.Background()
		backend = apitest.NewServer()
		backend.AddOperator(apitest.Operator{
			Email:    "ops@example.com",
			Password: "hunter22",
			Profile:  map[string]interface{}{"id": 9, "FullName": "Ops Person", "Email": "ops@example.com", "role": "admin"},
		})
		backend.JSON(http.MethodGet, "/users/dashboard/all-users", func(*http.Request) interface{} {
			return []interface{}{}
		})

		store = session.NewStore(session.NewMemoryBackend(), logger.Discard())
		var err error
		client, err = apiclient.New(backend.URL, store, apiclient.WithLogger(logger.Discard()))
		Expect(err).NotTo(HaveOccurred())

		bus = events.NewEventBus(logger.Discard())
		rec = &recorder{}
		for _, t := range []string{events.EventTypeLoggedIn, events.EventTypeLoggedOut, events.EventTypeSessionExpired} {
			bus.Subscribe(t, rec.handle)
		}
		flow = auth.NewFlow(client, bus, logger.Discard())
	})

	AfterEach(func() {
		backend.Close()
	})

	It("should start in checking", func() {
		Expect(flow.State()).To(Equal(auth.StateChecking))
	})

	Describe("Restore", func() {
		It("should be anonymous with an empty store", func() {
			Expect(flow.Restore(ctx)).To(Equal(auth.StateAnonymous))
			Expect(flow.Profile()).To(BeNil())
		})

		It("should be authenticated with the cached profile when a token is stored", func() {
			Expect(store.Set(ctx, session.Tokens{AccessToken: "A", RefreshToken: "R"}, json.RawMessage(`{"id":"u1","name":"Cached"}`))).To(Succeed())

			Expect(flow.Restore(ctx)).To(Equal(auth.StateAuthenticated))
			Expect(flow.Profile().Name).To(Equal("Cached"))
			Expect(backend.Calls(http.MethodPost, auth.LoginPath)).To(BeZero())
		})
	})

	Describe("Login", func() {
		BeforeEach(func() {
			flow.Restore(ctx)
		})

		It("should persist tokens and the profile on success", func() {
			profile, err := flow.Login(ctx, auth.LoginDTO{Email: "ops@example.com", Password: "hunter22"})
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.Name).To(Equal("Ops Person"))
			Expect(profile.ID.String()).To(Equal("9"))

			sess := store.Get(ctx)
			Expect(sess.AccessToken).NotTo(BeEmpty())
			Expect(sess.RefreshToken).NotTo(BeEmpty())
			Expect(sess.Profile).NotTo(BeNil())
			Expect(flow.Authenticated()).To(BeTrue())
			Eventually(rec.seen).Should(ContainElement(events.EventTypeLoggedIn))
		})

		It("should send the capitalised credential keys", func() {
			_, err := flow.Login(ctx, auth.LoginDTO{Email: " ops@example.com ", Password: "hunter22"})
			Expect(err).NotTo(HaveOccurred())

			bodies := backend.Bodies(http.MethodPost, auth.LoginPath)
			Expect(bodies).To(HaveLen(1))
			Expect(bodies[0]).To(MatchJSON(`{"Email":"ops@example.com","Password":"hunter22"}`))
		})

		It("should surface the server message and leave the store untouched", func() {
			_, err := flow.Login(ctx, auth.LoginDTO{Email: "ops@example.com", Password: "wrong-password"})
			Expect(err).To(HaveOccurred())
			Expect(internal.UserMessage(err, "")).To(Equal("Invalid email or password"))

			Expect(store.Get(ctx)).To(Equal(session.Session{}))
			Expect(flow.State()).To(Equal(auth.StateAnonymous))
			Expect(backend.RefreshCalls()).To(BeZero())
		})

		It("should validate locally before calling the server", func() {
			_, err := flow.Login(ctx, auth.LoginDTO{Email: "not-an-email", Password: "123"})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
			Expect(internal.UserMessage(err, "")).To(Equal("Invalid email address; Password must be at least 6 characters"))
			Expect(backend.Calls(http.MethodPost, auth.LoginPath)).To(BeZero())
		})

		It("should report a generic message when the server is unreachable", func() {
			backend.Close()
			_, err := flow.Login(ctx, auth.LoginDTO{Email: "ops@example.com", Password: "hunter22"})
			Expect(internal.UserMessage(err, "")).To(Equal("An error occurred during login"))
		})
	})

	Describe("Logout", func() {
		It("should clear the store and notify subscribers", func() {
			_, err := flow.Login(ctx, auth.LoginDTO{Email: "ops@example.com", Password: "hunter22"})
			Expect(err).NotTo(HaveOccurred())

			Expect(flow.Logout(ctx)).To(Succeed())
			Expect(store.IsPresent(ctx)).To(BeFalse())
			Expect(flow.State()).To(Equal(auth.StateAnonymous))
			Expect(flow.Profile()).To(BeNil())
			Expect(rec.seen()).To(ContainElement(events.EventTypeLoggedOut))
		})

		It("should be harmless when already anonymous", func() {
			flow.Restore(ctx)
			Expect(flow.Logout(ctx)).To(Succeed())
			Expect(flow.State()).To(Equal(auth.StateAnonymous))
		})
	})

	Context("when the refresh token is rejected", func() {
		It("should fall back to anonymous and announce the expiry", func() {
			_, err := flow.Login(ctx, auth.LoginDTO{Email: "ops@example.com", Password: "hunter22"})
			Expect(err).NotTo(HaveOccurred())

			backend.ExpireAccessTokens()
			backend.RevokeRefreshTokens()

			_, err = apiclient.Get[[]interface{}](ctx, client, "/users/dashboard/all-users", "Failed to fetch users")
			Expect(internal.IsType(err, internal.ErrorTypeUnauthorized)).To(BeTrue())

			Expect(flow.State()).To(Equal(auth.StateAnonymous))
			Expect(store.IsPresent(ctx)).To(BeFalse())
			Expect(rec.seen()).To(ContainElement(events.EventTypeSessionExpired))
		})
	})
})

var _ = Describe("Profile", func() {
	It("should read the alternate field spellings", func() {
		p := auth.ParseProfile(json.RawMessage(`{"_id":"abc","userName":"ops","Email":"OPS@x.io","Role":"admin"}`))
		Expect(p).NotTo(BeNil())
		Expect(p.ID.String()).To(Equal("abc"))
		Expect(p.Name).To(Equal("ops"))
		Expect(p.Email).To(Equal("OPS@x.io"))
		Expect(p.Role).To(Equal("admin"))
	})

	It("should ignore null and malformed profiles", func() {
		Expect(auth.ParseProfile(json.RawMessage(`null`))).To(BeNil())
		Expect(auth.ParseProfile(json.RawMessage(`[`))).To(BeNil())
	})

	It("should fall back to the email for display", func() {
		Expect((&auth.Profile{Email: "a@b.co"}).DisplayName()).To(Equal("a@b.co"))
		var none *auth.Profile
		Expect(none.DisplayName()).To(BeEmpty())
	})
})
