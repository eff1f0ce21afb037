package shell_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fmastery/admin-console/internal"
	"github.com/fmastery/admin-console/internal/core/events"
	"github.com/fmastery/admin-console/internal/listing"
	"github.com/fmastery/admin-console/internal/shell"
	"github.com/fmastery/admin-console/internal/transport"
	"github.com/fmastery/admin-console/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestShell(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Shell Suite")
}

type gate struct{ ok atomic.Bool }

func (g *gate) Authenticated() bool { return g.ok.Load() }

type collection struct {
	name    string
	fail    bool
	err     error
	loads   int
	resets  int
	closes  int
	loadLog *[]string
}

func (c *collection) Name() string { return c.name }

func (c *collection) Load(context.Context) error {
	c.loads++
	if c.loadLog != nil {
		*c.loadLog = append(*c.loadLog, c.name)
	}
	if c.err != nil {
		return c.err
	}
	if c.fail {
		return errors.New("boom")
	}
	return nil
}

func (c *collection) Reset() { c.resets++ }
func (c *collection) Close() { c.closes++ }

type screen []*collection

func (s screen) Collections() []listing.Collection {
	out := make([]listing.Collection, len(s))
	for i, c := range s {
		out[i] = c
	}
	return out
}

var _ = Describe("Shell", func() {
	var (
		ctx    context.Context
		g      *gate
		bus    *events.EventBus
		sh     *shell.Shell
		log    []string
		stats  *collection
		users  *collection
		videos *collection
	)

	BeforeEach(func() {
		ctx = context.Background()
		g = &gate{}
		g.ok.Store(true)
		bus = events.NewEventBus(logger.Discard())
		sh = shell.New(g, bus, logger.Discard())
		log = nil
		stats = &collection{name: "stats", loadLog: &log}
		users = &collection{name: "users", loadLog: &log}
		videos = &collection{name: "videos", loadLog: &log}
		sh.Register(shell.ViewDashboard, screen{stats, users})
		sh.Register(shell.ViewVideos, screen{videos})
	})

	It("should start on the dashboard", func() {
		Expect(sh.Active()).To(Equal(shell.ViewDashboard))
	})

	It("should load every collection of the selected view in order", func() {
		Expect(sh.Select(ctx, "dashboard")).To(Succeed())
		Expect(log).To(Equal([]string{"stats", "users"}))

		Expect(sh.Select(ctx, "dashboard")).To(Succeed())
		Expect(stats.loads).To(Equal(2))
	})

	It("should abandon the previous view's loads when switching", func() {
		Expect(sh.Select(ctx, "dashboard")).To(Succeed())
		Expect(sh.Select(ctx, "videos")).To(Succeed())
		Expect(sh.Active()).To(Equal(shell.ViewVideos))
		Expect(stats.closes).To(Equal(1))
		Expect(users.closes).To(Equal(1))
		Expect(videos.loads).To(Equal(1))
	})

	It("should refuse to navigate while anonymous", func() {
		g.ok.Store(false)
		err := sh.Select(ctx, "videos")
		Expect(err).To(MatchError(internal.ErrLoginRequired))
		Expect(sh.Active()).To(Equal(shell.ViewDashboard))
		Expect(videos.loads).To(BeZero())
	})

	It("should reject unknown views", func() {
		err := sh.Select(ctx, "settings")
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidView))
		Expect(sh.Active()).To(Equal(shell.ViewDashboard))
	})

	It("should stay on a view whose load failed", func() {
		videos.fail = true
		Expect(sh.Select(ctx, "videos")).NotTo(Succeed())
		Expect(sh.Active()).To(Equal(shell.ViewVideos))
	})

	It("should stop mounting when the session ends mid-load", func() {
		stats.err = internal.NewUnauthorizedError("Session expired", internal.ErrCodeSessionExpired)

		err := sh.Select(ctx, "dashboard")
		Expect(internal.IsType(err, internal.ErrorTypeUnauthorized)).To(BeTrue())
		Expect(log).To(Equal([]string{"stats"}))
		Expect(users.loads).To(BeZero())
	})

	It("should allow views without a registered screen", func() {
		Expect(sh.Select(ctx, "tickets")).To(Succeed())
		Expect(sh.Active()).To(Equal(shell.ViewTickets))
	})

	DescribeTable("resetting when the session ends",
		func(e events.Event) {
			Expect(sh.Select(ctx, "videos")).To(Succeed())
			Expect(bus.PublishSync(ctx, e)).To(Succeed())

			Expect(sh.Active()).To(Equal(shell.ViewDashboard))
			Expect(stats.resets).To(Equal(1))
			Expect(users.resets).To(Equal(1))
			Expect(videos.resets).To(Equal(1))
		},
		Entry("on logout", events.NewLoggedOutEvent("ops@example.com")),
		Entry("on expiry", events.NewSessionExpiredEvent()),
	)
})

var _ = Describe("ParseView", func() {
	It("should accept every sidebar entry", func() {
		for _, v := range shell.Views {
			parsed, err := shell.ParseView(string(v))
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(v))
		}
	})
})

var _ = Describe("Handler", func() {
	It("should mount the requested view", func() {
		g := &gate{}
		g.ok.Store(true)
		sh := shell.New(g, nil, logger.Discard())
		videos := &collection{name: "videos"}
		sh.Register(shell.ViewVideos, screen{videos})

		r := chi.NewRouter()
		h := shell.NewHandler(transport.NewBaseHandler(logger.Discard()), sh)
		r.Get("/views", h.List)
		r.Post("/views/{view}", h.Select)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/views/videos", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"active":"videos"`))
		Expect(videos.loads).To(Equal(1))

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/views/nowhere", nil))
		Expect(rec.Code).To(Equal(http.StatusBadRequest))

		g.ok.Store(false)
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/views/tickets", nil))
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})
})
