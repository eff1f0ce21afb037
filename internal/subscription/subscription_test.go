package subscription_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fmastery/admin-console/internal/apiclient/apitest"
	"github.com/fmastery/admin-console/internal/listing"
	"github.com/fmastery/admin-console/internal/subscription"
	"github.com/fmastery/admin-console/internal/transport"
	"github.com/fmastery/admin-console/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSubscription(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Subscription Suite")
}

var _ = Describe("Subscriptions", func() {
	var (
		ctx     context.Context
		backend *apitest.Server
		ctrl    *listing.Controller[subscription.Subscription]
	)

	BeforeEach(func() {
		ctx = context.Background()
		backend = apitest.NewServer()
		backend.JSON(http.MethodGet, subscription.StatusPath, func(*http.Request) interface{} {
			return []map[string]interface{}{
				{"id": 1, "name": "Henry", "email": "harrid@example.com", "subscriptionType": "Monthly", "status": "Active"},
				{"id": 2, "name": "Sara Khan", "email": "sara@example.com", "subscriptionType": "Monthly", "status": "Inactive"},
				{"id": 3, "name": "John Doe", "email": "john@example.com", "subscriptionType": "Yearly", "status": "Inactive"},
			}
		})
		client, _ := backend.SignedIn("ops@example.com")
		ctrl = listing.NewController(subscription.NewResource(subscription.NewService(client).FetchAll), nil, logger.Discard())
	})

	AfterEach(func() {
		backend.Close()
	})

	It("should search by plan type", func() {
		Expect(ctrl.Load(ctx)).To(Succeed())
		ctrl.SetSearch("YEAR")
		rows := ctrl.View().Rows
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].Key).To(Equal("3"))
	})

	It("should keep fetch order among equal statuses", func() {
		Expect(ctrl.Load(ctx)).To(Succeed())
		Expect(ctrl.SortBy("status", true)).To(Succeed())
		var keys []string
		for _, r := range ctrl.View().Rows {
			keys = append(keys, r.Key)
		}
		Expect(keys).To(Equal([]string{"2", "3", "1"}))
	})

	It("should recognise active plans", func() {
		Expect(ctrl.Load(ctx)).To(Succeed())
		items := ctrl.Items()
		Expect(items[0].Active()).To(BeTrue())
		Expect(items[1].Active()).To(BeFalse())
	})

	It("should serve the view over HTTP", func() {
		h := subscription.NewHandler(transport.NewBaseHandler(logger.Discard()), ctrl)
		w := httptest.NewRecorder()
		h.List(w, httptest.NewRequest(http.MethodGet, "/subscriptions?search=sara", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		var view listing.View[subscription.Subscription]
		Expect(json.NewDecoder(w.Body).Decode(&view)).To(Succeed())
		Expect(view.Rows).To(HaveLen(1))
		Expect(view.Search).To(Equal("sara"))
	})
})
