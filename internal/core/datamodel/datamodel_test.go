package datamodel_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fmastery/admin-console/internal/core/datamodel"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDatamodel(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Datamodel Suite")
}

var _ = Describe("ID", func() {
	It("should accept numbers and strings", func() {
		var v struct {
			A datamodel.ID `json:"a"`
			B datamodel.ID `json:"b"`
			C datamodel.ID `json:"c"`
		}
		Expect(json.Unmarshal([]byte(`{"a":12,"b":"x-1","c":null}`), &v)).To(Succeed())
		Expect(v.A.String()).To(Equal("12"))
		Expect(v.B.String()).To(Equal("x-1"))
		Expect(v.C.IsZero()).To(BeTrue())
	})

	It("should keep numeric ids numeric on the wire", func() {
		out, err := json.Marshal([]datamodel.ID{"7", "abc", ""})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchJSON(`[7,"abc",null]`))
	})

	It("should pick the first present id", func() {
		Expect(datamodel.FirstID("", "u2", "u3")).To(Equal(datamodel.ID("u2")))
		Expect(datamodel.FirstID("", "").IsZero()).To(BeTrue())
	})
})

var _ = Describe("Time", func() {
	It("should parse ISO timestamps", func() {
		var t datamodel.Time
		Expect(json.Unmarshal([]byte(`"2024-03-05T10:00:00.000Z"`), &t)).To(Succeed())
		Expect(t.Time).To(Equal(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)))
		Expect(t.Display()).To(Equal("Mar 5, 2024"))
	})

	It("should keep unparseable text for display", func() {
		var t datamodel.Time
		Expect(json.Unmarshal([]byte(`"last tuesday"`), &t)).To(Succeed())
		Expect(t.SortValue()).To(BeNil())
		Expect(t.Display()).To(Equal("last tuesday"))
	})

	It("should treat null as missing", func() {
		var t datamodel.Time
		Expect(json.Unmarshal([]byte(`null`), &t)).To(Succeed())
		Expect(t.Display()).To(Equal("N/A"))
	})
})
