package modal_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fmastery/admin-console/internal"
	"github.com/fmastery/admin-console/internal/modal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestModal(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Modal Suite")
}

type statusForm struct {
	Status string
}

func (f statusForm) Validate() error {
	if f.Status == "" {
		return internal.NewValidationError("Please select a status", internal.ErrCodeValidationFailed)
	}
	return nil
}

var _ = Describe("Dialog", func() {
	var (
		ctx       context.Context
		submitted []statusForm
		failWith  error
		dialog    *modal.Dialog[statusForm]
	)

	BeforeEach(func() {
		ctx = context.Background()
		submitted = nil
		failWith = nil
		dialog = modal.New(func(_ context.Context, f statusForm) error {
			if failWith != nil {
				return failWith
			}
			submitted = append(submitted, f)
			return nil
		})
	})

	It("should start closed and refuse to submit", func() {
		Expect(dialog.IsOpen()).To(BeFalse())
		Expect(dialog.Submit(ctx)).To(MatchError(modal.ErrNotOpen))
	})

	It("should submit the edited form and close", func() {
		dialog.Open(statusForm{})
		dialog.Update(func(f *statusForm) { f.Status = "resolved" })

		Expect(dialog.Submit(ctx)).To(Succeed())
		Expect(submitted).To(Equal([]statusForm{{Status: "resolved"}}))
		Expect(dialog.IsOpen()).To(BeFalse())
		Expect(dialog.Form()).To(Equal(statusForm{}))
	})

	It("should keep validation failures local", func() {
		dialog.Open(statusForm{})
		err := dialog.Submit(ctx)
		Expect(err).To(HaveOccurred())
		Expect(submitted).To(BeEmpty())
		Expect(dialog.IsOpen()).To(BeTrue())
		Expect(dialog.Error()).To(Equal("Please select a status"))

		dialog.Update(func(f *statusForm) { f.Status = "closed" })
		Expect(dialog.Error()).To(BeEmpty())
	})

	It("should show server failures inline and stay open", func() {
		failWith = internal.NewBusinessError("Ticket already closed", 200)
		dialog.Open(statusForm{Status: "closed"})

		Expect(dialog.Submit(ctx)).To(HaveOccurred())
		Expect(dialog.IsOpen()).To(BeTrue())
		Expect(dialog.Error()).To(Equal("Ticket already closed"))
		Expect(dialog.Form().Status).To(Equal("closed"))
	})

	It("should use a generic message for unexpected errors", func() {
		failWith = errors.New("socket closed")
		dialog.Open(statusForm{Status: "closed"})
		Expect(dialog.Submit(ctx)).To(HaveOccurred())
		Expect(dialog.Error()).To(Equal("Something went wrong. Please try again."))
	})

	It("should discard edits on close", func() {
		dialog.Open(statusForm{Status: "in_progress"})
		dialog.Update(func(f *statusForm) { f.Status = "resolved" })
		dialog.Close()

		Expect(submitted).To(BeEmpty())
		Expect(dialog.IsOpen()).To(BeFalse())

		dialog.Update(func(f *statusForm) { f.Status = "ignored" })
		Expect(dialog.Form()).To(Equal(statusForm{}))
	})
})
