package promocode

import (
	"context"
	"log/slog"

	"github.com/fmastery/admin-console/internal"
	"github.com/fmastery/admin-console/internal/listing"
	"github.com/fmastery/admin-console/internal/modal"
	"github.com/fmastery/admin-console/internal/user"
)

// Screen holds the three tabs of the promo code view and the assign dialog.
type Screen struct {
	svc ServiceAPI

	Codes    *listing.Controller[PromoCode]
	Users    *listing.Controller[user.User]
	Assigned *listing.Controller[AssignedPromo]
	Dialog   *modal.Dialog[AssignForm]
}

func NewScreen(svc ServiceAPI, users func(ctx context.Context) ([]user.User, error), toaster listing.Toaster, logger *slog.Logger) *Screen {
	s := &Screen{
		svc:      svc,
		Codes:    listing.NewController(NewCodesResource(svc.FetchCodes), toaster, logger),
		Users:    listing.NewController(NewUsersResource(users), toaster, logger),
		Assigned: listing.NewController(NewAssignedResource(svc.FetchAssigned), toaster, logger),
	}
	s.Dialog = modal.New(func(ctx context.Context, form AssignForm) error {
		_, err := s.Assign(ctx, form)
		return err
	})
	return s
}

// Collections lists what the view loads when it is mounted.
func (s *Screen) Collections() []listing.Collection {
	return []listing.Collection{s.Codes, s.Users, s.Assigned}
}

// Generate creates a code and reloads the code list.
func (s *Screen) Generate(ctx context.Context, form GenerateForm) (listing.Toast, error) {
	if err := form.Validate(); err != nil {
		return invalid(err), err
	}
	return s.Codes.Mutate(ctx, listing.Mutation{
		Name:    "generate promo code",
		Run:     func(ctx context.Context) (string, error) { return s.svc.Generate(ctx, form) },
		Failure: generateFailed,
		Refresh: []listing.Loader{s.Codes},
	})
}

// Assign applies a code to a user. The code, the user's promo status and the assigned list
// all change, so all three reload.
func (s *Screen) Assign(ctx context.Context, form AssignForm) (listing.Toast, error) {
	if err := form.Validate(); err != nil {
		return invalid(err), err
	}
	return s.Codes.Mutate(ctx, listing.Mutation{
		Name:    "assign promo code",
		Run:     func(ctx context.Context) (string, error) { return s.svc.Assign(ctx, form) },
		Success: assignSucceeded,
		Failure: assignFailed,
		Refresh: []listing.Loader{s.Codes, s.Users, s.Assigned},
	})
}

// invalid reports a form error without toasting it; the dialog shows it inline.
func invalid(err error) listing.Toast {
	return listing.Toast{Kind: listing.ToastError, Message: internal.UserMessage(err, err.Error())}
}

// AvailableCodes are the codes the assign dialog offers for promoType.
func (s *Screen) AvailableCodes(promoType string) []PromoCode {
	return Available(s.Codes.Items(), promoType)
}

// OpenAssign opens the dialog for u with the monthly type preselected.
func (s *Screen) OpenAssign(u user.User) {
	s.Dialog.Open(NewAssignForm(u.RefID(), u.Name))
}
