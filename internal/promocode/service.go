package promocode

import (
	"context"

	"github.com/fmastery/admin-console/internal"
	"github.com/fmastery/admin-console/internal/apiclient"
)

const (
	AllPath      = "/promo-codes/all"
	AssignedPath = "/promo-codes/assigned/all"
	CreatePath   = "/promo-codes/create"
	ApplyPath    = "/promo-codes/apply"
)

const (
	generateFailed  = "Failed to generate promo code. Please try again."
	generateNetwork = "An error occurred while generating the promo code."
	assignFailed    = "Failed to assign promo code. Please try again."
	assignSucceeded = "Promo assigned successfully!"
)

type ServiceAPI interface {
	FetchCodes(ctx context.Context) ([]PromoCode, error)
	FetchAssigned(ctx context.Context) ([]AssignedPromo, error)
	Generate(ctx context.Context, form GenerateForm) (string, error)
	Assign(ctx context.Context, form AssignForm) (string, error)
}

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

func (s *Service) FetchCodes(ctx context.Context) ([]PromoCode, error) {
	codes, err := apiclient.Get[[]PromoCode](ctx, s.client, AllPath, "Failed to fetch promo codes")
	if err != nil {
		return nil, err
	}
	if codes == nil {
		codes = []PromoCode{}
	}
	return codes, nil
}

func (s *Service) FetchAssigned(ctx context.Context) ([]AssignedPromo, error) {
	assigned, err := apiclient.Get[[]AssignedPromo](ctx, s.client, AssignedPath, "Failed to fetch assigned promos")
	if err != nil {
		return nil, err
	}
	if assigned == nil {
		assigned = []AssignedPromo{}
	}
	return assigned, nil
}

// Generate asks the backend for a new code of the form's type and returns the toast text.
func (s *Service) Generate(ctx context.Context, form GenerateForm) (string, error) {
	if err := form.Validate(); err != nil {
		return "", err
	}
	_, err := apiclient.Post[apiclient.Message](ctx, s.client, CreatePath, generateRequest{PromoType: form.PromoType}, generateFailed)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeTransport {
			appErr.Message = generateNetwork
		}
		return "", err
	}
	return typeLabel(form.PromoType) + " promo code generated successfully!", nil
}

func (s *Service) Assign(ctx context.Context, form AssignForm) (string, error) {
	if err := form.Validate(); err != nil {
		return "", err
	}
	msg, err := apiclient.Post[apiclient.Message](ctx, s.client, ApplyPath, assignRequest{
		UserID:    form.UserID,
		PromoCode: form.PromoCode,
	}, assignFailed)
	if err != nil {
		return "", err
	}
	return msg.Or(assignSucceeded), nil
}
