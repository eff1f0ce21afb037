package notification

import (
	"context"
	"log/slog"

	"github.com/fmastery/admin-console/internal"
	"github.com/fmastery/admin-console/internal/apiclient"
	"github.com/fmastery/admin-console/internal/core/datamodel"
	"github.com/fmastery/admin-console/internal/listing"
)

const SendBulkPath = "/notifications/send-bulk"

const (
	sendFailed    = "Failed to send notification"
	sendSucceeded = "Notification sent successfully"
)

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

func (s *Service) SendBulk(ctx context.Context, title, message string, ids []datamodel.ID) (string, error) {
	msg, err := apiclient.Post[apiclient.Message](ctx, s.client, SendBulkPath, sendRequest{
		Title:   title,
		Message: message,
		IDs:     ids,
	}, sendFailed)
	if err != nil {
		return "", err
	}
	return msg.Or(sendSucceeded), nil
}

// Screen is the notification composer and its recipient list.
type Screen struct {
	svc        *Service
	Recipients *listing.Controller[Recipient]
}

func NewScreen(svc *Service, users func(ctx context.Context) ([]Recipient, error), toaster listing.Toaster, logger *slog.Logger) *Screen {
	return &Screen{
		svc:        svc,
		Recipients: listing.NewController(NewRecipientsResource(users), toaster, logger),
	}
}

func (s *Screen) Collections() []listing.Collection {
	return []listing.Collection{s.Recipients}
}

// Send validates the form, resolves its audience against the recipient list and sends. No
// collection changes, so nothing reloads.
func (s *Screen) Send(ctx context.Context, form Form) (listing.Toast, error) {
	if err := form.Validate(); err != nil {
		return listing.Toast{Kind: listing.ToastError, Message: internal.UserMessage(err, err.Error())}, err
	}
	if form.Audience != AudienceSelect && !s.Recipients.Loaded() {
		if err := s.Recipients.Load(ctx); err != nil {
			return listing.Toast{Kind: listing.ToastError, Message: internal.UserMessage(err, sendFailed)}, err
		}
	}
	ids := Resolve(s.Recipients.Items(), form.Audience, form.Selected)
	if len(ids) == 0 {
		err := internal.ErrNoRecipients
		return listing.Toast{Kind: listing.ToastError, Message: err.Message}, err
	}

	return s.Recipients.Mutate(ctx, listing.Mutation{
		Name: "send notification",
		Run: func(ctx context.Context) (string, error) {
			return s.svc.SendBulk(ctx, form.Title, form.Message, ids)
		},
		Success: sendSucceeded,
		Failure: sendFailed,
	})
}
