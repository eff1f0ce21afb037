package ticket

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fmastery/admin-console/internal"
	"github.com/fmastery/admin-console/internal/apiclient"
	"github.com/fmastery/admin-console/internal/listing"
	"github.com/fmastery/admin-console/internal/modal"
	"github.com/fmastery/admin-console/internal/storage"
)

const (
	ListPath      = "/report-tickets"
	StatusPath    = "/report-tickets/status"
	AnalyticsPath = "/report-tickets/analytics/status"
)

const (
	statusFailed    = "Failed to update ticket status. Please try again."
	statusSucceeded = "Ticket status updated successfully"
)

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

func (s *Service) FetchAll(ctx context.Context) ([]Ticket, error) {
	tickets, err := apiclient.Get[[]Ticket](ctx, s.client, ListPath, "Failed to fetch tickets")
	if err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []Ticket{}
	}
	return tickets, nil
}

func (s *Service) UpdateStatus(ctx context.Context, form StatusForm) (string, error) {
	if err := form.Validate(); err != nil {
		return "", err
	}
	msg, err := apiclient.Patch[apiclient.Message](ctx, s.client, StatusPath, statusRequest{
		TicketID: form.TicketID,
		UserID:   form.UserID.String(),
		Status:   form.Status,
	}, statusFailed)
	if err != nil {
		return "", err
	}
	return msg.Or(statusSucceeded), nil
}

func (s *Service) Analytics(ctx context.Context) (Analytics, error) {
	a, err := apiclient.Get[Analytics](ctx, s.client, AnalyticsPath, "Failed to fetch ticket analytics")
	if err != nil {
		return nil, err
	}
	if a == nil {
		a = Analytics{}
	}
	return a, nil
}

// Screen is the tickets view with its update-status dialog.
type Screen struct {
	svc      *Service
	uploader storage.Uploader
	now      func() time.Time

	Tickets *listing.Controller[Ticket]
	Dialog  *modal.Dialog[StatusForm]
}

type ScreenOption func(*Screen)

// WithUploader lets exports be published to object storage.
func WithUploader(u storage.Uploader) ScreenOption {
	return func(s *Screen) { s.uploader = u }
}

func WithClock(now func() time.Time) ScreenOption {
	return func(s *Screen) { s.now = now }
}

func NewScreen(svc *Service, toaster listing.Toaster, logger *slog.Logger, opts ...ScreenOption) *Screen {
	s := &Screen{
		svc:     svc,
		now:     time.Now,
		Tickets: listing.NewController(NewResource(svc.FetchAll), toaster, logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Dialog = modal.New(func(ctx context.Context, form StatusForm) error {
		_, err := s.UpdateStatus(ctx, form)
		return err
	})
	return s
}

func (s *Screen) Collections() []listing.Collection {
	return []listing.Collection{s.Tickets}
}

// UpdateStatus changes a ticket's status and re-fetches the list.
func (s *Screen) UpdateStatus(ctx context.Context, form StatusForm) (listing.Toast, error) {
	if err := form.Validate(); err != nil {
		return listing.Toast{Kind: listing.ToastError, Message: internal.UserMessage(err, err.Error())}, err
	}
	return s.Tickets.Mutate(ctx, listing.Mutation{
		Name:    "update ticket status",
		Run:     func(ctx context.Context) (string, error) { return s.svc.UpdateStatus(ctx, form) },
		Success: statusSucceeded,
		Failure: statusFailed,
		Refresh: []listing.Loader{s.Tickets},
	})
}

func (s *Screen) Analytics(ctx context.Context) (Analytics, error) {
	return s.svc.Analytics(ctx)
}

// OpenStatus opens the dialog for t.
func (s *Screen) OpenStatus(t Ticket) {
	s.Dialog.Open(NewStatusForm(t))
}

// Export writes the tickets currently shown, in their displayed order, and returns the file
// name to save them under.
func (s *Screen) Export(w io.Writer) (string, error) {
	rows := s.Tickets.View().Rows
	tickets := make([]Ticket, len(rows))
	for i, r := range rows {
		tickets[i] = r.Item
	}
	if err := WriteCSV(w, tickets); err != nil {
		return "", fmt.Errorf("write tickets export: %w", err)
	}
	return ExportFileName(s.now()), nil
}

// Publish exports the shown tickets and uploads the file, returning its URL.
func (s *Screen) Publish(ctx context.Context) (string, error) {
	if s.uploader == nil {
		return "", internal.NewValidationError("object storage is not configured", internal.ErrCodeValidationFailed)
	}
	var buf bytes.Buffer
	name, err := s.Export(&buf)
	if err != nil {
		return "", err
	}
	key := storage.ObjectKey("exports", name, s.now())
	return s.uploader.Put(ctx, key, &buf, int64(buf.Len()), "text/csv")
}
