package video

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/fmastery/admin-console/internal"
	"github.com/fmastery/admin-console/internal/apiclient"
	"github.com/fmastery/admin-console/internal/core/datamodel"
	"github.com/fmastery/admin-console/internal/listing"
	"github.com/fmastery/admin-console/internal/modal"
	"github.com/fmastery/admin-console/internal/storage"
)

const (
	ListPath   = "/videos/all"
	UploadPath = "/videos/upload"
	UpdatePath = "/videos/update-video"
	DeletePath = "/videos/delete/"
)

const (
	addFailed       = "Failed to add video"
	addSucceeded    = "Video added successfully"
	updateFailed    = "Failed to update video"
	updateSucceeded = "Video updated successfully"
	deleteFailed    = "Failed to delete video"
	deleteSucceeded = "Video deleted successfully"
)

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

func (s *Service) FetchAll(ctx context.Context) ([]Video, error) {
	c, err := apiclient.Get[catalog](ctx, s.client, ListPath, "Failed to load videos")
	if err != nil {
		return nil, err
	}
	if c == nil {
		return []Video{}, nil
	}
	return []Video(c), nil
}

func (s *Service) Add(ctx context.Context, form Form) (string, error) {
	msg, err := apiclient.Post[apiclient.Message](ctx, s.client, UploadPath, form.payload(), addFailed)
	if err != nil {
		return "", err
	}
	return msg.Or(addSucceeded), nil
}

func (s *Service) Update(ctx context.Context, form Form) (string, error) {
	msg, err := apiclient.Post[apiclient.Message](ctx, s.client, UpdatePath, form.payload(), updateFailed)
	if err != nil {
		return "", err
	}
	return msg.Or(updateSucceeded), nil
}

func (s *Service) Delete(ctx context.Context, id datamodel.ID) (string, error) {
	msg, err := apiclient.Delete[apiclient.Message](ctx, s.client, DeletePath+url.PathEscape(id.String()), deleteFailed)
	if err != nil {
		return "", err
	}
	return msg.Or(deleteSucceeded), nil
}

// Screen is the catalog view with its add/edit dialog.
type Screen struct {
	svc      *Service
	uploader storage.Uploader

	Videos *listing.Controller[Video]
	Dialog *modal.Dialog[Form]
}

func NewScreen(svc *Service, uploader storage.Uploader, toaster listing.Toaster, logger *slog.Logger) *Screen {
	s := &Screen{
		svc:      svc,
		uploader: uploader,
		Videos:   listing.NewController(NewResource(svc.FetchAll), toaster, logger),
	}
	s.Dialog = modal.New(func(ctx context.Context, form Form) error {
		_, err := s.Save(ctx, form)
		return err
	})
	return s
}

func (s *Screen) Collections() []listing.Collection {
	return []listing.Collection{s.Videos}
}

func (s *Screen) OpenAdd() { s.Dialog.Open(NewForm()) }

func (s *Screen) OpenEdit(v Video) { s.Dialog.Open(EditForm(v)) }

// Save adds or updates depending on whether the form carries an id, then reloads the catalog.
func (s *Screen) Save(ctx context.Context, form Form) (listing.Toast, error) {
	if err := form.Validate(); err != nil {
		return listing.Toast{Kind: listing.ToastError, Message: internal.UserMessage(err, err.Error())}, err
	}
	m := listing.Mutation{
		Name:    "add video",
		Run:     func(ctx context.Context) (string, error) { return s.svc.Add(ctx, form) },
		Success: addSucceeded,
		Failure: addFailed,
		Refresh: []listing.Loader{s.Videos},
	}
	if form.IsEdit() {
		m.Name = "update video"
		m.Run = func(ctx context.Context) (string, error) { return s.svc.Update(ctx, form) }
		m.Success = updateSucceeded
		m.Failure = updateFailed
	}
	return s.Videos.Mutate(ctx, m)
}

func (s *Screen) Delete(ctx context.Context, id datamodel.ID) (listing.Toast, error) {
	if id.IsZero() {
		err := internal.NewValidationError("Video id is required", internal.ErrCodeValidationFailed)
		return listing.Toast{Kind: listing.ToastError, Message: err.Message}, err
	}
	return s.Videos.Mutate(ctx, listing.Mutation{
		Name:    "delete video",
		Run:     func(ctx context.Context) (string, error) { return s.svc.Delete(ctx, id) },
		Success: deleteSucceeded,
		Failure: deleteFailed,
		Refresh: []listing.Loader{s.Videos},
	})
}

// UploadFile puts a local video file in object storage and returns the URL to register.
func (s *Screen) UploadFile(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	if s.uploader == nil {
		return "", internal.NewValidationError("object storage is not configured", internal.ErrCodeValidationFailed)
	}
	if contentType == "" {
		contentType = "video/mp4"
	}
	return s.uploader.Put(ctx, storage.ObjectKey("videos", name, time.Now()), r, size, contentType)
}
