// Package modal holds the state of a form dialog: edits stay local to the dialog until a
// submit validates them and hands them to the owner.
package modal

import (
	"context"
	"errors"
	"sync"

	"github.com/fmastery/admin-console/internal"
)

type Form interface {
	Validate() error
}

var (
	ErrNotOpen = errors.New("modal: dialog is not open")
	ErrBusy    = errors.New("modal: submit already in progress")
)

const fallbackError = "Something went wrong. Please try again."

type Dialog[F Form] struct {
	submit func(ctx context.Context, form F) error

	mu         sync.Mutex
	open       bool
	form       F
	errText    string
	submitting bool
}

// New returns a closed dialog. submit is the owner's callback; it receives a copy of the form.
func New[F Form](submit func(ctx context.Context, form F) error) *Dialog[F] {
	return &Dialog[F]{submit: submit}
}

func (d *Dialog[F]) Open(initial F) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = true
	d.form = initial
	d.errText = ""
}

func (d *Dialog[F]) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *Dialog[F]) Form() F {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.form
}

// Update edits the form in place. Edits clear any previous error text.
func (d *Dialog[F]) Update(fn func(*F)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return
	}
	fn(&d.form)
	d.errText = ""
}

// Error is the inline error text from the last failed submit.
func (d *Dialog[F]) Error() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errText
}

func (d *Dialog[F]) Submitting() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submitting
}

// Submit validates the form and, when valid, runs the owner's callback. The dialog closes
// only on success; otherwise it stays open showing the error.
func (d *Dialog[F]) Submit(ctx context.Context) error {
	d.mu.Lock()
	if !d.open {
		d.mu.Unlock()
		return ErrNotOpen
	}
	if d.submitting {
		d.mu.Unlock()
		return ErrBusy
	}
	form := d.form
	if err := form.Validate(); err != nil {
		d.errText = internal.UserMessage(err, fallbackError)
		d.mu.Unlock()
		return err
	}
	d.submitting = true
	d.errText = ""
	d.mu.Unlock()

	err := d.submit(ctx, form)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.submitting = false
	if err != nil {
		d.errText = internal.UserMessage(err, fallbackError)
		return err
	}
	d.reset()
	return nil
}

// Close discards any edits without side effects.
func (d *Dialog[F]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
}

func (d *Dialog[F]) reset() {
	var zero F
	d.open = false
	d.form = zero
	d.errText = ""
}
