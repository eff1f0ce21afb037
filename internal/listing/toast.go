package listing

import (
	"log/slog"
	"sync"
	"time"
)

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast is a transient notice shown to the operator after a load or mutation.
type Toast struct {
	Kind    ToastKind `json:"type"`
	Message string    `json:"message"`
	At      time.Time `json:"-"`
}

type Toaster interface {
	Toast(t Toast)
}

// ToastLog keeps the most recent toasts in memory and mirrors them to the logger.
type ToastLog struct {
	mu     sync.Mutex
	toasts []Toast
	limit  int
	logger *slog.Logger
}

func NewToastLog(limit int, logger *slog.Logger) *ToastLog {
	if limit <= 0 {
		limit = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ToastLog{limit: limit, logger: logger}
}

func (l *ToastLog) Toast(t Toast) {
	if t.At.IsZero() {
		t.At = time.Now()
	}
	if t.Kind == ToastError {
		l.logger.Warn("toast", "type", t.Kind, "message", t.Message)
	} else {
		l.logger.Info("toast", "type", t.Kind, "message", t.Message)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.toasts = append(l.toasts, t)
	if over := len(l.toasts) - l.limit; over > 0 {
		l.toasts = append([]Toast(nil), l.toasts[over:]...)
	}
}

// Drain returns the buffered toasts, oldest first, and empties the log.
func (l *ToastLog) Drain() []Toast {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.toasts
	l.toasts = nil
	return out
}

// ToasterFunc adapts a function to Toaster.
type ToasterFunc func(Toast)

func (f ToasterFunc) Toast(t Toast) { f(t) }

type discardToaster struct{}

func (discardToaster) Toast(Toast) {}

// ToastResponse is the console server's answer to a successful mutation.
type ToastResponse struct {
	Toast Toast `json:"toast"`
}
