package listing

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/fmastery/admin-console/internal"
)

const defaultFailure = "Something went wrong. Please try again."

// Loader is anything a mutation can ask to re-fetch.
type Loader interface {
	Name() string
	Load(ctx context.Context) error
}

// Collection is the type-erased face of a Controller, used by the shell.
type Collection interface {
	Loader
	Reset()
	Close()
}

// Mutation is a write call plus the collections its success invalidates.
type Mutation struct {
	Name string
	// Run performs the call and returns the server's success message, if any.
	Run func(ctx context.Context) (string, error)
	// Success and Failure are the toast texts used when the server sends none.
	Success string
	Failure string
	// Refresh lists every collection to re-fetch on success. The owning controller is not
	// implied; list it when it should reload.
	Refresh []Loader
}

// Controller holds one resource's items and view state. It is safe for concurrent use.
type Controller[T any] struct {
	res     Resource[T]
	toaster Toaster
	logger  *slog.Logger

	mu      sync.Mutex
	items   []T
	loaded  bool
	loading bool
	search  string
	sort    SortState
	gen     uint64
	cancel  context.CancelFunc
}

func NewController[T any](res Resource[T], toaster Toaster, logger *slog.Logger) *Controller[T] {
	if toaster == nil {
		toaster = discardToaster{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if res.FailureMessage == "" {
		res.FailureMessage = "Failed to fetch " + res.Name
	}
	return &Controller[T]{
		res:     res,
		toaster: toaster,
		logger:  logger.With("resource", res.Name),
	}
}

func (c *Controller[T]) Name() string { return c.res.Name }

func (c *Controller[T]) Resource() Resource[T] { return c.res }

// Load fetches the collection. A newer Load cancels an older one still in flight, and a
// response that arrives after a newer Load started (or after Reset) is discarded. On failure
// the previous items are kept and an error toast is raised.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	loadCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.loading = true
	c.mu.Unlock()

	items, err := c.res.Fetch(loadCtx)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		cancel()
		// a teardown resets the controller mid-load; the caller still has to learn why
		if internal.IsType(err, internal.ErrorTypeUnauthorized) {
			c.logger.Debug("load ended by session teardown", "error", err)
			return err
		}
		c.logger.Debug("discarding stale load")
		return nil
	}
	c.cancel = nil
	c.loading = false
	if err == nil {
		c.items = items
		c.loaded = true
	}
	c.mu.Unlock()
	cancel()

	if err != nil {
		c.logger.Warn("load failed", "error", err)
		c.notifyFailure(err, c.res.FailureMessage)
		return err
	}
	c.logger.Debug("loaded", "count", len(items))
	return nil
}

// notifyFailure toasts err unless it is a session teardown, which is announced elsewhere.
func (c *Controller[T]) notifyFailure(err error, fallback string) {
	if internal.IsType(err, internal.ErrorTypeUnauthorized) || errors.Is(err, context.Canceled) {
		return
	}
	c.toaster.Toast(Toast{Kind: ToastError, Message: internal.UserMessage(err, fallback)})
}

func (c *Controller[T]) SetSearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = term
}

// SetSort behaves like a column header click: the active key flips direction, a new key
// starts ascending.
func (c *Controller[T]) SetSort(key string) error {
	if _, ok := c.res.SortFields[key]; !ok {
		return invalidSortKey(key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sort.Key == key {
		c.sort.Descending = !c.sort.Descending
	} else {
		c.sort = SortState{Key: key}
	}
	return nil
}

// SortBy sets key and direction explicitly. An empty key restores fetch order.
func (c *Controller[T]) SortBy(key string, descending bool) error {
	if key == "" {
		c.mu.Lock()
		c.sort = SortState{}
		c.mu.Unlock()
		return nil
	}
	if _, ok := c.res.SortFields[key]; !ok {
		return invalidSortKey(key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sort = SortState{Key: key, Descending: descending}
	return nil
}

func invalidSortKey(key string) error {
	return internal.NewValidationError("unknown sort key \""+key+"\"", internal.ErrCodeInvalidSortKey)
}

func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	search := c.search
	s := c.sort
	c.mu.Unlock()
	return c.viewWith(search, s)
}

// viewWith derives a view of the current items under the given search and sort, leaving the
// stored view state alone.
func (c *Controller[T]) viewWith(search string, s SortState) View[T] {
	c.mu.Lock()
	items := c.items
	loading := c.loading
	c.mu.Unlock()

	rows := derive(c.res, items, search, s)
	v := View[T]{
		Rows:    rows,
		Loading: loading,
		Total:   len(items),
		Search:  search,
		Sort:    s,
	}
	if len(rows) == 0 {
		if loading {
			v.Empty = "Loading..."
		} else {
			v.Empty = c.res.emptyMessage()
		}
	}
	return v
}

// Items returns a copy of the fetched items in fetch order.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

func (c *Controller[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Mutate runs m. Success toasts and then re-fetches every declared collection in order, after
// the write has answered. Failure toasts the server message and changes nothing.
func (c *Controller[T]) Mutate(ctx context.Context, m Mutation) (Toast, error) {
	msg, err := m.Run(ctx)
	if err != nil {
		failure := m.Failure
		if failure == "" {
			failure = defaultFailure
		}
		c.logger.Warn("mutation failed", "mutation", m.Name, "error", err)
		t := Toast{Kind: ToastError, Message: internal.UserMessage(err, failure)}
		if !internal.IsType(err, internal.ErrorTypeUnauthorized) {
			c.toaster.Toast(t)
		}
		return t, err
	}

	if msg == "" {
		msg = m.Success
	}
	t := Toast{Kind: ToastSuccess, Message: msg}
	c.toaster.Toast(t)
	c.logger.Info("mutation succeeded", "mutation", m.Name)

	seen := make(map[Loader]bool, len(m.Refresh))
	for _, l := range m.Refresh {
		if l == nil || seen[l] {
			continue
		}
		seen[l] = true
		_ = l.Load(ctx)
	}
	return t, nil
}

// Reset drops items, search and sort, and discards any load still in flight.
func (c *Controller[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	c.items = nil
	c.loaded = false
	c.loading = false
	c.search = ""
	c.sort = SortState{}
}

// Close cancels an in-flight load; its result will be discarded.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	c.loading = false
}
