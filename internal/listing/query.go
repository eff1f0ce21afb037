package listing

import (
	"context"
	"net/url"
	"strconv"

	"github.com/fmastery/admin-console/internal"
)

// Query is the list state requested by a caller: the CLI flags or the console's query string.
type Query struct {
	Search     *string
	SortKey    string
	Descending bool
	// Refresh forces a fetch even when items are already loaded.
	Refresh bool
}

// ParseQuery reads search, sort, desc and refresh from a query string.
func ParseQuery(v url.Values) Query {
	q := Query{SortKey: v.Get("sort")}
	if v.Has("search") {
		s := v.Get("search")
		q.Search = &s
	}
	q.Descending, _ = strconv.ParseBool(v.Get("desc"))
	q.Refresh, _ = strconv.ParseBool(v.Get("refresh"))
	return q
}

// Query loads the collection when needed, applies q and returns the resulting view. The view
// is derived from q itself, so concurrent callers sharing the controller never see each other's
// search or sort. A failed load is only an error when there is nothing previously fetched to
// show, or when the session ended during the load.
func (c *Controller[T]) Query(ctx context.Context, q Query) (View[T], error) {
	if q.SortKey != "" {
		if _, ok := c.res.SortFields[q.SortKey]; !ok {
			return View[T]{}, invalidSortKey(q.SortKey)
		}
	}

	c.mu.Lock()
	search, s := c.search, c.sort
	if q.Search != nil {
		search = *q.Search
		c.search = search
	}
	if q.SortKey != "" {
		s = SortState{Key: q.SortKey, Descending: q.Descending}
		c.sort = s
	}
	c.mu.Unlock()

	if q.Refresh || !c.Loaded() {
		if err := c.Load(ctx); err != nil {
			if internal.IsType(err, internal.ErrorTypeUnauthorized) || !c.Loaded() {
				return View[T]{}, err
			}
		}
	}
	return c.viewWith(search, s), nil
}
