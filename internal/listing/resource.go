// Package listing implements the list screen shared by every resource: fetch a collection,
// filter and sort it in memory, and run mutations that re-fetch the collections they affect.
package listing

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/fmastery/admin-console/internal/core/datamodel"
)

// Resource describes one collection.
type Resource[T any] struct {
	// Name is the plural used in messages and row keys, e.g. "videos".
	Name  string
	Fetch func(ctx context.Context) ([]T, error)
	// FailureMessage is toasted when Fetch fails without a server message.
	FailureMessage string
	// Search returns the texts a search term is matched against.
	Search func(T) []string
	// SortFields maps a column key to the value it sorts by.
	SortFields map[string]func(T) interface{}
	// Keys are tried in order for a stable row key; see RowKey.
	Keys []func(T) datamodel.ID
}

type SortState struct {
	Key        string `json:"key,omitempty"`
	Descending bool   `json:"descending,omitempty"`
}

type Row[T any] struct {
	Key  string `json:"key"`
	Item T      `json:"item"`
}

// View is derived from the fetched items, the search term and the sort; it is never stored.
type View[T any] struct {
	Rows    []Row[T]  `json:"rows"`
	Loading bool      `json:"loading"`
	Empty   string    `json:"empty,omitempty"`
	Total   int       `json:"total"`
	Search  string    `json:"search,omitempty"`
	Sort    SortState `json:"sort"`
}

// SortKeys lists the accepted sort keys alphabetically.
func (r Resource[T]) SortKeys() []string {
	keys := make([]string, 0, len(r.SortFields))
	for k := range r.SortFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RowKey returns the first non-empty key function result, or "<name>-<index>".
func (r Resource[T]) RowKey(item T, index int) string {
	for _, key := range r.Keys {
		if id := key(item); !id.IsZero() {
			return id.String()
		}
	}
	return r.Name + "-" + strconv.Itoa(index)
}

func (r Resource[T]) emptyMessage() string {
	return "No " + r.Name + " found"
}

// derive filters, sorts and keys items. It is a pure function of its inputs.
func derive[T any](r Resource[T], items []T, search string, s SortState) []Row[T] {
	term := strings.ToLower(strings.TrimSpace(search))

	type indexed struct {
		index int
		item  T
	}
	kept := make([]indexed, 0, len(items))
	for i, item := range items {
		if term != "" && r.Search != nil && !matches(r.Search(item), term) {
			continue
		}
		kept = append(kept, indexed{index: i, item: item})
	}

	if field, ok := r.SortFields[s.Key]; ok {
		values := make([]interface{}, len(kept))
		for i, k := range kept {
			values[i] = field(k.item)
		}
		order := make([]int, len(kept))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool {
			c := compareValues(values[order[i]], values[order[j]])
			if s.Descending {
				return c > 0
			}
			return c < 0
		})
		sorted := make([]indexed, len(kept))
		for i, o := range order {
			sorted[i] = kept[o]
		}
		kept = sorted
	}

	rows := make([]Row[T], len(kept))
	for i, k := range kept {
		rows[i] = Row[T]{Key: r.RowKey(k.item, k.index), Item: k.item}
	}
	return rows
}
