package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/fmastery/admin-console/internal/listing"
)

// listFlags are the search and sort flags shared by every list command.
type listFlags struct {
	search string
	sort   string
	desc   bool
}

func (f *listFlags) register(fs interface {
	StringVar(p *string, name, value, usage string)
	BoolVar(p *bool, name string, value bool, usage string)
}) {
	fs.StringVar(&f.search, "search", "", "case-insensitive search term")
	fs.StringVar(&f.sort, "sort", "", "column to sort by")
	fs.BoolVar(&f.desc, "desc", false, "sort descending")
}

func (f *listFlags) query() listing.Query {
	q := listing.Query{SortKey: f.sort, Descending: f.desc, Refresh: true}
	if f.search != "" {
		s := f.search
		q.Search = &s
	}
	return q
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func row(w io.Writer, cells ...string) {
	fmt.Fprintln(w, strings.Join(cells, "\t"))
}

// colorStatus paints account and code states: active green, banned or used red, pending
// orange (yellow on terminals).
func colorStatus(status string) string {
	switch strings.ToLower(status) {
	case "active", "available", "resolved", "paid":
		return color.GreenString(status)
	case "banned", "used", "closed", "expired", "inactive":
		return color.RedString(status)
	case "pending", "in_progress":
		return color.YellowString(status)
	}
	return status
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// printEmpty writes the list's empty-state sentence and reports whether it did.
func printEmpty[T any](w io.Writer, view listing.View[T]) bool {
	if len(view.Rows) > 0 {
		return false
	}
	fmt.Fprintln(w, view.Empty)
	return true
}

func printToasts(w io.Writer, toasts []listing.Toast) {
	for _, t := range toasts {
		if t.Kind == listing.ToastError {
			fmt.Fprintln(w, color.RedString(t.Message))
			continue
		}
		fmt.Fprintln(w, color.GreenString(t.Message))
	}
}

// reportMutation prints a mutation's success toast; failures surface through the returned
// error so they are printed once.
func reportMutation(w io.Writer, toasts *listing.ToastLog, toast listing.Toast, err error) error {
	toasts.Drain()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, color.GreenString(toast.Message))
	return nil
}
