package ticket

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

var exportHeader = []string{"User Name", "User Email", "Type", "Status", "Title", "Description", "Created At"}

const exportTimeLayout = "Jan 2, 2006, 03:04 PM"

// ExportFileName is the download name for an export taken at now.
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("tickets_export_%s.csv", now.UTC().Format("2006-01-02"))
}

// WriteCSV writes tickets in the given order with a header row.
func WriteCSV(w io.Writer, tickets []Ticket) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, t := range tickets {
		created := "N/A"
		if !t.CreatedAt.Time.IsZero() {
			created = t.CreatedAt.Time.Format(exportTimeLayout)
		}
		record := []string{
			orNA(t.UserName()),
			orNA(t.UserEmail()),
			t.Type,
			t.Status,
			t.Title,
			t.Description,
			created,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
