package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fmastery/admin-console/internal/core/datamodel"
	"github.com/fmastery/admin-console/internal/ticket"
	"github.com/spf13/cobra"
)

var (
	ticketsFlags  listFlags
	ticketID      string
	ticketUserID  string
	ticketStatus  string
	exportDir     string
	exportPublish bool
)

var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "Support tickets",
}

var ticketsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List support tickets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDependencies(cmd, func(ctx context.Context, d *Dependencies) error {
			if err := d.requireSession(); err != nil {
				return err
			}
			view, err := d.Tickets.Tickets.Query(ctx, ticketsFlags.query())
			printToasts(cmd.ErrOrStderr(), d.Toasts.Drain())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if printEmpty(out, view) {
				return nil
			}
			tw := newTable(out)
			row(tw, "ID", "USER", "EMAIL", "TYPE", "STATUS", "TITLE", "CREATED")
			for _, r := range view.Rows {
				t := r.Item
				row(tw, orNA(t.ID.String()), orNA(t.User.DisplayName()), orNA(t.User.EmailAddress()), orNA(t.Type), colorStatus(orNA(t.Status)), orNA(t.Title), t.CreatedAt.Display())
			}
			return tw.Flush()
		})
	},
}

var ticketsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Change a ticket's status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDependencies(cmd, func(ctx context.Context, d *Dependencies) error {
			if err := d.requireSession(); err != nil {
				return err
			}
			form := ticket.StatusForm{
				TicketID: datamodel.ID(ticketID),
				UserID:   datamodel.ID(ticketUserID),
				Status:   ticketStatus,
			}
			toast, err := d.Tickets.UpdateStatus(ctx, form)
			return reportMutation(cmd.OutOrStdout(), d.Toasts, toast, err)
		})
	},
}

var ticketsAnalyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Count tickets per status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDependencies(cmd, func(ctx context.Context, d *Dependencies) error {
			if err := d.requireSession(); err != nil {
				return err
			}
			a, err := d.Tickets.Analytics(ctx)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			row(tw, "STATUS", "COUNT")
			for _, c := range a {
				row(tw, colorStatus(c.Status), fmt.Sprint(c.Count))
			}
			row(tw, "total", fmt.Sprint(a.Total()))
			return tw.Flush()
		})
	},
}

var ticketsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the listed tickets as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDependencies(cmd, func(ctx context.Context, d *Dependencies) error {
			if err := d.requireSession(); err != nil {
				return err
			}
			if _, err := d.Tickets.Tickets.Query(ctx, ticketsFlags.query()); err != nil {
				return err
			}
			d.Toasts.Drain()

			if exportPublish {
				url, err := d.Tickets.Publish(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			}

			tmp, err := os.CreateTemp(exportDir, "tickets-*.csv")
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			name, err := d.Tickets.Export(tmp)
			if cerr := tmp.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				os.Remove(tmp.Name())
				return err
			}
			path := filepath.Join(exportDir, name)
			if err := os.Rename(tmp.Name(), path); err != nil {
				return fmt.Errorf("failed to save export: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		})
	},
}

func init() {
	ticketsFlags.register(ticketsListCmd.Flags())
	ticketsFlags.register(ticketsExportCmd.Flags())

	ticketsStatusCmd.Flags().StringVar(&ticketID, "id", "", "ticket id")
	ticketsStatusCmd.Flags().StringVar(&ticketUserID, "user", "", "id of the user who filed the ticket")
	ticketsStatusCmd.Flags().StringVar(&ticketStatus, "status", "", "in_progress, resolved or closed")
	_ = ticketsStatusCmd.MarkFlagRequired("id")

	ticketsExportCmd.Flags().StringVar(&exportDir, "dir", ".", "directory to write the CSV into")
	ticketsExportCmd.Flags().BoolVar(&exportPublish, "publish", false, "upload to object storage instead of writing a file")

	ticketsCmd.AddCommand(ticketsListCmd, ticketsStatusCmd, ticketsAnalyticsCmd, ticketsExportCmd)
}
