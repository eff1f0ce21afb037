package cmd

import (
	"context"
	"fmt"

	"github.com/fmastery/admin-console/internal/dashboard"
	"github.com/fmastery/admin-console/internal/listing"
	"github.com/fmastery/admin-console/internal/shell"
	"github.com/spf13/cobra"
)

var (
	dashboardFlags     listFlags
	usersFlags         listFlags
	subscriptionsFlags listFlags
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show user stats, the subscription mix and all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDependencies(cmd, func(ctx context.Context, d *Dependencies) error {
			if err := d.Shell.Select(ctx, string(shell.ViewDashboard)); err != nil && !d.Dashboard.Users.Loaded() {
				printToasts(cmd.ErrOrStderr(), d.Toasts.Drain())
				return err
			}
			view, err := d.Dashboard.Users.Query(ctx, withoutRefresh(dashboardFlags))
			if err != nil {
				return err
			}
			printToasts(cmd.ErrOrStderr(), d.Toasts.Drain())

			out := cmd.OutOrStdout()
			summary := d.Dashboard.Summary()
			tw := newTable(out)
			for _, card := range summary.Stats {
				row(tw, card.Title, string(card.Value))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if len(summary.Subscriptions) > 0 {
				fmt.Fprintln(out)
				tw = newTable(out)
				for _, s := range summary.Subscriptions {
					row(tw, s.Label, dashboard.FormatPercentage(s.Percentage))
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}

			fmt.Fprintln(out)
			if printEmpty(out, view) {
				return nil
			}
			tw = newTable(out)
			row(tw, "NAME", "EMAIL", "ROLE", "SIGNUP", "STATUS", "PLAN")
			for _, r := range view.Rows {
				u := r.Item
				row(tw, orNA(u.Name), orNA(u.Email), orNA(u.Role), orNA(u.SignupMethod), colorStatus(orNA(u.Status)), orNA(u.Plan))
			}
			return tw.Flush()
		})
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List app users",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDependencies(cmd, func(ctx context.Context, d *Dependencies) error {
			if err := d.requireSession(); err != nil {
				return err
			}
			view, err := d.Users.Query(ctx, usersFlags.query())
			printToasts(cmd.ErrOrStderr(), d.Toasts.Drain())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if printEmpty(out, view) {
				return nil
			}
			tw := newTable(out)
			row(tw, "ID", "NAME", "EMAIL", "ROLE", "STATUS", "PLAN", "CREATED")
			for _, r := range view.Rows {
				u := r.Item
				row(tw, orNA(u.RefID().String()), orNA(u.Name), orNA(u.Email), orNA(u.Role), colorStatus(orNA(u.Status)), orNA(u.Plan), u.CreatedAt.Display())
			}
			return tw.Flush()
		})
	},
}

var subscriptionsCmd = &cobra.Command{
	Use:   "subscriptions",
	Short: "List subscription status per user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDependencies(cmd, func(ctx context.Context, d *Dependencies) error {
			if err := d.requireSession(); err != nil {
				return err
			}
			view, err := d.Subscriptions.Query(ctx, subscriptionsFlags.query())
			printToasts(cmd.ErrOrStderr(), d.Toasts.Drain())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if printEmpty(out, view) {
				return nil
			}
			tw := newTable(out)
			row(tw, "NAME", "EMAIL", "TYPE", "STATUS", "ENDS")
			for _, r := range view.Rows {
				s := r.Item
				row(tw, orNA(s.Name), orNA(s.Email), orNA(s.SubscriptionType), colorStatus(orNA(s.Status)), s.EndDate.Display())
			}
			return tw.Flush()
		})
	},
}

// withoutRefresh applies flags to a collection the shell has just loaded.
func withoutRefresh(f listFlags) listing.Query {
	q := f.query()
	q.Refresh = false
	return q
}

func init() {
	dashboardFlags.register(dashboardCmd.Flags())
	usersFlags.register(usersCmd.Flags())
	subscriptionsFlags.register(subscriptionsCmd.Flags())
}
