package cmd

import (
	"context"

	"github.com/fmastery/admin-console/internal/core/datamodel"
	"github.com/fmastery/admin-console/internal/notification"
	"github.com/spf13/cobra"
)

var (
	notifyTitle    string
	notifyMessage  string
	notifyAudience string
	notifyUsers    []string
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Push notifications",
}

var notifySendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a notification to all, paid, unpaid or selected users",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDependencies(cmd, func(ctx context.Context, d *Dependencies) error {
			if err := d.requireSession(); err != nil {
				return err
			}
			form := notification.NewForm()
			form.Title = notifyTitle
			form.Message = notifyMessage
			form.Audience = notification.Audience(notifyAudience)
			if len(notifyUsers) > 0 && !cmd.Flags().Changed("audience") {
				form.Audience = notification.AudienceSelect
			}
			for _, id := range notifyUsers {
				form.Toggle(datamodel.ID(id))
			}

			toast, err := d.Notifications.Send(ctx, form)
			return reportMutation(cmd.OutOrStdout(), d.Toasts, toast, err)
		})
	},
}

func init() {
	notifySendCmd.Flags().StringVar(&notifyTitle, "title", "", "notification title")
	notifySendCmd.Flags().StringVar(&notifyMessage, "message", "", "notification body, at most 1000 characters")
	notifySendCmd.Flags().StringVar(&notifyAudience, "audience", string(notification.AudienceAll), "all, paid, unpaid or select")
	notifySendCmd.Flags().StringSliceVar(&notifyUsers, "user", nil, "user id to notify; implies --audience select")

	notifyCmd.AddCommand(notifySendCmd)
}
