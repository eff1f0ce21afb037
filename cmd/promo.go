package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/fmastery/admin-console/internal/core/datamodel"
	"github.com/fmastery/admin-console/internal/promocode"
	"github.com/spf13/cobra"
)

var (
	promoFlags    listFlags
	assignedFlags listFlags
	promoType     string
	promoUserID   string
	promoCode     string
)

var promoCmd = &cobra.Command{
	Use:   "promo",
	Short: "Promo codes",
}

var promoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated promo codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDependencies(cmd, func(ctx context.Context, d *Dependencies) error {
			if err := d.requireSession(); err != nil {
				return err
			}
			view, err := d.PromoCodes.Codes.Query(ctx, promoFlags.query())
			printToasts(cmd.ErrOrStderr(), d.Toasts.Drain())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if printEmpty(out, view) {
				return nil
			}
			tw := newTable(out)
			row(tw, "CODE", "TYPE", "STATUS", "CREATED")
			for _, r := range view.Rows {
				p := r.Item
				row(tw, orNA(p.PromoCode), orNA(p.PromoType), colorStatus(p.Status()), p.CreationDate.Display())
			}
			return tw.Flush()
		})
	},
}

var promoGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a monthly or yearly promo code",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDependencies(cmd, func(ctx context.Context, d *Dependencies) error {
			if err := d.requireSession(); err != nil {
				return err
			}
			toast, err := d.PromoCodes.Generate(ctx, promocode.GenerateForm{PromoType: promoType})
			return reportMutation(cmd.OutOrStdout(), d.Toasts, toast, err)
		})
	},
}

var promoAssignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign an unused promo code to a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDependencies(cmd, func(ctx context.Context, d *Dependencies) error {
			if err := d.requireSession(); err != nil {
				return err
			}
			form := promocode.NewAssignForm(datamodel.ID(promoUserID), "")
			form.SelectType(promoType)
			form.PromoCode = promoCode

			if form.PromoCode == "" {
				if err := d.PromoCodes.Codes.Load(ctx); err == nil {
					var codes []string
					for _, c := range d.PromoCodes.AvailableCodes(form.PromoType) {
						codes = append(codes, c.PromoCode)
					}
					if len(codes) > 0 {
						fmt.Fprintf(cmd.ErrOrStderr(), "Available %s codes: %s\n", form.PromoType, strings.Join(codes, ", "))
					}
				}
			}

			toast, err := d.PromoCodes.Assign(ctx, form)
			return reportMutation(cmd.OutOrStdout(), d.Toasts, toast, err)
		})
	},
}

var promoAssignedCmd = &cobra.Command{
	Use:   "assigned",
	Short: "List assigned promo codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDependencies(cmd, func(ctx context.Context, d *Dependencies) error {
			if err := d.requireSession(); err != nil {
				return err
			}
			view, err := d.PromoCodes.Assigned.Query(ctx, assignedFlags.query())
			printToasts(cmd.ErrOrStderr(), d.Toasts.Drain())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if printEmpty(out, view) {
				return nil
			}
			tw := newTable(out)
			row(tw, "USER", "EMAIL", "CODE", "TYPE", "STARTS", "ENDS")
			for _, r := range view.Rows {
				a := r.Item
				row(tw, orNA(a.UserName()), orNA(a.UserEmail()), orNA(a.Code()), orNA(a.Type()),
					a.SubscriptionStartDate.Display(), a.SubscriptionEndDate.Display())
			}
			return tw.Flush()
		})
	},
}

func init() {
	promoFlags.register(promoListCmd.Flags())
	assignedFlags.register(promoAssignedCmd.Flags())

	promoGenerateCmd.Flags().StringVar(&promoType, "type", promocode.TypeMonthly, "monthly or yearly")

	promoAssignCmd.Flags().StringVar(&promoUserID, "user", "", "id of the user receiving the code")
	promoAssignCmd.Flags().StringVar(&promoType, "type", promocode.TypeMonthly, "monthly or yearly")
	promoAssignCmd.Flags().StringVar(&promoCode, "code", "", "unused promo code to assign")
	_ = promoAssignCmd.MarkFlagRequired("user")

	promoCmd.AddCommand(promoListCmd, promoGenerateCmd, promoAssignCmd, promoAssignedCmd)
}
