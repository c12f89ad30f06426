package main

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/xenking/storefront/internal/domain/coupon"
)

func newCouponsCmd(with withBackend) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coupons",
		Short: "Inspect and manage coupons",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all coupons with their current status",
		Args:  cobra.NoArgs,
		RunE: with(func(cmd *cobra.Command, b *backend, _ []string) error {
			all, err := b.coupons.List(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "list coupons")
			}
			now := time.Now()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tTYPE\tVALUE\tSCOPE\tUSED\tEXPIRES\tSTATUS")
			for i := range all {
				c := &all[i]
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					c.Code, c.DiscountType, c.DiscountValue, c.Scope,
					usage(c), c.ExpiryDate.Format(time.DateOnly), status(c, now),
				)
			}
			return tw.Flush()
		}),
	}

	show := &cobra.Command{
		Use:   "show CODE",
		Short: "Show a coupon definition",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(cmd *cobra.Command, b *backend, args []string) error {
			c, err := b.coupons.FindByCode(cmd.Context(), coupon.NormalizeCode(args[0]))
			if err != nil {
				return errors.Wrapf(err, "find %s", args[0])
			}
			printCoupon(cmd, c, time.Now())
			return nil
		}),
	}

	deactivate := &cobra.Command{
		Use:   "deactivate CODE",
		Short: "Deactivate a coupon (database only)",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(cmd *cobra.Command, b *backend, args []string) error {
			if b.deactivate == nil {
				return errors.New("deactivate needs --database-url")
			}
			code := coupon.NormalizeCode(args[0])
			if err := b.deactivate(cmd.Context(), code); err != nil {
				return errors.Wrapf(err, "deactivate %s", code)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deactivated %s\n", code)
			return nil
		}),
	}

	cmd.AddCommand(list, show, deactivate)
	return cmd
}

func usage(c *coupon.Coupon) string {
	if c.MaxUsage == nil {
		return fmt.Sprintf("%d/-", c.UsageCount)
	}
	return fmt.Sprintf("%d/%d", c.UsageCount, *c.MaxUsage)
}

func status(c *coupon.Coupon, now time.Time) string {
	if r := coupon.CheckLifecycle(c, now); r != coupon.ReasonNone {
		return string(r)
	}
	return "VALID"
}

func printCoupon(cmd *cobra.Command, c *coupon.Coupon, now time.Time) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	row := func(k, v string) { fmt.Fprintf(tw, "%s:\t%s\n", k, v) }

	row("Code", c.Code)
	row("Description", c.Description)
	row("Discount", fmt.Sprintf("%s %s", c.DiscountType, c.DiscountValue))
	row("Min order", fmt.Sprint(c.MinOrderValue))
	row("Usage", usage(c))
	row("Per user", fmt.Sprint(c.MaxUsagePerUser))
	if c.StartDate != nil {
		row("Starts", c.StartDate.Format(time.RFC3339))
	}
	row("Expires", c.ExpiryDate.Format(time.RFC3339))
	row("Scope", string(c.Scope))
	if c.Scope != coupon.ScopeAll {
		ids := make([]string, 0, len(c.ApplicableIDs))
		for id := range c.ApplicableIDs {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		row("Applies to", strings.Join(ids, ", "))
	}
	row("Status", status(c, now))
	_ = tw.Flush()
}
