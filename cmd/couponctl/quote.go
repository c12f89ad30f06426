package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/xenking/storefront/internal/domain/checkout"
)

func newQuoteCmd(with withBackend) *cobra.Command {
	var (
		code  string
		items []string
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a cart with an optional coupon",
		Example: `  couponctl quote --item runner:1 --item tee:2 --code SAVE10
  couponctl quote --item runner:1 --eligible`,
		Args: cobra.NoArgs,
		RunE: with(func(cmd *cobra.Command, b *backend, _ []string) error {
			sel, err := parseItems(items)
			if err != nil {
				return err
			}
			svc, err := checkout.NewService(b.categories, b.products, b.coupons,
				tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())
			if err != nil {
				return errors.Wrap(err, "create checkout service")
			}

			out := cmd.OutOrStdout()
			if eligible, _ := cmd.Flags().GetBool("eligible"); eligible {
				offers, err := svc.EligibleCoupons(cmd.Context(), sel)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "CODE\tDISCOUNT\tAPPLICABLE")
				for _, o := range offers {
					fmt.Fprintf(tw, "%s\t%d\t%d\n", o.Coupon.Code, o.Discount.DiscountAmount, o.Discount.ApplicableSubtotal)
				}
				return tw.Flush()
			}

			q, err := svc.Quote(cmd.Context(), sel, code)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for i, it := range q.Items {
				fmt.Fprintf(tw, "%s\t%d x %d\t%d\n", q.Products[i].Name, it.Quantity, it.UnitPrice, it.Quantity*it.UnitPrice)
			}
			fmt.Fprintf(tw, "Subtotal\t\t%d\n", q.Subtotal)
			if q.Code != "" {
				if q.Discount.Applied() {
					fmt.Fprintf(tw, "Discount (%s)\t\t-%d\n", q.Code, q.Discount.DiscountAmount)
				} else {
					fmt.Fprintf(tw, "Coupon %s rejected\t%s\t%s\n", q.Code, q.Discount.Rejection, q.Discount.Rejection.Message())
				}
			}
			fmt.Fprintf(tw, "Total\t\t%d\n", q.Total)
			return tw.Flush()
		}),
	}

	cmd.Flags().StringVar(&code, "code", "", "coupon code to apply")
	cmd.Flags().StringArrayVar(&items, "item", nil, "cart entry as PRODUCT_ID:QUANTITY (repeatable)")
	cmd.Flags().Bool("eligible", false, "list the coupons the cart qualifies for instead")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

// parseItems parses PRODUCT_ID:QUANTITY entries. A missing quantity means 1.
func parseItems(raw []string) ([]checkout.Selection, error) {
	sel := make([]checkout.Selection, 0, len(raw))
	for _, r := range raw {
		id, qty, found := strings.Cut(r, ":")
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, errors.Errorf("item %q: empty product id", r)
		}
		n := int64(1)
		if found {
			var err error
			n, err = strconv.ParseInt(strings.TrimSpace(qty), 10, 64)
			if err != nil {
				return nil, errors.Errorf("item %q: bad quantity", r)
			}
		}
		sel = append(sel, checkout.Selection{ProductID: id, Quantity: n})
	}
	return sel, nil
}
