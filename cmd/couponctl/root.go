package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/xenking/storefront/internal/client/storefront"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/coupon"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/storage/postgres"
)

var errNoBackend = errors.New("set --database-url or --api-url")

type rootOptions struct {
	databaseURL string
	apiURL      string
	apiKey      string
	timeout     time.Duration
}

// backend is the data source commands read from. deactivate is nil when the
// source is read-only.
type backend struct {
	categories catalog.Repository
	products   product.Repository
	coupons    coupon.Repository
	deactivate func(ctx context.Context, code string) error
	close      func()
}

type opener func(ctx context.Context, opts *rootOptions) (*backend, error)

type backendFunc func(cmd *cobra.Command, b *backend, args []string) error

// withBackend opens the backend around a command body.
type withBackend func(fn backendFunc) func(*cobra.Command, []string) error

// openBackend prefers the database when both sources are configured.
func openBackend(ctx context.Context, opts *rootOptions) (*backend, error) {
	switch {
	case opts.databaseURL != "":
		pool, err := postgres.NewPool(ctx, opts.databaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "connect to database")
		}
		coupons := postgres.NewCouponRepository(pool)
		return &backend{
			categories: postgres.NewCategoryRepository(pool),
			products:   postgres.NewProductRepository(pool),
			coupons:    coupons,
			deactivate: coupons.Deactivate,
			close:      pool.Close,
		}, nil
	case opts.apiURL != "":
		c := storefront.New(storefront.Config{
			BaseURL: opts.apiURL,
			APIKey:  opts.apiKey,
			Timeout: opts.timeout,
			Retries: 2,
		})
		return &backend{
			categories: c,
			products:   c,
			coupons:    c.CouponRepository(),
			close:      func() {},
		}, nil
	default:
		return nil, errNoBackend
	}
}

func newRootCmd(out io.Writer, open opener) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "couponctl",
		Short:         "Inspect storefront coupons and price carts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	flags.StringVar(&opts.apiURL, "api-url", os.Getenv("SHOP_API_URL"), "storefront API base URL")
	flags.StringVar(&opts.apiKey, "api-key", os.Getenv("SHOP_API_KEY"), "API key with the coupons:read scope")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "API request timeout")

	with := func(fn backendFunc) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			b, err := open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer b.close()
			return fn(cmd, b, args)
		}
	}

	cmd.AddCommand(newCouponsCmd(with), newQuoteCmd(with))
	return cmd
}
