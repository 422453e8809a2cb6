// Command seed-db applies the database schema and inserts a handful of demo
// coupons, so a fresh environment can place discounted orders immediately.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/optivem/eshop-backend/internal/domain/coupon"
	"github.com/optivem/eshop-backend/internal/repository"
)

func main() {
	var databaseURL string
	flag.StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	flag.Parse()

	lg := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if databaseURL == "" {
		lg.Error("missing -database-url (or DATABASE_URL)")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, lg, databaseURL); err != nil {
		lg.Error("seed failed", "err", err)
		os.Exit(1)
	}
	lg.Info("seed completed")
}

func run(ctx context.Context, lg *slog.Logger, databaseURL string) error {
	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := repository.NewCouponRepository(pool)
	nextYear := time.Now().AddDate(1, 0, 0)
	limit10 := 10

	seeds := []coupon.Coupon{
		{Code: "WELCOME10", DiscountRate: decimal.RequireFromString("0.10")},
		{Code: "SUMMER25", DiscountRate: decimal.RequireFromString("0.25"), ValidTo: &nextYear},
		{Code: "VIP50", DiscountRate: decimal.RequireFromString("0.50"), UsageLimit: &limit10},
	}

	for _, c := range seeds {
		exists, err := repo.Exists(ctx, c.Code)
		if err != nil {
			return errors.Wrapf(err, "check coupon %q", c.Code)
		}
		if exists {
			lg.Info("coupon already seeded", "code", c.Code)
			continue
		}
		if err := repo.Create(ctx, &c); err != nil {
			return errors.Wrapf(err, "create coupon %q", c.Code)
		}
		lg.Info("seeded coupon", "code", c.Code, "rate", c.DiscountRate.String())
	}

	return nil
}
