// Command stub-services runs in-process stand-ins for the three external
// systems the API depends on: the ERP pricing system, the tax system, and the
// stub time provider. It exists for local development and integration tests,
// where the API runs with --external-mode=stub.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"
)

var products = map[string]string{
	"ABC":     "50.00",
	"DEF":     "19.99",
	"LAPTOP1": "1299.00",
	"MOUSE2":  "24.50",
}

var countries = map[string]string{
	"US": "0.08",
	"DE": "0.19",
	"GB": "0.20",
	"JP": "0.10",
}

func main() {
	var (
		erpAddr   = flag.String("erp-addr", ":9001", "ERP stub listen address")
		taxAddr   = flag.String("tax-addr", ":9002", "tax stub listen address")
		clockAddr = flag.String("clock-addr", ":9003", "clock stub listen address")
		fixedTime = flag.String("time", "", "fixed RFC3339 instant returned by the clock stub (default: live time)")
	)
	flag.Parse()

	lg := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var clockAt time.Time
	if *fixedTime != "" {
		t, err := time.Parse(time.RFC3339, *fixedTime)
		if err != nil {
			lg.Error("invalid -time value", "value", *fixedTime, "err", err)
			os.Exit(1)
		}
		clockAt = t
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	runServer(ctx, g, lg, "erp", *erpAddr, erpMux())
	runServer(ctx, g, lg, "tax", *taxAddr, taxMux())
	runServer(ctx, g, lg, "clock", *clockAddr, clockMux(clockAt))

	if err := g.Wait(); err != nil {
		lg.Error("stub services failed", "err", err)
		os.Exit(1)
	}
}

// runServer starts srv on the group and shuts it down when ctx is cancelled.
func runServer(ctx context.Context, g *errgroup.Group, lg *slog.Logger, name, addr string, mux *http.ServeMux) {
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: time.Second}

	g.Go(func() error {
		lg.Info("stub listening", "system", name, "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

func erpMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products/{sku}", func(w http.ResponseWriter, r *http.Request) {
		sku := r.PathValue("sku")
		price, ok := products[sku]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, map[string]string{"sku": sku, "price": price})
	})
	return mux
}

func taxMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/countries/{country}", func(w http.ResponseWriter, r *http.Request) {
		country := r.PathValue("country")
		rate, ok := countries[country]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, map[string]string{"country": country, "taxRate": rate})
	})
	return mux
}

func clockMux(fixed time.Time) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/time", func(w http.ResponseWriter, _ *http.Request) {
		now := fixed
		if now.IsZero() {
			now = time.Now().UTC()
		}
		writeJSON(w, map[string]string{"time": now.Format(time.RFC3339Nano)})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
