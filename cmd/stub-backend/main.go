// Command stub-backend serves the in-memory storefront backend locally so
// the client library and the demo runner have something to talk to.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/openboutik/storefront-go/internal/customer"
	"github.com/openboutik/storefront-go/internal/stubapi"
	"github.com/openboutik/storefront-go/pkg/health"
	"github.com/openboutik/storefront-go/pkg/httpmiddleware"
)

// Config holds the stub backend configuration, loadable from environment
// variables (STUB_ prefix), flags, or YAML config files.
type Config struct {
	Addr            string        `default:"0.0.0.0:8080" usage:"Listen address"`
	CORSOrigins     []string      `usage:"Allowed CORS origins (empty allows all)" flag:"cors-origins"`
	ShutdownTimeout time.Duration `default:"10s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		var cfg Config
		loader := aconfig.LoaderFor(&cfg, aconfig.Config{
			EnvPrefix: "STUB",
			Files:     []string{"stub.yaml"},
			FileDecoders: map[string]aconfig.FileDecoder{
				".yaml": aconfigyaml.New(),
			},
		})
		if err := loader.Load(); err != nil {
			return errors.Wrap(err, "load config")
		}
		if port := os.Getenv("PORT"); port != "" && cfg.Addr == "0.0.0.0:8080" {
			cfg.Addr = "0.0.0.0:" + port
		}
		return run(ctx, lg, &cfg)
	})
}

func run(ctx context.Context, lg *zap.Logger, cfg *Config) error {
	healthSvc := health.New()
	healthSvc.AddCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	backend := stubapi.New(demoCatalog())
	// Known session for local experiments: pickup-eligible profile with a
	// saved address.
	backend.RegisterProfile("demo-token", customer.Profile{
		Name:  "Awa Diop",
		Email: "awa@example.sn",
		Phone: "+221771234567",
		Address: customer.Address{
			Address:    "12 Rue Carnot",
			City:       "Dakar",
			PostalCode: "10000",
		},
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/", backend.Handler())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(
			otelhttp.NewHandler(mux, "stub-backend"),
			httpmiddleware.CORS(cfg.CORSOrigins),
		),
	}

	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Stub backend listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

func demoCatalog() []stubapi.Product {
	return []stubapi.Product{
		{ID: "wax-001", Name: "Wax print fabric 6 yards", SKU: "WAX-001", ImageURL: "/images/wax-001.jpg", UnitPrice: 20000, Stock: 25},
		{ID: "shea-002", Name: "Raw shea butter 500g", SKU: "SHE-002", ImageURL: "/images/shea-002.jpg", UnitPrice: 4500, Stock: 100},
		{ID: "basket-003", Name: "Woven storage basket", SKU: "BSK-003", ImageURL: "/images/basket-003.jpg", UnitPrice: 12500, Stock: 8},
		{ID: "bogolan-004", Name: "Bogolan mudcloth throw", SKU: "BGL-004", ImageURL: "/images/bogolan-004.jpg", UnitPrice: 35000, Stock: 3},
	}
}
