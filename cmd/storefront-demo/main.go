// Command storefront-demo drives a full shopping round trip against a
// storefront backend: hydrate the session, add a product, walk the checkout
// flow, and fetch the confirmed order.
package main

import (
	"context"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	appkg "github.com/openboutik/storefront-go/internal/app"
	"github.com/openboutik/storefront-go/internal/cart"
	"github.com/openboutik/storefront-go/internal/checkout"
)

// Config extends the client configuration with the demo scenario knobs.
type Config struct {
	appkg.Config

	Product  string `default:"wax-001" usage:"Product to order"`
	Quantity int    `default:"2" usage:"Quantity to order"`
	Pickup   bool   `usage:"Use in-store pickup instead of delivery"`
}

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		var cfg Config
		loader := aconfig.LoaderFor(&cfg, aconfig.Config{
			EnvPrefix: "BOUTIK",
			Files:     []string{"config.yaml"},
			FileDecoders: map[string]aconfig.FileDecoder{
				".yaml": aconfigyaml.New(),
			},
		})
		if err := loader.Load(); err != nil {
			return errors.Wrap(err, "load config")
		}
		return run(ctx, lg, &cfg)
	})
}

func run(ctx context.Context, lg *zap.Logger, cfg *Config) error {
	sf, err := appkg.New(&cfg.Config)
	if err != nil {
		return err
	}
	if err := sf.Hydrate(ctx); err != nil {
		return errors.Wrap(err, "hydrate session")
	}
	lg.Info("Session hydrated",
		zap.Bool("authenticated", sf.Profile.Authenticated),
		zap.Int("cart_items", sf.Cart.Len()),
		zap.Int("wishlist_items", sf.Wishlist.Len()),
	)

	if res := sf.Cart.Add(ctx, cfg.Product, cfg.Quantity); !res.OK {
		return errors.Errorf("add to cart: %s", res.Message)
	}

	flow := sf.BeginCheckout()
	if cfg.Pickup {
		if res := flow.SetDeliveryMethod(checkout.DeliveryPickup); !res.OK {
			return errors.New(res.Message)
		}
	}
	if res := flow.Proceed(); !res.OK {
		return errors.Errorf("proceed to checkout: %s", res.Message)
	}

	totals := flow.Totals()
	lg.Info("Checkout totals",
		zap.String("subtotal", totals.Subtotal.Format()),
		zap.String("shipping", totals.Shipping.Format()),
		zap.String("total", totals.Total.Format()),
	)

	var res cart.Result
	switch flow.State() {
	case checkout.StateExpressConfirm:
		lg.Info("Express checkout available, accepting")
		res = flow.AcceptExpress(ctx)
	default:
		session := flow.Session()
		session.TermsAccepted = true
		if session.Contact.Name == "" {
			session.Contact = checkout.Contact{
				Name:  "Moussa Ndiaye",
				Email: "moussa@example.sn",
				Phone: "+221761112233",
			}
		}
		if session.DeliveryMethod == checkout.DeliveryHome {
			session.ShippingAddress = checkout.ShippingAddress{
				Address:    "Villa 48, Sicap Liberté 3",
				City:       "Dakar",
				PostalCode: "11500",
			}
		}
		res = flow.Submit(ctx, session)
	}
	if !res.OK {
		for field, msgs := range flow.FieldErrors() {
			lg.Warn("Field error", zap.String("field", field), zap.Strings("messages", msgs))
		}
		return errors.Errorf("place order: %s", res.Message)
	}

	conf := flow.Confirmation()
	order, err := sf.API.GetOrder(ctx, conf.OrderNumber)
	if err != nil {
		return errors.Wrap(err, "fetch order")
	}
	lg.Info("Order confirmed",
		zap.String("order_number", order.OrderNumber),
		zap.String("status", order.Status),
		zap.String("total", order.Total.Format()),
		zap.Int("cart_items_after", sf.Cart.Len()),
	)
	return nil
}
