package app

import (
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the storefront client configuration, loadable from
// environment variables (BOUTIK_ prefix), flags, or YAML config files.
type Config struct {
	BaseURL string        `default:"http://localhost:8080" usage:"Storefront API base URL" flag:"base-url"`
	Token   string        `usage:"Session bearer token (empty for guest)" flag:"token"`
	Timeout time.Duration `default:"10s" usage:"Per-request timeout"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "BOUTIK",
		Files:     []string{"config.yaml", "/etc/boutik/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required: set BOUTIK_BASE_URL")
	}
	return &cfg, nil
}
