package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (BOUTIQUE_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (BOUTIQUE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Stripe      StripeConfig
	Checkout    CheckoutConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// StripeConfig holds the payment processor settings.
type StripeConfig struct {
	SecretKey     string `usage:"Stripe secret API key (BOUTIQUE_STRIPE_SECRET_KEY)" flag:"stripe-secret-key"`
	WebhookSecret string `usage:"Stripe webhook signing secret (BOUTIQUE_STRIPE_WEBHOOK_SECRET)" flag:"stripe-webhook-secret"`
	SuccessURL    string `default:"https://boutique.example.fr/commande/confirmation" usage:"Redirect URL after successful payment" flag:"stripe-success-url"`
	CancelURL     string `default:"https://boutique.example.fr/panier" usage:"Redirect URL after cancelled payment" flag:"stripe-cancel-url"`
}

// CheckoutConfig controls checkout business settings.
type CheckoutConfig struct {
	// AllowedCountries is the shipping/billing country allow-list
	// (ISO 3166-1 alpha-2).
	AllowedCountries []string `default:"FR,BE,LU,CH,MC" usage:"Permitted shipping/billing countries" flag:"allowed-countries"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "BOUTIQUE",
		Files:     []string{"config.yaml", "/etc/boutique/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set BOUTIQUE_DATABASE_URL or DATABASE_URL")
	}
	if cfg.Stripe.SecretKey == "" {
		return nil, errors.New("Stripe secret key is required: set BOUTIQUE_STRIPE_SECRET_KEY")
	}
	if cfg.Stripe.WebhookSecret == "" {
		return nil, errors.New("Stripe webhook secret is required: set BOUTIQUE_STRIPE_WEBHOOK_SECRET")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like DATABASE_URL and
// PORT to the application's BOUTIQUE_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
