package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/GTDGit/payrelay/internal/models"
	"github.com/GTDGit/payrelay/internal/signature"
)

// Config holds all application configuration loaded from environment variables.
// It is built once at startup and not modified afterwards.
type Config struct {
	Port string
	Env  string

	Merchant MerchantConfig
	Gateway  GatewayConfig
	Dispatch DispatchConfig
	Invoice  InvoiceConfig
	Redis    RedisConfig

	AllowedOrigins []string
}

// MerchantConfig identifies the merchant to the payment gateway and carries
// the shared secret used for signing and verification.
type MerchantConfig struct {
	ID                string
	SecretKey         []byte
	Scheme            signature.Scheme
	CurrencyCode      string
	FrontendReturnURL string
	BackendReturnURL  string
}

// GatewayConfig contains payment gateway endpoints and request defaults.
type GatewayConfig struct {
	PaymentURL   string
	TokenURL     string
	Version      string
	Channels     models.Channels
	AmountFormat string // "minor" or "decimal"
	Timeout      time.Duration
}

// DispatchConfig contains downstream collaborator endpoints and retry policy.
type DispatchConfig struct {
	OrderURL  string
	TicketURL string
	Timeout   time.Duration
	Retries   int
	Backoff   time.Duration
}

// InvoiceConfig controls invoice number generation.
type InvoiceConfig struct {
	Prefix string
	NodeID int64
}

// RedisConfig contains Redis connection parameters. An empty Host disables
// the callback replay guard.
type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	ReplayTTL time.Duration
}

// Enabled reports whether Redis is configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// Amount formats understood by AMOUNT_FORMAT.
const (
	AmountFormatMinor   = "minor"
	AmountFormatDecimal = "decimal"
)

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "5000")
	cfg.Env = getEnv("ENV", "development")
	cfg.AllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "https://buynow-aquaverse.webflow.io"))

	// Merchant
	scheme, err := signature.ParseScheme(getEnv("SIGNING_SCHEME", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid SIGNING_SCHEME: %w", err)
	}
	cfg.Merchant = MerchantConfig{
		ID:                getEnv("MERCHANT_ID", ""),
		SecretKey:         []byte(getEnv("SECRET_KEY", "")),
		Scheme:            scheme,
		CurrencyCode:      getEnv("CURRENCY_CODE", "764"),
		FrontendReturnURL: getEnv("FRONTEND_RETURN_URL", ""),
		BackendReturnURL:  getEnv("BACKEND_RETURN_URL", ""),
	}

	// Gateway
	cfg.Gateway = GatewayConfig{
		PaymentURL:   getEnv("PAYMENT_URL", ""),
		TokenURL:     getEnv("GATEWAY_TOKEN_URL", ""),
		Version:      getEnv("GATEWAY_VERSION", "8.5"),
		Channels:     models.ParseChannels(getEnv("PAYMENT_CHANNELS", "ALL")),
		AmountFormat: getEnv("AMOUNT_FORMAT", AmountFormatMinor),
	}
	if cfg.Gateway.Timeout, err = parseDurationEnv("GATEWAY_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid GATEWAY_TIMEOUT: %w", err)
	}

	// Downstream dispatch
	cfg.Dispatch = DispatchConfig{
		OrderURL:  getEnv("ORDER_API_URL", ""),
		TicketURL: getEnv("TICKET_WEBHOOK_URL", ""),
		Retries:   getEnvInt("DISPATCH_RETRIES", 1),
	}
	if cfg.Dispatch.Timeout, err = parseDurationEnv("DISPATCH_TIMEOUT", "5s"); err != nil {
		return nil, fmt.Errorf("invalid DISPATCH_TIMEOUT: %w", err)
	}
	if cfg.Dispatch.Backoff, err = parseDurationEnv("DISPATCH_BACKOFF", "500ms"); err != nil {
		return nil, fmt.Errorf("invalid DISPATCH_BACKOFF: %w", err)
	}

	// Invoice numbers
	cfg.Invoice = InvoiceConfig{
		Prefix: getEnv("INVOICE_PREFIX", "INV"),
		NodeID: int64(getEnvInt("INVOICE_NODE_ID", 1)),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}
	if cfg.Redis.ReplayTTL, err = parseDurationEnv("CALLBACK_REPLAY_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid CALLBACK_REPLAY_TTL: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Merchant.SecretKey) == 0 {
		return errors.New("SECRET_KEY must be set")
	}
	if c.Merchant.ID == "" {
		return errors.New("MERCHANT_ID must be set")
	}
	if c.Gateway.AmountFormat != AmountFormatMinor && c.Gateway.AmountFormat != AmountFormatDecimal {
		return fmt.Errorf("invalid AMOUNT_FORMAT %q: use %q or %q", c.Gateway.AmountFormat, AmountFormatMinor, AmountFormatDecimal)
	}
	if len(c.Gateway.Channels) == 0 {
		return errors.New("PAYMENT_CHANNELS must name at least one channel")
	}
	if c.Gateway.TokenURL != "" && c.Merchant.Scheme != signature.SchemeToken {
		return errors.New("GATEWAY_TOKEN_URL requires SIGNING_SCHEME=jwt")
	}
	if c.Dispatch.Timeout <= 0 {
		return errors.New("DISPATCH_TIMEOUT must be > 0")
	}
	if c.Dispatch.Retries < 0 {
		return errors.New("DISPATCH_RETRIES must be >= 0")
	}
	if c.Invoice.NodeID < 0 || c.Invoice.NodeID > 1023 {
		return errors.New("INVOICE_NODE_ID must be between 0 and 1023")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
