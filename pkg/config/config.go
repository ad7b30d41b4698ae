package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"

	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
)

const (
	// EnvPrefix is empty: every variable carries the full STOREFRONT_ name
	// in its envconfig tag.
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Config holds all runtime configuration. Values come from the environment;
// secrets (DB password, gateway passphrase, JWT secret) are never logged.
type Config struct {
	AppEnv      string `envconfig:"STOREFRONT_APP_ENV" default:"development"`
	ServiceName string `envconfig:"STOREFRONT_SERVICE_NAME" default:"storefront-api"`

	HTTP      HTTPConfig
	DB        DBConfig
	Redis     RedisConfig
	PayFast   PayFastConfig
	AdminAuth AdminAuthConfig
	Outbox    OutboxConfig
	PubSub    PubSubConfig
	Cron      CronConfig
	RateLimit RateLimitConfig
}

type HTTPConfig struct {
	Port            int           `envconfig:"STOREFRONT_HTTP_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"STOREFRONT_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"STOREFRONT_HTTP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"STOREFRONT_HTTP_SHUTDOWN_TIMEOUT" default:"20s"`
}

type DBConfig struct {
	DSN string `envconfig:"STOREFRONT_DB_DSN"`

	// Legacy parts, used only when DSN is unset.
	Host     string `envconfig:"STOREFRONT_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	User     string `envconfig:"STOREFRONT_DB_USER" default:"postgres"`
	Password string `envconfig:"STOREFRONT_DB_PASSWORD"`
	Name     string `envconfig:"STOREFRONT_DB_NAME" default:"storefront"`
	SSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"30m"`
}

type RedisConfig struct {
	Addr     string `envconfig:"STOREFRONT_REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB       int    `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
}

// PayFastConfig carries the gateway credentials. MerchantKey and Passphrase
// are secrets.
type PayFastConfig struct {
	MerchantID  string `envconfig:"STOREFRONT_PAYFAST_MERCHANT_ID" required:"true"`
	MerchantKey string `envconfig:"STOREFRONT_PAYFAST_MERCHANT_KEY" required:"true"`
	Passphrase  string `envconfig:"STOREFRONT_PAYFAST_PASSPHRASE" required:"true"`

	ProcessURL string `envconfig:"STOREFRONT_PAYFAST_PROCESS_URL" default:"https://sandbox.payfast.co.za/eng/process"`
	ReturnURL  string `envconfig:"STOREFRONT_PAYFAST_RETURN_URL" required:"true"`
	CancelURL  string `envconfig:"STOREFRONT_PAYFAST_CANCEL_URL" required:"true"`
	NotifyURL  string `envconfig:"STOREFRONT_PAYFAST_NOTIFY_URL" required:"true"`
}

type AdminAuthConfig struct {
	// APIKeyHash is an argon2id encoding of the admin API key.
	APIKeyHash    string        `envconfig:"STOREFRONT_ADMIN_API_KEY_HASH"`
	JWTSecret     string        `envconfig:"STOREFRONT_ADMIN_JWT_SECRET"`
	JWTIssuer     string        `envconfig:"STOREFRONT_ADMIN_JWT_ISSUER" default:"storefront-backend"`
	TokenLifetime time.Duration `envconfig:"STOREFRONT_ADMIN_TOKEN_LIFETIME" default:"1h"`
}

type OutboxConfig struct {
	PollInterval time.Duration `envconfig:"STOREFRONT_OUTBOX_POLL_INTERVAL" default:"5s"`
	BatchSize    int           `envconfig:"STOREFRONT_OUTBOX_BATCH_SIZE" default:"50"`
	MaxAttempts  int           `envconfig:"STOREFRONT_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type PubSubConfig struct {
	ProjectID        string `envconfig:"STOREFRONT_PUBSUB_PROJECT_ID"`
	OrderEventsTopic string `envconfig:"STOREFRONT_PUBSUB_ORDER_EVENTS_TOPIC" default:"order-events"`
	ReportsSub       string `envconfig:"STOREFRONT_PUBSUB_REPORTS_SUBSCRIPTION" default:"order-events.reports"`
}

type CronConfig struct {
	SweepInterval time.Duration `envconfig:"STOREFRONT_CRON_SWEEP_INTERVAL" default:"10m"`
	SweepLookback time.Duration `envconfig:"STOREFRONT_CRON_SWEEP_LOOKBACK" default:"72h"`
	LockTTL       time.Duration `envconfig:"STOREFRONT_CRON_LOCK_TTL" default:"5m"`
}

type RateLimitConfig struct {
	CheckoutPerMinute int `envconfig:"STOREFRONT_RATE_CHECKOUT_PER_MINUTE" default:"30"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "process environment config")
	}
	cfg.DB.ensureDSN()
	return &cfg, nil
}

// IsDev reports whether the app runs in development mode.
func (c *Config) IsDev() bool {
	return c.AppEnv == AppEnvDev
}

// ensureDSN builds a postgres URL from the legacy parts when no DSN was
// provided.
func (d *DBConfig) ensureDSN() {
	if d.DSN != "" {
		return
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
}

// Hostname is a convenience for log fields.
func Hostname() string {
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return host
}
