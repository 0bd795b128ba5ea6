package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, keys), security settings
// - default: Values common across all environments (timezone, TTLs, schedules), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
	Lease   LeaseConfig
	Pricing PricingConfig
	Payment PaymentConfig
	MQ      MQConfig
	Jobs    JobsConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

type LeaseConfig struct {
	TTL time.Duration `envconfig:"LEASE_TTL" default:"5m"`
}

type PricingConfig struct {
	HourlyRateCents int64  `envconfig:"PRICING_HOURLY_RATE_CENTS" default:"100000"`
	Currency        string `envconfig:"PRICING_CURRENCY" default:"thb"`
}

type PaymentConfig struct {
	OmisePublicKey string `envconfig:"OMISE_PUBLIC_KEY" required:"true"`
	OmiseSecretKey string `envconfig:"OMISE_SECRET_KEY" required:"true"`
	SourceType     string `envconfig:"OMISE_SOURCE_TYPE" default:"promptpay"`
	ReturnURI      string `envconfig:"OMISE_RETURN_URI" default:""`
}

type MQConfig struct {
	URL               string   `envconfig:"RABBIT_URL" required:"true"`
	BookingExchange   string   `envconfig:"BOOKING_EXCHANGE" default:"booking.exchange"`
	PaymentExchange   string   `envconfig:"PAYMENT_EXCHANGE" default:"payment.exchange"`
	PaymentQueue      string   `envconfig:"PAYMENT_QUEUE" default:"booking.payment-results"`
	PaymentRoutingKey []string `envconfig:"PAYMENT_ROUTING_KEYS" default:"payment.paid,payment.failed"`
}

type JobsConfig struct {
	OutboxRelaySpec   string `envconfig:"JOB_OUTBOX_RELAY_SPEC" default:"@every 5s"`
	OutboxBatchSize   int32  `envconfig:"JOB_OUTBOX_BATCH_SIZE" default:"100"`
	CheckoutSweepSpec string `envconfig:"JOB_CHECKOUT_SWEEP_SPEC" default:"@every 1m"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings envconfig accepts but the booking flow cannot run with.
func (c Config) Validate() error {
	if c.Lease.TTL <= 0 {
		return fmt.Errorf("LEASE_TTL must be positive, got %s", c.Lease.TTL)
	}
	if c.Pricing.HourlyRateCents <= 0 {
		return fmt.Errorf("PRICING_HOURLY_RATE_CENTS must be positive, got %d", c.Pricing.HourlyRateCents)
	}
	if len(c.Pricing.Currency) != 3 {
		return fmt.Errorf("PRICING_CURRENCY must be an ISO 4217 code, got %q", c.Pricing.Currency)
	}
	if d, err := time.ParseDuration(c.JWT.Duration); err != nil || d <= 0 {
		return fmt.Errorf("JWT_DURATION must be a positive duration, got %q", c.JWT.Duration)
	}
	if c.Jobs.OutboxBatchSize <= 0 {
		return fmt.Errorf("JOB_OUTBOX_BATCH_SIZE must be positive, got %d", c.Jobs.OutboxBatchSize)
	}
	return nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 20,
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeZone:   "UTC",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: "1h",
		},
		Lease: LeaseConfig{
			TTL: 5 * time.Minute,
		},
		Pricing: PricingConfig{
			HourlyRateCents: 100000,
			Currency:        "thb",
		},
		Jobs: JobsConfig{
			OutboxRelaySpec:   "@every 5s",
			OutboxBatchSize:   100,
			CheckoutSweepSpec: "@every 1m",
		},
	}
}
