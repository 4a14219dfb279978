package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server    ServerConfig    `envconfig:"SERVER"`
	Database  DatabaseConfig  `envconfig:"DB"`
	Kafka     KafkaConfig     `envconfig:"KAFKA"`
	Redis     RedisConfig     `envconfig:"REDIS"`
	Stripe    StripeConfig    `envconfig:"STRIPE"`
	SMTP      SMTPConfig      `envconfig:"SMTP"`
	Auth      AuthConfig      `envconfig:"JWT"`
	RateLimit RateLimitConfig `envconfig:"RATE_LIMIT"`
	Log       LogConfig       `envconfig:"LOG"`
	Booking   BookingConfig   `envconfig:"BOOKING"`

	// StoreDriver selects the persistence backend: "mysql" or "memory".
	StoreDriver string `envconfig:"STORE_DRIVER" default:"mysql"`
}

type ServerConfig struct {
	Port         string        `envconfig:"PORT" default:":8085"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
}

type DatabaseConfig struct {
	Host         string        `envconfig:"HOST" default:"localhost"`
	Port         string        `envconfig:"PORT" default:"3306"`
	Username     string        `envconfig:"USER" default:"root"`
	Password     string        `envconfig:"PASS" default:"password"`
	Database     string        `envconfig:"NAME" default:"bookings"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns int           `envconfig:"MAX_IDLE_CONNS" default:"5"`
	MaxLifetime  time.Duration `envconfig:"MAX_LIFETIME" default:"5m"`
	AutoMigrate  bool          `envconfig:"AUTO_MIGRATE" default:"true"`
	// LockWaitTimeout bounds how long a confirm waits on a contended slot row.
	LockWaitTimeout time.Duration `envconfig:"LOCK_WAIT_TIMEOUT" default:"10s"`
}

// DSN builds the go-sql-driver/mysql connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC&clientFoundRows=true&innodb_lock_wait_timeout=%d",
		d.Username, d.Password, d.Host, d.Port, d.Database, int(d.LockWaitTimeout.Seconds()))
}

type KafkaConfig struct {
	Brokers           []string `envconfig:"BROKERS" default:"localhost:29092"`
	GroupID           string   `envconfig:"GROUP_ID" default:"booking-service"`
	MockMode          bool     `envconfig:"MOCK_MODE" default:"true"`
	EventsTopic       string   `envconfig:"EVENTS_TOPIC" default:"booking-events"`
	NotificationTopic string   `envconfig:"NOTIFICATION_TOPIC" default:"booking-notifications"`
}

type RedisConfig struct {
	Addr           string        `envconfig:"ADDR" default:"localhost:6379"`
	Password       string        `envconfig:"PASSWORD"`
	DB             int           `envconfig:"DB" default:"0"`
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
}

type StripeConfig struct {
	SecretKey string `envconfig:"SECRET_KEY"`
	Currency  string `envconfig:"CURRENCY" default:"inr"`
}

type SMTPConfig struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT" default:"587"`
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`
	From     string `envconfig:"FROM" default:"no-reply@leisurebites.local"`
}

// Enabled reports whether outbound email can be attempted.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.Username != ""
}

type AuthConfig struct {
	Secret string `envconfig:"SECRET" default:"dev-secret"`
}

type RateLimitConfig struct {
	RPS   float64 `envconfig:"RPS" default:"100"`
	Burst int     `envconfig:"BURST" default:"100"`
}

type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"text"`
}

type BookingConfig struct {
	TaxRate    float64 `envconfig:"TAX_RATE" default:"0.18"`
	UUIDPrefix string  `envconfig:"UUID_PREFIX" default:"LB"`
	// StrictPromoMinimum zeroes the discount when the order is below the
	// promo code's minimum purchase amount.
	StrictPromoMinimum bool `envconfig:"STRICT_PROMO_MINIMUM" default:"true"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &cfg, nil
}
