package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.18, cfg.Booking.TaxRate)
	assert.Equal(t, "LB", cfg.Booking.UUIDPrefix)
	assert.True(t, cfg.Booking.StrictPromoMinimum)
	assert.Equal(t, "booking-notifications", cfg.Kafka.NotificationTopic)
	assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "leisure")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("BOOKING_TAX_RATE", "0.05")
	t.Setenv("BOOKING_STRICT_PROMO_MINIMUM", "false")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("RATE_LIMIT_BURST", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 0.05, cfg.Booking.TaxRate)
	assert.False(t, cfg.Booking.StrictPromoMinimum)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, 7, cfg.RateLimit.Burst)
	assert.Contains(t, cfg.Database.DSN(), "@tcp(db.internal:3306)/leisure?")
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("BOOKING_TAX_RATE", "eighteen")

	_, err := Load()
	assert.Error(t, err)
}

func TestSMTPEnabled(t *testing.T) {
	assert.False(t, SMTPConfig{}.Enabled())
	assert.True(t, SMTPConfig{Host: "smtp.example.com", Username: "bot"}.Enabled())
}
