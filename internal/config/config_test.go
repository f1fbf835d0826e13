package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "rental", cfg.DBConfig.DBName)
	assert.Equal(t, 15*time.Minute, cfg.JWTConfig.AccessDuration)
	assert.Equal(t, 5*time.Minute, cfg.RedisConfig.TTL)
	assert.False(t, cfg.KafkaConfig.Enabled)
	assert.Equal(t, "xof", cfg.PaymentConfig.Currency)
	assert.Contains(t, cfg.Warnings(), "RENTAL_STRIPE_WEBHOOK_SECRET is not set; payment webhooks will be rejected")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RENTAL_SERVICE_PORT", "9090")
	t.Setenv("RENTAL_APP_ENV", "development")
	t.Setenv("RENTAL_PUBLIC_BASE_URL", "https://stays.example/")
	t.Setenv("RENTAL_KAFKA_ENABLED", "true")
	t.Setenv("RENTAL_KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("RENTAL_SMTP_PORT", "465")
	t.Setenv("RENTAL_STRIPE_WEBHOOK_SECRET", "whsec_test")
	t.Setenv("RENTAL_STRIPE_SECRET_KEY", "sk_test")
	t.Setenv("RENTAL_JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "https://stays.example", cfg.PublicBaseURL)
	assert.True(t, cfg.KafkaConfig.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaConfig.Brokers)
	assert.Equal(t, 465, cfg.SMTPConfig.Port)
	assert.Empty(t, cfg.Warnings())
}
