package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("CHECKOUT_RATE_LIMIT", "not-a-number")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("DEFAULT_SHIPPING_FEE", "")

	cfg := Load()

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 10, cfg.CheckoutRateLimit)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "0", cfg.DefaultShippingFee)
}

func TestEnvIntDefault(t *testing.T) {
	t.Setenv("SOME_INT", "42")
	assert.Equal(t, 42, EnvIntDefault("SOME_INT", 1))
	assert.Equal(t, 7, EnvIntDefault("SOME_MISSING_INT", 7))
}

func TestValidate(t *testing.T) {
	cfg := Config{ServerPort: 8080, CheckoutRateLimit: 10}

	err := cfg.Validate()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "DATABASE_URL")
		assert.Contains(t, err.Error(), "JWT_SECRET")
	}

	cfg.DatabaseURL = "postgres://shop@localhost/shop"
	cfg.JWTAccessSecret = []byte("s")
	assert.NoError(t, cfg.Validate())

	cfg.CheckoutRateLimit = 0
	assert.ErrorContains(t, cfg.Validate(), "CHECKOUT_RATE_LIMIT")
}
