package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	ServiceName string
	LogLevel    string

	ServerPort int

	DatabaseURL string

	JWTAccessSecret []byte
	AuthHTTPURL     string
	SecureCookies   bool

	KafkaBrokers []string

	RedisAddr     string
	RedisPassword string

	// requests per user per minute on checkout and discount preview
	CheckoutRateLimit int
	// used when a checkout request does not carry its own shipping fee
	DefaultShippingFee string
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "apparel-shop"),
		LogLevel:    os.Getenv("LOG_LEVEL"),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTAccessSecret: []byte(os.Getenv("JWT_SECRET")),
		AuthHTTPURL:     os.Getenv("AUTH_URL"),
		SecureCookies:   os.Getenv("COOKIE_SECURE") == "true",

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		CheckoutRateLimit:  EnvIntDefault("CHECKOUT_RATE_LIMIT", 10),
		DefaultShippingFee: EnvDefault("DEFAULT_SHIPPING_FEE", "0"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
