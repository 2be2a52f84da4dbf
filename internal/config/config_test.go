package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("GO_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv("PAYMENT_CURRENCY", "JPY")
	t.Setenv("KAFKA_PUBLISH_TIMEOUT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "development", cfg.GoEnv)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "jpy", cfg.PaymentCurrency)
	assert.Equal(t, 2*time.Second, cfg.KafkaPublishTimeout)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing jwt secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("stripe key required in production", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s")
		t.Setenv("GO_ENV", "production")
		t.Setenv("STRIPE_SECRET_KEY", "")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s")
		t.Setenv("JWT_TTL", "seven days")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bcrypt cost out of range", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s")
		t.Setenv("BCRYPT_COST", "2")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestPostgresDSN(t *testing.T) {
	c := Config{PostgresHost: "db", PostgresPort: 5432, PostgresUser: "u", PostgresPassword: "p", PostgresDB: "shop", PostgresSSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=shop sslmode=disable", c.PostgresDSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.PostgresDSN())
}
