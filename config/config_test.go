package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "celluiq")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "celluiq")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("S3_KEY", "k")
	t.Setenv("S3_SECRET", "s")
	t.Setenv("S3_URL", "http://localhost:9000")
	t.Setenv("S3_REGION", "eu-central-1")
	t.Setenv("S3_BUCKET", "blood-work")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4242", cfg.HTTPPort)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "tiered", cfg.StatusPolicy)
	assert.Equal(t, 6, cfg.BrevoListID)
	assert.Equal(t, "host=localhost user=celluiq password=secret dbname=celluiq port=5432 sslmode=disable", cfg.DSN())
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	os.Unsetenv("GEMINI_API_KEY")
	_, err := Load()
	assert.Error(t, err)
}

func TestBrokers(t *testing.T) {
	cfg := &Config{KafkaBrokers: " kafka-1:9092, ,kafka-2:9092 "}
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers())

	cfg.CORSAllowedOrigins = "https://app.celluiq.com,https://celluiq.com"
	assert.Equal(t, []string{"https://app.celluiq.com", "https://celluiq.com"}, cfg.AllowedOrigins())
}
