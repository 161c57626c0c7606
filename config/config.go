package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	HTTPPort           string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey       string `envconfig:"API_SECRET_KEY"`
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	MaxUploadBytes     int64  `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`

	// Externer Extraktionsdienst (Gemini generateContent)
	GeminiAPIKey  string        `envconfig:"GEMINI_API_KEY" required:"true"`
	GeminiBaseURL string        `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"`
	GeminiTimeout time.Duration `envconfig:"GEMINI_TIMEOUT" default:"60s"`

	S3Key           string        `envconfig:"S3_KEY" required:"true"`
	S3Secret        string        `envconfig:"S3_SECRET" required:"true"`
	S3URL           string        `envconfig:"S3_URL" required:"true"`
	S3Region        string        `envconfig:"S3_REGION" required:"true"`
	S3Bucket        string        `envconfig:"S3_BUCKET" required:"true"`
	S3PresignExpiry time.Duration `envconfig:"S3_PRESIGN_EXPIRY" default:"15m"`

	RedisURL    string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	CachePrefix string        `envconfig:"CACHE_PREFIX" default:"celluiq:"`
	CacheTTL    time.Duration `envconfig:"CACHE_TTL" default:"10m"`

	// Event-Backend: redis, kafka oder none
	EventsBackend string `envconfig:"EVENTS_BACKEND" default:"redis"`
	EventsChannel string `envconfig:"EVENTS_CHANNEL" default:"celluiq.markers-changed"`
	KafkaBrokers  string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaTopic    string `envconfig:"KAFKA_TOPIC" default:"celluiq.markers-changed"`

	// tiered, severity oder simple
	StatusPolicy string `envconfig:"STATUS_POLICY" default:"tiered"`

	ProcessPendingSchedule string `envconfig:"PROCESS_PENDING_SCHEDULE" default:"@every 5m"`
	CatalogRefreshSchedule string `envconfig:"CATALOG_REFRESH_SCHEDULE" default:"0 * * * *"`
	PendingBatchSize       int    `envconfig:"PENDING_BATCH_SIZE" default:"20"`
	PipelineWorkers        int    `envconfig:"PIPELINE_WORKERS" default:"3"`

	BrevoAPIKey   string `envconfig:"BREVO_API_KEY"`
	BrevoBaseURL  string `envconfig:"BREVO_BASE_URL" default:"https://api.brevo.com/v3"`
	BrevoListID   int    `envconfig:"BREVO_LIST_ID" default:"6"`
	WebhookSecret string `envconfig:"WEBHOOK_SECRET"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

// Brokers splits KAFKA_BROKERS into a clean list.
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// AllowedOrigins gibt die CORS-Origins als Liste zurück.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
