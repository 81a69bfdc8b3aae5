package configs

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	DBDriver string
	DBSource string
	SeedDemo bool

	AuthAudience string
	AuthIssuer   string

	StripeAPIKey        string
	StripeWebhookSecret string
	Currency            string
	FrontendURL         string

	CloudinaryURL string
	UploadDir     string

	RedisAddr string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LoadConfig reads an optional .env file and then the environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env", "err", err)
	}

	return &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "7000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DBSource: getEnv("DB_SOURCE", "foodorder.db"),
		SeedDemo: getEnv("SEED_DEMO", "") == "true",

		AuthAudience: os.Getenv("AUTH0_AUDIENCE"),
		AuthIssuer:   normalizeIssuer(os.Getenv("AUTH0_ISSUER_BASE_URL")),

		StripeAPIKey:        os.Getenv("STRIPE_API_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:            strings.ToLower(getEnv("CURRENCY", "gbp")),
		FrontendURL:         strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),

		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		ReadTimeout:  getDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
	}
}

// Validate reports every setting the API server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.AuthAudience == "" {
		errs = append(errs, errors.New("missing env: AUTH0_AUDIENCE"))
	}
	if c.AuthIssuer == "" {
		errs = append(errs, errors.New("missing env: AUTH0_ISSUER_BASE_URL"))
	}
	if c.StripeAPIKey == "" {
		errs = append(errs, errors.New("missing env: STRIPE_API_KEY"))
	}
	switch c.DBDriver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, errors.New("DB_DRIVER must be sqlite or mysql"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// JWKSURL is where the identity provider publishes its signing keys.
func (c *Config) JWKSURL() string {
	return c.AuthIssuer + ".well-known/jwks.json"
}

func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration, using default", "key", key, "value", v)
		return fallback
	}
	return d
}

// issuer claims carry a trailing slash
func normalizeIssuer(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimRight(s, "/") + "/"
}
