package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Addr     string
	LogLevel string

	DatabaseURL string

	AccessSecret  []byte
	RefreshSecret []byte

	BcryptCost int

	RequireEmailVerification bool
	FrontendURL              string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	KafkaBrokers []string
	KafkaTopic   string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v, using system environment", err)
	}

	return &Config{
		Addr:     envDefault("ADDR", ":8080"),
		LogLevel: envDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		AccessSecret:  []byte(os.Getenv("JWT_SECRET")),
		RefreshSecret: []byte(os.Getenv("REFRESH_SECRET")),

		BcryptCost: envIntDefault("BCRYPT_COST", bcrypt.DefaultCost),

		RequireEmailVerification: envBool("REQUIRE_EMAIL_VERIFICATION"),
		FrontendURL:              envDefault("FRONTEND_URL", "http://localhost:3000"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: envDefault("SMTP_PORT", "587"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: os.Getenv("SMTP_FROM"),

		KafkaBrokers: csv(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   envDefault("KAFKA_TOPIC", "user_events"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    envDefault("ES_INDEX", "users"),
	}
}

// Validate enforces the startup invariants: both token secrets are set and
// access tokens are never signed with the refresh secret or vice versa.
func (c *Config) Validate() error {
	if len(c.AccessSecret) == 0 {
		return errors.New("missing required env JWT_SECRET")
	}
	if len(c.RefreshSecret) == 0 {
		return errors.New("missing required env REFRESH_SECRET")
	}
	if string(c.AccessSecret) == string(c.RefreshSecret) {
		return errors.New("JWT_SECRET and REFRESH_SECRET must differ")
	}
	if c.DatabaseURL == "" {
		return errors.New("missing required env DATABASE_URL")
	}
	return nil
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntDefault(key string, def int) int {
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

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func csv(v string) []string {
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
