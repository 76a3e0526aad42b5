package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL       string
	AIAPIKey          string
	GenModel          string
	JWTSecret         string
	GoogleClientID    string
	PaymentSecret     string
	AwsAccessKey      string
	AwsSecretKey      string
	AwsRegion         string
	BucketName        string
	Port              string
	Environment       string
	GenerateTimeout   time.Duration
	ChatHistoryTurns  int
}

// LoadConfig loads the environment variables and returns the config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		AIAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GenModel:         getEnv("GEN_MODEL", "gemini-2.0-flash"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		GoogleClientID:   getEnv("GOOGLE_AUTH_CLIENT_ID", ""),
		PaymentSecret:    getEnv("PAYMENT_GATEWAY_SECRET", ""),
		AwsAccessKey:     getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:     getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:        getEnv("AWS_REGION", "us-east-2"),
		BucketName:       getEnv("BUCKET_NAME", "boltgen-exports"),
		Port:             getEnv("PORT", "8080"),
		Environment:      getEnv("ENVIRONMENT", "production"),
		GenerateTimeout:  getEnvDuration("GENERATE_TIMEOUT", 25*time.Second),
		ChatHistoryTurns: getEnvInt("CHAT_HISTORY_TURNS", 10),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	return cfg
}

// IsDevelopment reports whether the service runs with development fallbacks
// (for example returning raw text when the code backend emits unparseable JSON).
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a duration, using default %s", key, v, def)
		return def
	}
	return d
}
