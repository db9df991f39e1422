package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds every runtime knob the service reads from the environment.
type Config struct {
	Environment string
	Port        string
	DatabaseURL string
	JWTSecret   string

	// Currency newly created cases bill in (ISO-4217).
	Currency string

	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
}

// Load reads the environment (and an optional .env file) into a Config.
func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		Environment:    getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "3000"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		Currency:       getEnv("DEFAULT_CURRENCY", "USD"),
		SupabaseURL:    getEnv("SUPABASE_URL", ""),
		SupabaseKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseBucket: getEnv("SUPABASE_BUCKET", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

