package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	RedisURL string

	MeiliSearchHost string
	MeiliMasterKey  string

	IdentityAPIURL string

	JWTSecret string

	Brand            string
	BaseURL          string
	DefaultAvatarURL string
	PageSize         int
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		RedisURL: os.Getenv("REDIS_URL"),

		MeiliSearchHost: getEnv("MEILISEARCH_HOST", "http://localhost:7700"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		IdentityAPIURL: os.Getenv("IDENTITY_API_URL"),

		JWTSecret: getEnv("JWT_SECRET", "12345"),

		Brand:            getEnv("BRAND", "forumcore"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:8080"),
		DefaultAvatarURL: getEnv("DEFAULT_AVATAR_URL", ""),
		PageSize:         getEnvInt("PAGE_SIZE", 25),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
