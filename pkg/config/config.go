package config

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

type Config struct {
	CompletionsAPIURL string
	CompletionsAPIKey string
	CompletionsModel  string
	ExtractionModel   string
	HTTPPort          string
	DBPath            string
	JWTSecret         string
	NatsURL           string
	EmbeddedNats      bool
}

func getEnv(key, defaultValue string, printEnv bool) string {
	logger := log.Default()
	value := os.Getenv(key)
	if printEnv {
		logger.Info("Env", "key", key, "value", value)
	}
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvOrPanic(key string, printEnv bool) string {
	value := getEnv(key, "", printEnv)
	if value == "" {
		panic(fmt.Sprintf("Environment variable %s is not set", key))
	}
	return value
}

func LoadConfig(printEnv bool) (*Config, error) {
	_ = godotenv.Load()

	conf := &Config{
		CompletionsAPIURL: getEnv("COMPLETIONS_API_URL", "https://api.openai.com/v1", printEnv),
		CompletionsAPIKey: getEnv("COMPLETIONS_API_KEY", "", printEnv),
		CompletionsModel:  getEnv("COMPLETIONS_MODEL", "gpt-4o-mini", printEnv),
		ExtractionModel:   getEnv("EXTRACTION_MODEL", "gpt-4o-mini", printEnv),
		HTTPPort:          getEnv("HTTP_PORT", "8090", printEnv),
		DBPath:            getEnv("DB_PATH", "./output/sqlite/studybuddy.db", printEnv),
		JWTSecret:         getEnvOrPanic("JWT_SECRET", false),
		NatsURL:           getEnv("NATS_URL", "nats://127.0.0.1:4222", printEnv),
		EmbeddedNats:      getEnv("EMBEDDED_NATS", "true", printEnv) == "true",
	}

	return conf, nil
}
