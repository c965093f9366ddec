package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const devAuthSecret = "dev-secret-change-in-production"

// Load reads .env from the current directory and sets env vars.
// Safe to call multiple times; existing env vars are not overwritten.
func Load() error {
	return godotenv.Load()
}

// GeminiAPIKey returns the Google Gemini API key used for grading calls.
func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

// DatabaseDSN returns the Postgres connection string.
func DatabaseDSN() string {
	if v := os.Getenv("SIMCLINIC_DATABASE_DSN"); v != "" {
		return v
	}
	return "host=localhost user=postgres password=postgres dbname=simclinic port=5432 sslmode=disable TimeZone=UTC"
}

// AuthSecret returns the secret for verifying student bearer tokens (SIMCLINIC_AUTH_SECRET).
// If unset, returns a dev default and callers should log a warning.
func AuthSecret() string {
	s := os.Getenv("SIMCLINIC_AUTH_SECRET")
	if s == "" {
		return devAuthSecret
	}
	return s
}

// ServiceKey returns the shared key gating internal service-to-service routes.
func ServiceKey() string {
	return os.Getenv("SIMCLINIC_SERVICE_KEY")
}

// PromptMessagesLimit returns the max number of transcript messages rendered
// into a grading prompt. Longer transcripts keep their most recent messages.
func PromptMessagesLimit() int {
	if v := os.Getenv("SIMCLINIC_PROMPT_MESSAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultPromptMessages
}
