package config

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Env holds the process-level configuration that never belongs in the
// persisted settings file: provider endpoints and credentials, sourced
// from the environment (and an optional .env file in development).
type Env struct {
	OllamaHost   string
	OpenAIAPIKey string
	OpenAIBaseURL string
	LLMBackend   string // "ollama" or "openai"
}

// LoadEnv loads a .env file if present (logging, not failing, when it
// is absent) and reads the environment into an Env.
func LoadEnv(logger *log.Logger) Env {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using process environment")
	}

	backend := os.Getenv("SCRIPTOR_LLM_BACKEND")
	if backend == "" {
		backend = "ollama"
	}

	host := os.Getenv("OLLAMA_HOST")
	if host == "" {
		host = "http://127.0.0.1:11434"
	}

	return Env{
		OllamaHost:    host,
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		LLMBackend:    backend,
	}
}
