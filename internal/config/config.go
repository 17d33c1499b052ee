package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig
	Data   DataConfig
	Chat   ChatConfig
	OpenAI OpenAIConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// DataConfig holds cutoff-data file locations
type DataConfig struct {
	Dir       string // directory containing per-round cutoff CSV files
	MarksFile string // marks/percentile/rank reference CSV
}

// ChatConfig holds chat pipeline tuning
type ChatConfig struct {
	HistoryLimit int // max prior turns sent to the model
	ContextLimit int // max cutoff rows rendered into the answer context
	DefaultRound int // round substituted when a cutoff question names none
}

// OpenAIConfig holds OpenAI-compatible API configuration
type OpenAIConfig struct {
	APIKey          string
	APIBase         string
	ChatModel       string
	ChatTemperature float64
	ChatTopP        float64
	ChatMaxTokens   int
	Timeout         int // seconds, per outbound call
	Enabled         bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Data: DataConfig{
			Dir:       getEnv("CUTOFF_DATA_DIR", "cutoff-data-2025"),
			MarksFile: getEnv("MARKS_RANK_FILE", "marks-rank-percentile/marks-rank-percentile.csv"),
		},
		Chat: ChatConfig{
			HistoryLimit: getEnvAsInt("CHAT_HISTORY_LIMIT", 5),
			ContextLimit: getEnvAsInt("CHAT_CONTEXT_LIMIT", 10),
			DefaultRound: getEnvAsInt("CHAT_DEFAULT_ROUND", 6),
		},
		OpenAI: OpenAIConfig{
			APIKey:          getEnv("OPENAI_API_KEY", ""),
			APIBase:         getEnv("OPENAI_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
			ChatModel:       getEnv("OPENAI_CHAT_MODEL", "gemini-2.0-flash"),
			ChatTemperature: getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.2),
			ChatTopP:        getEnvAsFloat("OPENAI_CHAT_TOP_P", 0.7),
			ChatMaxTokens:   getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 2048),
			Timeout:         getEnvAsInt("OPENAI_TIMEOUT", 30),
			Enabled:         getEnv("OPENAI_API_KEY", "") != "",
		},
	}

	return cfg, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}
