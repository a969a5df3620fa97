package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	LLM       LLMConfig
	Sheets    SheetsConfig
	Validate  ValidateConfig
	HistoryDB string
}

// LLMConfig holds Gemini-related configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// SheetsConfig holds Google Sheets-related configuration
type SheetsConfig struct {
	SpreadsheetID   string
	CredentialsFile string
}

// ValidateConfig holds validation-related configuration
type ValidateConfig struct {
	ExpectedDir string
	Threshold   float64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			APIKey:      getEnv("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),
			BaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Temperature: getEnvAsFloat32("GEMINI_TEMPERATURE", 0.1),
			Timeout:     getEnvAsDuration("GEMINI_TIMEOUT", 90*time.Second),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:   getEnv("SPREADSHEET_ID", ""),
			CredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		},
		Validate: ValidateConfig{
			ExpectedDir: getEnv("EXPECTED_DATA_DIR", "blood_tests/json_data"),
			Threshold:   getEnvAsFloat64("VALIDATION_THRESHOLD", 80.0),
		},
		HistoryDB: getEnv("HISTORY_DB", ""),
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Check validates the loaded configuration
func (c *Config) Check() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY (or GOOGLE_API_KEY) is required", ErrInvalidInput)
	}
	if c.Validate.Threshold < 0 || c.Validate.Threshold > 100 {
		return NewAppError("CONFIG_ERROR", "VALIDATION_THRESHOLD must be within 0..100", ErrInvalidInput)
	}
	return nil
}
