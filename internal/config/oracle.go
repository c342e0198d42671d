package config

import "time"

// OracleConfig carries the Gemini credentials and generation parameters.
type OracleConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// LoadOracleConfig reads the oracle settings. A missing GEMINI_API_KEY stops
// the process.
func LoadOracleConfig() OracleConfig {
	return OracleConfig{
		APIKey:      must("GEMINI_API_KEY"),
		Model:       envStr("GEMINI_MODEL", "gemini-1.5-flash"),
		BaseURL:     envStr("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		Timeout:     envDur("ORACLE_TIMEOUT", 30*time.Second),
		Temperature: envFloat("ORACLE_TEMPERATURE", 0.4),
		MaxTokens:   envInt("ORACLE_MAX_TOKENS", 1024),
	}
}
