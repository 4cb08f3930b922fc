// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/aristath/hedger/internal/pricing"
	"github.com/aristath/hedger/internal/simenv"
)

// Path model identifiers accepted in HEDGER_PATH_MODEL.
const (
	PathModelGBM    = "gbm"
	PathModelHeston = "heston"
)

// Config holds application configuration
type Config struct {
	// Contract and market parameters
	S0              float64
	K               float64
	T               float64 // Time to maturity in years
	R               float64
	Sigma           float64
	TransactionCost float64
	RiskPenalty     float64
	OptionType      string

	// Simulation parameters
	NSteps     int
	Episodes   int
	Seed       int64
	ActionMode string
	PathModel  string // "gbm" or "heston"

	// Output
	ReportDir string
	LogLevel  string
	Pretty    bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		S0:              getEnvAsFloat("HEDGER_S0", 100),
		K:               getEnvAsFloat("HEDGER_STRIKE", 100),
		T:               getEnvAsFloat("HEDGER_MATURITY", 1.0),
		R:               getEnvAsFloat("HEDGER_RATE", 0.05),
		Sigma:           getEnvAsFloat("HEDGER_SIGMA", 0.2),
		TransactionCost: getEnvAsFloat("HEDGER_TRANSACTION_COST", 0.001),
		RiskPenalty:     getEnvAsFloat("HEDGER_RISK_PENALTY", 0.1),
		OptionType:      getEnv("HEDGER_OPTION_TYPE", "call"),
		NSteps:          getEnvAsInt("HEDGER_STEPS", 252),
		Episodes:        getEnvAsInt("HEDGER_EPISODES", 100),
		Seed:            int64(getEnvAsInt("HEDGER_SEED", 42)),
		ActionMode:      getEnv("HEDGER_ACTION_MODE", "continuous"),
		PathModel:       getEnv("HEDGER_PATH_MODEL", PathModelGBM),
		ReportDir:       getEnv("HEDGER_REPORT_DIR", "reports"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Pretty:          getEnvAsBool("LOG_PRETTY", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present and coherent
func (c *Config) Validate() error {
	if c.S0 <= 0 || c.K <= 0 || c.T <= 0 || c.Sigma <= 0 {
		return fmt.Errorf("contract parameters must be positive: S0=%v K=%v T=%v sigma=%v",
			c.S0, c.K, c.T, c.Sigma)
	}
	if c.TransactionCost < 0 {
		return fmt.Errorf("transaction cost must be non-negative, got %v", c.TransactionCost)
	}
	if c.NSteps <= 0 {
		return fmt.Errorf("number of steps must be positive, got %d", c.NSteps)
	}
	if c.Episodes <= 0 {
		return fmt.Errorf("number of episodes must be positive, got %d", c.Episodes)
	}
	if _, err := pricing.ParseOptionType(c.OptionType); err != nil {
		return err
	}
	if _, err := simenv.ParseActionMode(c.ActionMode); err != nil {
		return err
	}
	if c.PathModel != PathModelGBM && c.PathModel != PathModelHeston {
		return fmt.Errorf("unknown path model %q (want %q or %q)", c.PathModel, PathModelGBM, PathModelHeston)
	}
	if c.ReportDir == "" {
		return fmt.Errorf("report directory must not be empty")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
