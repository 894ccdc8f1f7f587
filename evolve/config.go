package evolve

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds run configuration for the engine
type Config struct {
	Intent            string
	Iterations        int
	Lineages          int
	DreamProbability  float64
	CapabilityTimeout time.Duration
	RandomSeed        int64
	ArchivePath       string
	PillarWeights     map[string]float64
	LogLevel          string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Intent:            getEnv("WEAVER_INTENT", ""),
		Iterations:        getEnvInt("WEAVER_ITERATIONS", 4),
		Lineages:          getEnvInt("WEAVER_VARIANTS", 3),
		DreamProbability:  getEnvFloat("WEAVER_DREAM_PROBABILITY", 0.3),
		CapabilityTimeout: getEnvDuration("WEAVER_CAPABILITY_TIMEOUT", "30s"),
		RandomSeed:        int64(getEnvInt("WEAVER_SEED", 0)),
		ArchivePath:       getEnv("WEAVER_ARCHIVE_PATH", ""),
		LogLevel:          getEnv("WEAVER_LOG_LEVEL", "info"),
	}
}

// LoadPillarWeights reads an optional pillar-weight map from a YAML file.
// Missing path means unweighted scoring.
func LoadPillarWeights(path string) (map[string]float64, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var weights map[string]float64
	if err := yaml.Unmarshal(data, &weights); err != nil {
		return nil, err
	}
	return weights, nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
