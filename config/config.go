package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	defaultNameScoreThreshold     = 90.0
	defaultFallbackScoreThreshold = 92.0
	defaultFallbackScanLimit      = 5000
	defaultFounderWindowDays      = 7
)

const (
	defaultPipelineQueueSize  = 8
	defaultNumPipelineWorkers = 1
)

// Partner index modes. "memory" loads the whole fragment index into RAM on
// each run; "db" serves candidates from the indexed partners table, which
// scales to full national extracts at the cost of per-lookup queries.
const (
	PartnerIndexModeMemory = "memory"
	PartnerIndexModeDB     = "db"
)

type Config struct {
	// database path
	DatabasePath string

	// HTTP listen port
	Port string

	// secret used to HMAC identifiers before they are stored anywhere
	CPFSalt string

	// source files
	AlumniCSVFile   string
	RegistryDataDir string

	// matching settings
	NameScoreThreshold     float64
	FallbackScoreThreshold float64
	FallbackScanLimit      int
	FounderWindowDays      int
	PartnerIndexMode       string

	// worker settings; a zero PipelineInterval disables scheduled runs
	PipelineQueueSize  int
	NumPipelineWorkers int
	PipelineInterval   time.Duration

	// auth
	JWTSecret     string
	AdminUsername string
	AdminPassword string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvFloatOrDefault(envVar string, defaultVal float64) float64 {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil || val <= 0 || val > 100 {
		log.Printf("Warning: Invalid %s '%s'. Using default %.1f. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

// getEnvDurationOrZero reads a time.ParseDuration value from envVar. An
// unset, empty, or "0" value yields zero, which callers treat as disabled.
func getEnvDurationOrZero(envVar string) time.Duration {
	valStr := os.Getenv(envVar)
	if valStr == "" || valStr == "0" {
		return 0
	}
	val, err := time.ParseDuration(valStr)
	if err != nil || val < 0 {
		log.Printf("Warning: Invalid %s '%s'. Treating as disabled. Error: %v", envVar, valStr, err)
		return 0
	}
	return val
}

func LoadConfig() (Config, error) {
	salt := os.Getenv("CPF_SALT")
	if salt == "" {
		return Config{}, fmt.Errorf("CPF_SALT is required; refusing to start without a hashing salt")
	}

	dbPath := getEnvOrDefault("DATABASE_PATH", "egressolink.db")
	port := getEnvOrDefault("PORT", "8080")

	alumniCSV := getEnvOrDefault("ALUMNI_CSV_FILE", filepath.Join(".", "data", "egressos.csv"))
	registryDir := getEnvOrDefault("REGISTRY_DATA_DIR", filepath.Join(".", "data", "registry"))
	absRegistryDir, err := filepath.Abs(registryDir)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for registry data dir '%s': %w", registryDir, err)
	}

	indexMode := getEnvOrDefault("PARTNER_INDEX_MODE", PartnerIndexModeMemory)
	if indexMode != PartnerIndexModeMemory && indexMode != PartnerIndexModeDB {
		log.Printf("Warning: Invalid PARTNER_INDEX_MODE '%s'. Using '%s'.", indexMode, PartnerIndexModeMemory)
		indexMode = PartnerIndexModeMemory
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	cfg := Config{
		DatabasePath:           dbPath,
		Port:                   port,
		CPFSalt:                salt,
		AlumniCSVFile:          alumniCSV,
		RegistryDataDir:        absRegistryDir,
		NameScoreThreshold:     getEnvFloatOrDefault("NAME_SCORE_THRESHOLD", defaultNameScoreThreshold),
		FallbackScoreThreshold: getEnvFloatOrDefault("FALLBACK_SCORE_THRESHOLD", defaultFallbackScoreThreshold),
		FallbackScanLimit:      getEnvIntOrDefault("FALLBACK_SCAN_LIMIT", defaultFallbackScanLimit),
		FounderWindowDays:      getEnvIntOrDefault("FOUNDER_WINDOW_DAYS", defaultFounderWindowDays),
		PartnerIndexMode:       indexMode,
		PipelineQueueSize:      getEnvIntOrDefault("PIPELINE_QUEUE_SIZE", defaultPipelineQueueSize),
		NumPipelineWorkers:     getEnvIntOrDefault("NUM_PIPELINE_WORKERS", defaultNumPipelineWorkers),
		PipelineInterval:       getEnvDurationOrZero("PIPELINE_INTERVAL"),
		JWTSecret:              jwtSecret,
		AdminUsername:          os.Getenv("ADMIN_USERNAME"),
		AdminPassword:          os.Getenv("ADMIN_PASSWORD"),
	}

	return cfg, nil
}
