package commands

import (
	"os"
	"strconv"

	"github.com/sqlcli-labs/sqlcli/internal/cli/config"
)

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to
// environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	pageSize := config.DefaultPageSize
	if v := os.Getenv("SQLCLI_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			pageSize = n
		}
	}

	return &config.Config{
		Database:    os.Getenv("SQLCLI_DATABASE"),
		PageSize:    pageSize,
		Format:      getEnvOrDefault("SQLCLI_FORMAT", config.DefaultFormat),
		HistoryFile: getEnvOrDefault("SQLCLI_HISTORY_FILE", config.DefaultHistoryFile),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
