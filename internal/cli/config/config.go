// Package config provides configuration management for the sqlcli CLI.
//
// Settings layer in the usual precedence order: flags over environment
// variables over the config file over built-in defaults.
package config

import "github.com/sqlcli-labs/sqlcli/internal/session"

// Config holds all CLI configuration options.
type Config struct {
	// Database is the database file opened at startup. Empty means start
	// the shell disconnected.
	Database string `koanf:"database"`

	// PageSize is the number of rows shown per page in the shell.
	PageSize int `koanf:"page_size"`

	// Format is the output format for one-shot commands: table, json,
	// csv, or md.
	Format string `koanf:"format"`

	// HistoryFile is where readline stores the shell's input history.
	HistoryFile string `koanf:"history_file"`
}

// Default configuration values.
const (
	DefaultPageSize    = session.DefaultPageSize
	DefaultFormat      = "table"
	DefaultHistoryFile = ".sqlcli_history"
)
