// Package config loads runtime configuration for the jabbersearch CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in
//     .yaml or .yml are read as YAML, everything else as JSON.
//  3. Command-line flags (see Parse), which override earlier values.
//
// Supported flags
//
//	-driver string   database/sql driver: sqlite, pgx or postgres
//	-d string        data source name of the archive database
//	-table string    archive table (default "jm")
//	-key string      hex AES-256 key, "-" to read it from the terminal
//	-iv string       hex IV, "-" to read it from the terminal
//	-w int           row warning threshold
//	-I               ignore the row warning
//	-t string        display timezone (default America/Los_Angeles)
//	-s string        start time, "YYYY-MM-DD HH:MM:SS" in the display timezone
//	-e string        end time, same format
//	-o string        output type: text, delim or html
//	-O string        output file, stdout when empty
//	-i               interactive mode
//	-log-format      text, json or zap
//	-log-level       debug, info, warn or error
//
// Positional words left after flag parsing form the command, for example
// "get conversation alice@x.org bob@x.org".
//
// # File schema
//
//	{
//	  "driver": "pgx",
//	  "dsn": "postgres://archive@localhost/archive",
//	  "table": "jm",
//	  "key": "000102...",
//	  "iv": "f0e0d0...",
//	  "row_warning_threshold": 500,
//	  "timezone": "Europe/Riga",
//	  "output_type": "text",
//	  "log_format": "json",
//	  "log_level": "info"
//	}
package config
