package config

import (
	"errors"
	"fmt"
	"time"
)

// Output types accepted by -o.
const (
	OutputText  = "text"
	OutputDelim = "delim"
	OutputHTML  = "html"
)

// Config holds runtime settings for the jabbersearch CLI.
type Config struct {
	Driver string
	DSN    string
	Table  string

	// KeyHex and IVHex are hex encoded. "-" means prompt on the terminal.
	KeyHex string
	IVHex  string

	RowWarningThreshold int64
	IgnoreRowWarning    bool

	Timezone       string
	StartTime      string
	EndTime        string
	OutputType     string
	OutputFilename string
	Interactive    bool

	LogFormat string
	LogLevel  string

	// Command holds the positional words, e.g. ["show", "users"].
	Command []string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Driver = "sqlite"
	c.DSN = "archive.db"
	c.Table = "jm"
	c.RowWarningThreshold = 500
	c.Timezone = "America/Los_Angeles"
	c.OutputType = OutputText
	c.LogFormat = "text"
	c.LogLevel = "warn"
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate checks values that flags and files cannot constrain by type.
func (c *Config) Validate() error {
	if err := c.validateOutputType(); err != nil {
		return err
	}
	if c.RowWarningThreshold <= 0 {
		return fmt.Errorf("row warning threshold must be positive, got %d", c.RowWarningThreshold)
	}
	if (c.KeyHex == "") != (c.IVHex == "") {
		return errors.New("key and iv must be given together")
	}
	return nil
}

func (c *Config) validateOutputType() error {
	switch c.OutputType {
	case OutputText, OutputDelim, OutputHTML:
		return nil
	default:
		return fmt.Errorf("unknown output type %q", c.OutputType)
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file (if any) and the command-line args. Later sources take
// precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := Parse(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
