package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/jabbersearch/internal/flagx"
)

// FileConfig is a DTO used exclusively for decoding config files. Pointer
// fields tell "absent" apart from a zero value, so a file only overrides the
// keys it actually sets.
type FileConfig struct {
	Driver              *string `json:"driver" yaml:"driver"`
	DSN                 *string `json:"dsn" yaml:"dsn"`
	Table               *string `json:"table" yaml:"table"`
	Key                 *string `json:"key" yaml:"key"`
	IV                  *string `json:"iv" yaml:"iv"`
	RowWarningThreshold *int64  `json:"row_warning_threshold" yaml:"row_warning_threshold"`
	Timezone            *string `json:"timezone" yaml:"timezone"`
	OutputType          *string `json:"output_type" yaml:"output_type"`
	LogFormat           *string `json:"log_format" yaml:"log_format"`
	LogLevel            *string `json:"log_level" yaml:"log_level"`
}

// parseFile overlays cfg with the file named by -c/-config in args. Without
// the flag it does nothing.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	set(&cfg.Driver, fc.Driver)
	set(&cfg.DSN, fc.DSN)
	set(&cfg.Table, fc.Table)
	set(&cfg.KeyHex, fc.Key)
	set(&cfg.IVHex, fc.IV)
	set(&cfg.RowWarningThreshold, fc.RowWarningThreshold)
	set(&cfg.Timezone, fc.Timezone)
	set(&cfg.OutputType, fc.OutputType)
	set(&cfg.LogFormat, fc.LogFormat)
	set(&cfg.LogLevel, fc.LogLevel)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
