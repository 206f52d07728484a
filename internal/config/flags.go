package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/jabbersearch/internal/flagx"
)

// Parse populates cfg from command-line args. Flags may be interleaved with
// the command words, which end up in cfg.Command.
func Parse(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("jabbersearch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// Consumed by parseFile; registered so they parse cleanly here.
	var ignored string
	fs.StringVar(&ignored, "c", "", "path to config file")
	fs.StringVar(&ignored, "config", "", "path to config file")

	fs.StringVar(&cfg.Driver, "driver", cfg.Driver, "database driver: sqlite, pgx or postgres")
	fs.StringVar(&cfg.DSN, "d", cfg.DSN, "data source name of the archive")
	fs.StringVar(&cfg.Table, "table", cfg.Table, "archive table")
	fs.StringVar(&cfg.KeyHex, "key", cfg.KeyHex, "hex AES-256 key, - to prompt")
	fs.StringVar(&cfg.IVHex, "iv", cfg.IVHex, "hex IV, - to prompt")
	fs.Int64Var(&cfg.RowWarningThreshold, "w", cfg.RowWarningThreshold, "row warning threshold")
	fs.BoolVar(&cfg.Interactive, "i", cfg.Interactive, "interactive mode")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text, json or zap")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	registerSession(fs, cfg)

	words, err := flagx.ParseInterleaved(fs, args)
	if err != nil {
		return err
	}
	cfg.Command = words
	return nil
}

// ParseLine applies one interactive command line to cfg. Only the per-search
// flags (-s, -e, -t, -o, -O, -I) are accepted; bounds and the output file are
// reset first so they never leak from one search into the next.
func ParseLine(cfg *Config, fields []string) error {
	cfg.StartTime = ""
	cfg.EndTime = ""
	cfg.OutputFilename = ""

	fs := flag.NewFlagSet("session", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	registerSession(fs, cfg)

	words, err := flagx.ParseInterleaved(fs, fields)
	if err != nil {
		return err
	}
	if err := cfg.validateOutputType(); err != nil {
		return err
	}
	cfg.Command = words
	return nil
}

func registerSession(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.StartTime, "s", cfg.StartTime, "start time, YYYY-MM-DD HH:MM:SS in the display timezone")
	fs.StringVar(&cfg.EndTime, "e", cfg.EndTime, "end time, YYYY-MM-DD HH:MM:SS in the display timezone")
	fs.StringVar(&cfg.Timezone, "t", cfg.Timezone, "display timezone")
	fs.StringVar(&cfg.OutputType, "o", cfg.OutputType, "output type: text, delim or html")
	fs.StringVar(&cfg.OutputFilename, "O", cfg.OutputFilename, "output file, stdout when empty")
	fs.BoolVar(&cfg.IgnoreRowWarning, "I", cfg.IgnoreRowWarning, "ignore the row warning")
}
