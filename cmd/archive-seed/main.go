// Command archive-seed creates a Jabber archive table and loads messages
// from a JSON lines file, encrypting the text columns when a key is given.
// It is meant for local archives and fixtures.
//
//	archive-seed -driver sqlite -d archive.db -f messages.jsonl -key <hex> -iv <hex>
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/jabbersearch/internal/archive"
	"github.com/dmitrijs2005/jabbersearch/internal/cryptox"
	"github.com/dmitrijs2005/jabbersearch/internal/logging"
	"github.com/dmitrijs2005/jabbersearch/internal/migrations"
	"github.com/dmitrijs2005/jabbersearch/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type options struct {
	driver    string
	dsn       string
	file      string
	keyHex    string
	ivHex     string
	logFormat string
	logLevel  string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("archive-seed", flag.ContinueOnError)
	fs.StringVar(&o.driver, "driver", "sqlite", "database driver: sqlite, pgx or postgres")
	fs.StringVar(&o.dsn, "d", "archive.db", "data source name")
	fs.StringVar(&o.file, "f", "", "JSON lines file, stdin when empty")
	fs.StringVar(&o.keyHex, "key", "", "hex AES-256 key")
	fs.StringVar(&o.ivHex, "iv", "", "hex IV")
	fs.StringVar(&o.logFormat, "log-format", "text", "log format: text, json or zap")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}
	if err := run(context.Background(), o); err != nil {
		fmt.Fprintf(os.Stderr, "archive-seed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options) error {
	logger, err := logging.New(os.Stderr, o.logFormat, o.logLevel)
	if err != nil {
		return err
	}

	codec, err := cryptox.ParseHex(o.keyHex, o.ivHex)
	if err != nil {
		return err
	}

	in := os.Stdin
	if o.file != "" {
		f, err := os.Open(o.file)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	recs, err := seed.ReadJSONL(in)
	if err != nil {
		return err
	}

	db, err := sql.Open(o.driver, o.dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Up(ctx, db, o.driver); err != nil {
		return err
	}
	logger.Info(ctx, "migrations applied", "driver", o.driver)

	l := seed.NewLoader(db, o.driver, "jm", codec, archive.DefaultEncryptedColumns, logger)
	return l.Insert(ctx, recs)
}
