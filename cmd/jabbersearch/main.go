// Command jabbersearch searches a Jabber message archive whose text columns
// may be encrypted at rest. See internal/cli for the command set.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dmitrijs2005/jabbersearch/internal/cli"
	"github.com/dmitrijs2005/jabbersearch/internal/config"
	"github.com/dmitrijs2005/jabbersearch/internal/logging"

	_ "time/tzdata"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Unable to complete search: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}
	if s, ok := logger.(interface{ Sync() error }); ok {
		defer s.Sync()
	}

	app, err := cli.NewApp(ctx, cfg, logger, os.Stdout)
	if err != nil {
		return err
	}
	defer app.Close()

	return cli.Run(ctx, app, cfg, os.Stdin)
}
