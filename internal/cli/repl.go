package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/jabbersearch/internal/config"
)

// printlnFn and printFn are test seams for user-facing output.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface is the command surface the REPL needs. *App satisfies it; tests
// provide a lightweight stub.
type execIface interface {
	Execute(ctx context.Context, cfg *config.Config, cmd Command) error
}

// Run executes the command given on the command line and then, in
// interactive mode, keeps reading commands from in until "exit" or EOF.
func Run(ctx context.Context, a execIface, cfg *config.Config, in io.Reader) error {
	if len(cfg.Command) == 0 && !cfg.Interactive {
		printlnFn(HelpText)
		return nil
	}

	if len(cfg.Command) > 0 {
		cmd := ParseCommand(cfg.Command)
		if cmd.Kind == KindExit {
			return nil
		}
		if err := a.Execute(ctx, cfg, cmd); err != nil {
			if !cfg.Interactive {
				return err
			}
			printlnFn("Unable to complete search:", err)
		}
	}

	if cfg.Interactive {
		runREPL(ctx, a, cfg, bufio.NewScanner(in))
	}
	return nil
}

// runREPL reads one command per line. Each line is split shell style, may
// carry the per-search flags, and starts from base so bounds and output
// files never carry over between searches. The loop ends on EOF, "exit" or
// "quit". Command failures are reported and the loop goes on.
func runREPL(ctx context.Context, a execIface, base *config.Config, scanner *bufio.Scanner) {
	for {
		printFn("> ")
		if !scanner.Scan() {
			return
		}

		fields, err := splitLine(scanner.Text())
		if err != nil {
			printlnFn("Unable to parse command:", err)
			continue
		}
		if len(fields) == 0 {
			continue
		}

		cfg := *base
		cfg.Command = nil
		if err := config.ParseLine(&cfg, fields); err != nil {
			printlnFn("Unable to parse command:", err)
			continue
		}

		cmd := ParseCommand(cfg.Command)
		if cmd.Kind == KindExit {
			printlnFn("Bye!")
			return
		}

		if err := a.Execute(ctx, &cfg, cmd); err != nil {
			printlnFn("Unable to complete search:", err)
		}
	}
}
