package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dmitrijs2005/jabbersearch/internal/archive"
	"github.com/dmitrijs2005/jabbersearch/internal/common"
	"github.com/dmitrijs2005/jabbersearch/internal/config"
	"github.com/dmitrijs2005/jabbersearch/internal/cryptox"
	"github.com/dmitrijs2005/jabbersearch/internal/dbx"
	"github.com/dmitrijs2005/jabbersearch/internal/logging"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// readSecret is a test seam for term.ReadPassword.
var readSecret = term.ReadPassword

// searcher is the part of archive.Engine the commands use.
type searcher interface {
	Users(ctx context.Context, s archive.Search) ([]string, error)
	ChatRooms(ctx context.Context, s archive.Search) ([]string, error)
	RecipientsOf(ctx context.Context, identity string, s archive.Search) ([]string, error)
	ChatRoomsFor(ctx context.Context, identities []string, s archive.Search) ([]string, error)
	ConversationBetween(ctx context.Context, a, b string, s archive.Search) ([]archive.Message, error)
	ChatRoomLog(ctx context.Context, room string, s archive.Search) ([]archive.Message, error)
}

// App runs commands against one archive.
type App struct {
	engine searcher
	logger logging.Logger
	out    io.Writer
	db     *sql.DB
}

// NewApp opens the archive named by cfg and builds the engine over it. Key
// and IV given as "-" are read from the terminal without echo.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger, out io.Writer) (*App, error) {
	codec, err := loadCodec(cfg, out)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	// One session, one statement at a time.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to archive: %w", err)
	}

	engine, err := archive.New(dbx.NewLoggedSession(db, logger), archive.Options{
		Table:               cfg.Table,
		Codec:               codec,
		RowWarningThreshold: cfg.RowWarningThreshold,
		BindType:            dbx.BindType(cfg.Driver),
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Info(ctx, "archive opened", "driver", cfg.Driver, "table", cfg.Table, "encrypted", codec.Enabled())

	return &App{engine: engine, logger: logger, out: out, db: db}, nil
}

// Close releases the database handle.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func loadCodec(cfg *config.Config, w io.Writer) (*cryptox.Codec, error) {
	keyHex, err := secret(cfg.KeyHex, "Enter AES key (hex): ", w)
	if err != nil {
		return nil, err
	}
	ivHex, err := secret(cfg.IVHex, "Enter AES IV (hex): ", w)
	if err != nil {
		return nil, err
	}
	return cryptox.ParseHex(keyHex, ivHex)
}

func secret(value, prompt string, w io.Writer) (string, error) {
	if value != "-" {
		return value, nil
	}
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return "", err
	}
	b, err := readSecret(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	defer cryptox.Wipe(b)
	return strings.TrimSpace(string(b)), nil
}

// Execute runs one parsed command with the per-search settings in cfg.
// Result size warnings and empty results are reported to the user and are
// not errors.
func (a *App) Execute(ctx context.Context, cfg *config.Config, cmd Command) error {
	a.logger.Debug(ctx, "dispatch", "command", cmd.Kind.String(), "args", len(cmd.Args))

	err := a.dispatch(ctx, cfg, cmd)

	var tooLarge *common.ResultTooLargeError
	if errors.As(err, &tooLarge) {
		if tooLarge.ShortIdentity != "" {
			a.println(fmt.Sprintf("%s is shorter than %d characters and cannot be narrowed in an encrypted archive, so up to %d rows will be checked. Either reduce the time frame with -s and -e, or specify -I",
				tooLarge.ShortIdentity, cryptox.MinBlindInput, tooLarge.Count))
			return nil
		}
		a.println(fmt.Sprintf("Your search will return %d rows. Either reduce the time frame with -s and -e, or specify -I", tooLarge.Count))
		return nil
	}
	if err != nil {
		a.logger.Error(ctx, "command failed", "command", cmd.Kind.String(), "error", err)
	}
	return err
}

func (a *App) dispatch(ctx context.Context, cfg *config.Config, cmd Command) error {
	switch cmd.Kind {
	case KindHelp:
		a.println(HelpText)
		return nil
	case KindExit:
		return nil
	case KindShowUsers:
		return a.showUsers(ctx, cfg)
	case KindShowChatRooms:
		return a.showChatRooms(ctx, cfg)
	case KindRecipients:
		return a.recipients(ctx, cfg, cmd.Args[0])
	case KindChatRooms:
		return a.chatRooms(ctx, cfg, cmd.Args)
	case KindConversation:
		return a.conversation(ctx, cfg, cmd.Args[0], cmd.Args[1])
	case KindDiscussion:
		return a.discussion(ctx, cfg, cmd.Args[0])
	case KindUnknown:
		a.println(fmt.Sprintf("Unrecognized command '%s'", cmd.Raw))
		a.println(HelpText)
		return nil
	default:
		panic(fmt.Sprintf("unhandled command kind %d", cmd.Kind))
	}
}

func (a *App) println(s string) {
	fmt.Fprintln(a.out, s)
}

func (a *App) printList(items []string, empty string) {
	if len(items) == 0 {
		a.println(empty)
		return
	}
	for _, it := range items {
		a.println(it)
	}
}
