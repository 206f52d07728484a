package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/jabbersearch/internal/archive"
	"github.com/dmitrijs2005/jabbersearch/internal/config"
	"github.com/dmitrijs2005/jabbersearch/internal/render"
	"github.com/dmitrijs2005/jabbersearch/internal/timerange"
)

// search converts the user facing bounds, typed in the display timezone,
// into the engine's UTC search parameters.
func search(cfg *config.Config) (archive.Search, error) {
	s := archive.Search{IgnoreRowCount: cfg.IgnoreRowWarning}
	if cfg.StartTime == "" && cfg.EndTime == "" {
		return s, nil
	}

	loc, err := cfg.Location()
	if err != nil {
		return s, err
	}
	if cfg.StartTime != "" {
		if s.Range.Start, err = timerange.LocalToUTC(cfg.StartTime, loc); err != nil {
			return s, err
		}
	}
	if cfg.EndTime != "" {
		if s.Range.End, err = timerange.LocalToUTC(cfg.EndTime, loc); err != nil {
			return s, err
		}
	}
	return s, nil
}

func (a *App) showUsers(ctx context.Context, cfg *config.Config) error {
	s, err := search(cfg)
	if err != nil {
		return err
	}
	users, err := a.engine.Users(ctx, s)
	if err != nil {
		return err
	}
	a.printList(users, "No users found in archive")
	return nil
}

func (a *App) showChatRooms(ctx context.Context, cfg *config.Config) error {
	s, err := search(cfg)
	if err != nil {
		return err
	}
	rooms, err := a.engine.ChatRooms(ctx, s)
	if err != nil {
		return err
	}
	a.printList(rooms, "No chatrooms found in archive")
	return nil
}

func (a *App) recipients(ctx context.Context, cfg *config.Config, identity string) error {
	s, err := search(cfg)
	if err != nil {
		return err
	}

	out, err := a.engine.RecipientsOf(ctx, identity, s)
	if err != nil {
		return err
	}
	a.printList(out, "No recipients for this user found.")
	return nil
}

func (a *App) chatRooms(ctx context.Context, cfg *config.Config, identities []string) error {
	s, err := search(cfg)
	if err != nil {
		return err
	}
	rooms, err := a.engine.ChatRoomsFor(ctx, identities, s)
	if err != nil {
		return err
	}
	a.printList(rooms, "No chatrooms found")
	return nil
}

func (a *App) conversation(ctx context.Context, cfg *config.Config, first, second string) error {
	s, err := search(cfg)
	if err != nil {
		return err
	}
	msgs, err := a.engine.ConversationBetween(ctx, first, second, s)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		a.println("No conversation found for the search parameters")
		return nil
	}
	return a.writeMessages(cfg, msgs, render.SenderConversation)
}

func (a *App) discussion(ctx context.Context, cfg *config.Config, room string) error {
	s, err := search(cfg)
	if err != nil {
		return err
	}
	msgs, err := a.engine.ChatRoomLog(ctx, room, s)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		a.println("No discussion found for the search parameters")
		return nil
	}
	return a.writeMessages(cfg, msgs, render.SenderChatRoom)
}

// writeMessages prints msgs as text, or saves them to cfg.OutputFilename in
// the configured output type.
func (a *App) writeMessages(cfg *config.Config, msgs []archive.Message, senderPart int) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	opts := render.Options{Location: loc, Mode: render.ModeHuman, SenderPart: senderPart}
	if cfg.OutputType == config.OutputDelim {
		opts.Mode = render.ModeDelimited
	}

	if cfg.OutputFilename == "" {
		return render.Text(a.out, msgs, opts)
	}

	f, err := os.Create(cfg.OutputFilename)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := writeTo(f, cfg.OutputType, msgs, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	a.println(fmt.Sprintf("Log saved to %s", cfg.OutputFilename))
	return nil
}

func writeTo(w io.Writer, outputType string, msgs []archive.Message, opts render.Options) error {
	switch outputType {
	case config.OutputHTML:
		return render.HTML(w, msgs, opts)
	case config.OutputText, config.OutputDelim:
		return render.Text(w, msgs, opts)
	default:
		return fmt.Errorf("unknown output type %q", outputType)
	}
}
