package cli

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/jabbersearch/internal/config"
)

type call struct {
	kind Kind
	args []string
	cfg  config.Config
}

type fakeExec struct {
	calls []call
	err   error
}

func (f *fakeExec) Execute(ctx context.Context, cfg *config.Config, cmd Command) error {
	f.calls = append(f.calls, call{kind: cmd.Kind, args: cmd.Args, cfg: *cfg})
	return f.err
}

func silence(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrintln, origPrint := printlnFn, printFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, len(a))
		for i, v := range a {
			parts[i] = strings.TrimSpace(strings.ReplaceAll(fmtAny(v), "\n", " "))
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	printFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn, printFn = origPrintln, origPrint })
	return &lines
}

func fmtAny(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case error:
		return x.Error()
	default:
		return ""
	}
}

func baseConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

func TestRunREPL_DispatchesCommandsWithSessionFlags(t *testing.T) {
	silence(t)

	base := baseConfig()
	base.IgnoreRowWarning = true
	base.StartTime = "2020-01-01 00:00:00"

	input := strings.NewReader(strings.Join([]string{
		"show users",
		"",
		`get conversation a@x b@x -s "2021-02-19 17:11:00" -t UTC`,
		"get discussion dev@conference.x -o html -O dev.html",
		"frobnicate",
		"exit",
		"show chatrooms",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, base, bufio.NewScanner(input))

	require.Len(t, exec.calls, 4)

	assert.Equal(t, KindShowUsers, exec.calls[0].kind)
	assert.Empty(t, exec.calls[0].cfg.StartTime, "startup bounds do not leak into the loop")
	assert.True(t, exec.calls[0].cfg.IgnoreRowWarning, "-I from startup is kept")

	conv := exec.calls[1]
	assert.Equal(t, KindConversation, conv.kind)
	assert.Equal(t, []string{"a@x", "b@x"}, conv.args)
	assert.Equal(t, "2021-02-19 17:11:00", conv.cfg.StartTime)
	assert.Equal(t, "UTC", conv.cfg.Timezone)

	disc := exec.calls[2]
	assert.Equal(t, KindDiscussion, disc.kind)
	assert.Equal(t, "html", disc.cfg.OutputType)
	assert.Equal(t, "dev.html", disc.cfg.OutputFilename)

	assert.Equal(t, KindUnknown, exec.calls[3].kind)

	assert.Equal(t, "America/Los_Angeles", base.Timezone, "base config is never mutated")
}

func TestRunREPL_ReportsErrorsAndKeepsGoing(t *testing.T) {
	lines := silence(t)

	input := strings.NewReader(strings.Join([]string{
		`get conversation "a@x`,
		"show users -key 00",
		"show users",
		"show chatrooms",
	}, "\n"))

	exec := &fakeExec{err: errors.New("db down")}
	runREPL(context.Background(), exec, baseConfig(), bufio.NewScanner(input))

	require.Len(t, exec.calls, 2)
	joined := strings.Join(*lines, "\n")
	assert.Contains(t, joined, `Unable to parse command: split "get conversation \"a@x"`)
	assert.Contains(t, joined, "Unable to complete search: db down")
}

func TestRun(t *testing.T) {
	t.Run("single command", func(t *testing.T) {
		silence(t)
		cfg := baseConfig()
		cfg.Command = []string{"show", "users"}

		exec := &fakeExec{}
		require.NoError(t, Run(context.Background(), exec, cfg, strings.NewReader("show chatrooms\n")))
		require.Len(t, exec.calls, 1, "stdin is not read without -i")
		assert.Equal(t, KindShowUsers, exec.calls[0].kind)
	})

	t.Run("single command error is returned", func(t *testing.T) {
		silence(t)
		cfg := baseConfig()
		cfg.Command = []string{"show", "users"}

		err := Run(context.Background(), &fakeExec{err: errors.New("boom")}, cfg, strings.NewReader(""))
		require.EqualError(t, err, "boom")
	})

	t.Run("interactive continues after the first command", func(t *testing.T) {
		silence(t)
		cfg := baseConfig()
		cfg.Interactive = true
		cfg.Command = []string{"show", "users"}

		exec := &fakeExec{}
		require.NoError(t, Run(context.Background(), exec, cfg, strings.NewReader("show chatrooms\nquit\n")))
		require.Len(t, exec.calls, 2)
		assert.Equal(t, KindShowChatRooms, exec.calls[1].kind)
	})

	t.Run("exit as the only command", func(t *testing.T) {
		silence(t)
		cfg := baseConfig()
		cfg.Interactive = true
		cfg.Command = []string{"exit"}

		exec := &fakeExec{}
		require.NoError(t, Run(context.Background(), exec, cfg, strings.NewReader("show users\n")))
		assert.Empty(t, exec.calls)
	})

	t.Run("no command prints help", func(t *testing.T) {
		lines := silence(t)
		exec := &fakeExec{}
		require.NoError(t, Run(context.Background(), exec, baseConfig(), strings.NewReader("")))
		assert.Empty(t, exec.calls)
		require.NotEmpty(t, *lines)
		assert.Contains(t, (*lines)[0], "Available command options")
	})
}
