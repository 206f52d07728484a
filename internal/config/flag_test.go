package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		expected  *Config
		name      string
		args      []string
		expectErr bool
	}{
		{
			name: "flags before command",
			args: []string{"-driver", "pgx", "-d", "postgres://a@h/db", "-key", "-", "-iv", "-", "-w", "50", "get", "recipients", "alice@x.org"},
			expected: &Config{
				Driver: "pgx", DSN: "postgres://a@h/db", KeyHex: "-", IVHex: "-",
				RowWarningThreshold: 50, Command: []string{"get", "recipients", "alice@x.org"},
			},
		},
		{
			name: "flags interleaved with command",
			args: []string{"get", "conversation", "-I", "a@x", "b@x", "-s", "2021-02-19 17:11:00", "-o", "html", "-O", "out.html"},
			expected: &Config{
				IgnoreRowWarning: true, StartTime: "2021-02-19 17:11:00", OutputType: "html",
				OutputFilename: "out.html", Command: []string{"get", "conversation", "a@x", "b@x"},
			},
		},
		{
			name:     "config flag is accepted and ignored",
			args:     []string{"-c", "conf.yaml", "-i", "show", "chatrooms"},
			expected: &Config{Interactive: true, Command: []string{"show", "chatrooms"}},
		},
		{name: "bad int", args: []string{"-w", "abc"}, expectErr: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := Parse(cfg, tt.args)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

func TestParseLine(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.StartTime = "2020-01-01 00:00:00"
	cfg.OutputFilename = "old.txt"
	cfg.KeyHex = "abc"

	err := ParseLine(cfg, []string{"get", "discussion", "dev@conference.x.org", "-e", "2021-02-19 17:11:00", "-t", "UTC"})
	require.NoError(t, err)

	assert.Equal(t, []string{"get", "discussion", "dev@conference.x.org"}, cfg.Command)
	assert.Empty(t, cfg.StartTime, "bounds reset for every line")
	assert.Empty(t, cfg.OutputFilename)
	assert.Equal(t, "2021-02-19 17:11:00", cfg.EndTime)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "abc", cfg.KeyHex, "startup settings survive")
}

func TestParseLine_RejectsStartupFlags(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	err := ParseLine(cfg, []string{"show", "users", "-key", "00"})
	require.Error(t, err)
}

func TestParseLine_OutputType(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	err := ParseLine(cfg, []string{"show", "users", "-o", "bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"bogus"`)

	cfg.LoadDefaults()
	require.NoError(t, ParseLine(cfg, []string{"show", "users", "-o", OutputHTML}))
	assert.Equal(t, OutputHTML, cfg.OutputType)
}
