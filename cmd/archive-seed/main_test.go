package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	o, err := parseFlags([]string{"-d", "x.db", "-f", "in.jsonl", "-key", "00", "-iv", "11"})
	require.NoError(t, err)
	assert.Equal(t, options{
		driver: "sqlite", dsn: "x.db", file: "in.jsonl", keyHex: "00", ivHex: "11",
		logFormat: "text", logLevel: "info",
	}, o)

	_, err = parseFlags([]string{"-nope"})
	require.Error(t, err)
}

func TestRun_LoadsEncryptedRows(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.jsonl")
	require.NoError(t, os.WriteFile(in, []byte(
		`{"from_jid":"alice@example.com/r","to_jid":"bob@example.com","sent_date":"2021-01-01T10:00:00Z","body_string":"hi"}`+"\n"+
			`{"from_jid":"bob@example.com/r","to_jid":"alice@example.com","sent_date":"2021-01-01T10:01:00Z"}`+"\n"), 0o600))

	dsn := filepath.Join(dir, "archive.db")
	err := run(context.Background(), options{
		driver:    "sqlite",
		dsn:       dsn,
		file:      in,
		keyHex:    "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f",
		ivHex:     "f0e0d0c0b0a090807060504030201000",
		logFormat: "text",
		logLevel:  "error",
	})
	require.NoError(t, err)

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM jm`).Scan(&n))
	assert.Equal(t, 2, n)

	var from string
	require.NoError(t, db.QueryRow(`SELECT from_jid FROM jm ORDER BY sent_date LIMIT 1`).Scan(&from))
	assert.NotContains(t, from, "alice", "jids are stored encrypted")
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	err := run(ctx, options{driver: "sqlite", dsn: filepath.Join(dir, "a.db"), file: filepath.Join(dir, "missing.jsonl"), logFormat: "text", logLevel: "info"})
	require.Error(t, err)

	err = run(ctx, options{driver: "sqlite", keyHex: "00", logFormat: "text", logLevel: "info"})
	require.Error(t, err, "key without iv")

	err = run(ctx, options{logFormat: "xml", logLevel: "info"})
	require.Error(t, err)
}
