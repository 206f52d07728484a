// Package seed loads JSON-lines message exports into an archive table,
// encrypting the configured columns the same way a Jabber server does. It is
// used to build local archives for development and tests.
package seed

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/jabbersearch/internal/cryptox"
	"github.com/dmitrijs2005/jabbersearch/internal/dbx"
	"github.com/dmitrijs2005/jabbersearch/internal/logging"
)

// dbTimeLayout matches how the archive stores sent_date: UTC, no zone.
const dbTimeLayout = "2006-01-02 15:04:05"

var inputTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	dbTimeLayout,
}

// Record is one message line of the input file.
type Record struct {
	FromJID       string `json:"from_jid"`
	ToJID         string `json:"to_jid"`
	SentDate      string `json:"sent_date"`
	BodyString    string `json:"body_string"`
	MessageString string `json:"message_string"`
}

// ReadJSONL decodes one Record per non-empty line.
func ReadJSONL(r io.Reader) ([]Record, error) {
	var out []Record

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Loader inserts Records into one archive table.
type Loader struct {
	db        *sql.DB
	table     string
	codec     *cryptox.Codec
	encrypted map[string]struct{}
	bindType  int
	logger    logging.Logger
}

// NewLoader returns a Loader. codec may be nil for a plaintext archive.
func NewLoader(db *sql.DB, driverName, table string, codec *cryptox.Codec, encryptedColumns []string, logger logging.Logger) *Loader {
	enc := make(map[string]struct{}, len(encryptedColumns))
	for _, c := range encryptedColumns {
		enc[strings.ToLower(c)] = struct{}{}
	}
	return &Loader{
		db:        db,
		table:     table,
		codec:     codec,
		encrypted: enc,
		bindType:  dbx.BindType(driverName),
		logger:    logger,
	}
}

// Insert writes all records in a single transaction.
func (l *Loader) Insert(ctx context.Context, recs []Record) error {
	query := dbx.Rebind(l.bindType, fmt.Sprintf(
		`INSERT INTO %s (from_jid, to_jid, sent_date, body_string, message_string, body_len, message_len)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, l.table))

	err := dbx.WithTx(ctx, l.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for i, rec := range recs {
			args, err := l.args(rec)
			if err != nil {
				return fmt.Errorf("record %d: %w", i+1, err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("failed to insert record %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.logger.Info(ctx, "records loaded", "table", l.table, "count", len(recs), "encrypted", l.codec.Enabled())
	return nil
}

func (l *Loader) args(rec Record) ([]any, error) {
	sent, err := parseTime(rec.SentDate)
	if err != nil {
		return nil, err
	}

	values := []struct {
		column string
		value  string
	}{
		{"from_jid", rec.FromJID},
		{"to_jid", rec.ToJID},
		{"sent_date", sent},
		{"body_string", rec.BodyString},
		{"message_string", rec.MessageString},
	}

	args := make([]any, 0, len(values)+2)
	for _, v := range values {
		s, err := l.encode(v.column, v.value)
		if err != nil {
			return nil, err
		}
		args = append(args, s)
	}
	return append(args, len(rec.BodyString), len(rec.MessageString)), nil
}

func (l *Loader) encode(column, value string) (any, error) {
	if value == "" {
		return nil, nil
	}
	if _, ok := l.encrypted[column]; !ok || !l.codec.Enabled() {
		return value, nil
	}
	return l.codec.Encrypt(value)
}

func parseTime(s string) (string, error) {
	for _, layout := range inputTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(dbTimeLayout), nil
		}
	}
	return "", fmt.Errorf("cannot parse sent_date %q", s)
}
