package archive

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/jabbersearch/internal/common"
	"github.com/dmitrijs2005/jabbersearch/internal/cryptox"
)

var sentDateLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// Projector turns raw rows into Messages, decrypting the configured columns.
type Projector struct {
	codec     *cryptox.Codec
	encrypted map[string]struct{}
}

// NewProjector returns a Projector. A nil codec means the archive is plaintext
// and every value passes through unchanged.
func NewProjector(codec *cryptox.Codec, encryptedColumns []string) *Projector {
	enc := make(map[string]struct{}, len(encryptedColumns))
	for _, c := range encryptedColumns {
		enc[strings.ToLower(c)] = struct{}{}
	}
	return &Projector{codec: codec, encrypted: enc}
}

// Value returns the plaintext of one column value. NULL and empty values are
// returned as "".
func (p *Projector) Value(column string, raw any) (string, error) {
	s, err := asString(raw)
	if err != nil {
		return "", fmt.Errorf("column %s: %w", column, err)
	}
	if s == "" || !p.codec.Enabled() {
		return s, nil
	}
	if _, ok := p.encrypted[strings.ToLower(column)]; !ok {
		return s, nil
	}

	plain, err := p.codec.Decrypt(s)
	if err != nil {
		return "", &common.DecryptError{Column: column, Err: err}
	}
	return plain, nil
}

// Project converts one row, keyed by column name, into a Message.
func (p *Projector) Project(row map[string]any) (Message, error) {
	var m Message

	for col, raw := range row {
		name := strings.ToLower(col)

		if name == ColumnSentDate {
			t, err := utcTime(raw)
			if err != nil {
				return Message{}, fmt.Errorf("column %s: %w", col, err)
			}
			m.SentDate = t
			continue
		}

		var dst *string
		switch name {
		case ColumnFromJID:
			dst = &m.FromJID
		case ColumnToJID:
			dst = &m.ToJID
		case ColumnBodyString:
			dst = &m.BodyString
		case ColumnMessageString:
			dst = &m.MessageString
		}

		if dst == nil {
			if _, ok := p.encrypted[name]; ok {
				v, err := p.Value(name, raw)
				if err != nil {
					return Message{}, err
				}
				raw = v
			}
			if m.Extra == nil {
				m.Extra = make(map[string]any)
			}
			m.Extra[name] = raw
			continue
		}

		v, err := p.Value(name, raw)
		if err != nil {
			return Message{}, err
		}
		*dst = v
	}

	return m, nil
}

func asString(raw any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unexpected text value of type %T", raw)
	}
}

// utcTime normalizes sent_date. The archive stores UTC without zone
// information, so a value with no zone is read as UTC and a zoned value is
// converted to UTC.
func utcTime(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v.UTC(), nil
	case string:
		return parseSentDate(v)
	case []byte:
		return parseSentDate(string(v))
	default:
		return time.Time{}, fmt.Errorf("unexpected time value of type %T", raw)
	}
}

func parseSentDate(s string) (time.Time, error) {
	for _, layout := range sentDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", s)
}
