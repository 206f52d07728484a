// Package render writes retrieved messages for people: a plain text dump
// (human readable or pipe delimited) and an HTML chat log built from the
// XHTML fragments embedded in the raw payloads. Times are shown in a display
// timezone; the archive itself is UTC.
package render

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/jabbersearch/internal/archive"
)

// DefaultTimeLayout is used when Options.TimeLayout is empty.
const DefaultTimeLayout = "2006-01-02 15:04:05"

// Mode selects the text dump line format.
type Mode string

const (
	ModeHuman     Mode = "human"
	ModeDelimited Mode = "delim"
)

// SenderPart selects which "/" separated part of from_jid names the sender.
const (
	// SenderConversation attributes one-to-one messages to the bare user.
	SenderConversation = 0
	// SenderChatRoom attributes room relays to the in-room sender.
	SenderChatRoom = 1
)

// Options control how messages are rendered.
type Options struct {
	Location   *time.Location
	TimeLayout string
	Mode       Mode
	SenderPart int
}

func (o Options) time(t time.Time) string {
	loc := o.Location
	if loc == nil {
		loc = time.UTC
	}
	layout := o.TimeLayout
	if layout == "" {
		layout = DefaultTimeLayout
	}
	return t.In(loc).Format(layout)
}

// Text writes one line per message.
func Text(w io.Writer, msgs []archive.Message, o Options) error {
	bw := bufio.NewWriter(w)
	for _, m := range msgs {
		body := m.BodyString
		if body == "" {
			body = "NO DATA"
		}
		ts := o.time(m.SentDate)
		from := archive.Part(m.FromJID, o.SenderPart)

		var err error
		if o.Mode == ModeDelimited {
			_, err = fmt.Fprintf(bw, "%s|%s|%s\n", ts, from, body)
		} else {
			_, err = fmt.Fprintf(bw, "(%s) %s: %s\n", ts, from, body)
		}
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// HTML writes a header and the XHTML fragment of each message that has one.
// Messages without a fragment are skipped.
func HTML(w io.Writer, msgs []archive.Message, o Options) error {
	bw := bufio.NewWriter(w)
	for _, m := range msgs {
		fragment := m.HTML()
		if fragment == "" {
			continue
		}
		from := archive.Part(m.FromJID, o.SenderPart)
		if _, err := fmt.Fprintf(bw, "<h5>(%s) %s:</h5>\n%s\n", o.time(m.SentDate), from, fragment); err != nil {
			return err
		}
	}
	return bw.Flush()
}
