package archive

import (
	"regexp"
	"time"
)

// Column names referenced by the engine.
const (
	ColumnFromJID       = "from_jid"
	ColumnToJID         = "to_jid"
	ColumnSentDate      = "sent_date"
	ColumnBodyString    = "body_string"
	ColumnMessageString = "message_string"
)

// DefaultEncryptedColumns are the textual archive columns encrypted at rest.
var DefaultEncryptedColumns = []string{ColumnToJID, ColumnFromJID, ColumnBodyString, ColumnMessageString}

var (
	// The id attribute may be followed by any delimiter, including the end of
	// the tag. An empty id='' counts as no id.
	protocolIDPattern = regexp.MustCompile(`\sid='([^']+)'`)
	htmlPattern       = regexp.MustCompile(`(?s)<html.+</html>`)
)

// Message is one decrypted archive row.
type Message struct {
	FromJID       string
	ToJID         string
	SentDate      time.Time
	BodyString    string
	MessageString string

	// Extra holds every other column of the row, unchanged.
	Extra map[string]any
}

// ProtocolID returns the XMPP message id embedded in the raw payload, or "".
func (m Message) ProtocolID() string {
	match := protocolIDPattern.FindStringSubmatch(m.MessageString)
	if match == nil {
		return ""
	}
	return match[1]
}

// HTML returns the <html>...</html> fragment of the raw payload, or "".
func (m Message) HTML() string {
	return htmlPattern.FindString(m.MessageString)
}
