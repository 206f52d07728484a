package archive

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func msgWithID(id, body string) Message {
	payload := fmt.Sprintf("<message from='room@conference.example.com/a@example.com' to='b@example.com'><body>%s</body></message>", body)
	if id != "" {
		payload = fmt.Sprintf("<message from='room@conference.example.com/a@example.com' id='%s' to='b@example.com'><body>%s</body></message>", id, body)
	}
	return Message{BodyString: body, MessageString: payload}
}

func bodies(msgs []Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.BodyString)
	}
	return out
}

func TestDeduplicate_DropsResentIDs(t *testing.T) {
	in := []Message{msgWithID("A", "first"), msgWithID("B", "second"), msgWithID("A", "first again")}

	got := Deduplicate(in)

	assert.Equal(t, []string{"first", "second"}, bodies(got))
}

func TestDeduplicate_KeepsMessagesWithoutID(t *testing.T) {
	// Known limitation: payloads without an id cannot be deduplicated, so a
	// verbatim resend of such a payload is kept twice.
	in := []Message{msgWithID("", "no id"), msgWithID("A", "a"), msgWithID("", "no id")}

	got := Deduplicate(in)

	assert.Equal(t, []string{"no id", "a", "no id"}, bodies(got))
}

func TestDeduplicate_Empty(t *testing.T) {
	assert.Empty(t, Deduplicate(nil))
}
