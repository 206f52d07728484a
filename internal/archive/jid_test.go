package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJidHelpers(t *testing.T) {
	tests := []struct {
		jid      string
		bare     string
		resource string
		room     bool
		part1    string
	}{
		{"alice@example.com", "alice@example.com", "", false, "alice@example.com"},
		{"alice@example.com/jabber_123", "alice@example.com", "jabber_123", false, "jabber_123"},
		{"dev@conference.example.com/bob@example.com/jabber_9", "dev@conference.example.com", "bob@example.com/jabber_9", true, "bob@example.com"},
		{"dev@conference.example.com", "dev@conference.example.com", "", true, "dev@conference.example.com"},
		{"", "", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.jid, func(t *testing.T) {
			assert.Equal(t, tt.bare, Bare(tt.jid))
			assert.Equal(t, tt.resource, Resource(tt.jid))
			assert.Equal(t, tt.room, IsChatRoom(tt.jid))
			assert.Equal(t, tt.part1, Part(tt.jid, 1))
			assert.Equal(t, tt.bare, Part(tt.jid, 0))
		})
	}
}

func TestIsChatRoom_IgnoresResource(t *testing.T) {
	assert.False(t, IsChatRoom("alice@example.com/x@conference.example.com"))
}
