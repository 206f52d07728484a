package archive

import "strings"

// ChatRoomMarker is the substring that marks a Jid as a multi-user chat room.
const ChatRoomMarker = "@conference"

// Bare strips the "/resource" suffix. Two Jids denote the same identity when
// their bare forms are equal.
func Bare(jid string) string {
	bare, _, _ := strings.Cut(jid, "/")
	return bare
}

// Resource returns everything after the first "/", or "" when there is none.
func Resource(jid string) string {
	_, res, _ := strings.Cut(jid, "/")
	return res
}

// IsChatRoom reports whether jid addresses a chat room.
func IsChatRoom(jid string) bool {
	return strings.Contains(Bare(jid), ChatRoomMarker)
}

// Part returns the i-th "/" separated part of jid. A chat room relays messages
// as "room@conference.host/user@host/resource", so part 1 names the sender
// inside the room. When jid has fewer parts the bare Jid is returned.
func Part(jid string, i int) string {
	parts := strings.Split(jid, "/")
	if i < 0 || i >= len(parts) {
		return parts[0]
	}
	return parts[i]
}
