package archive

// Deduplicate collapses a chat room stream into one log. Rooms resend their
// history to members who join, so the same protocol message id shows up more
// than once; only the first occurrence is kept. msgs must already be in
// sent_date order.
//
// A message without an extractable id has no dedup key and is always kept,
// even when an identical payload was seen before.
func Deduplicate(msgs []Message) []Message {
	seen := make(map[string]struct{}, len(msgs))
	out := make([]Message, 0, len(msgs))

	for _, m := range msgs {
		id := m.ProtocolID()
		if id == "" {
			out = append(out, m)
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, m)
	}
	return out
}
