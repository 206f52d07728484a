package cli

import "strings"

// Kind enumerates every command the tool understands.
type Kind int

const (
	KindUnknown Kind = iota
	KindHelp
	KindExit
	KindShowUsers
	KindShowChatRooms
	KindRecipients
	KindChatRooms
	KindConversation
	KindDiscussion
)

var kindNames = [...]string{
	KindUnknown:       "unknown",
	KindHelp:          "help",
	KindExit:          "exit",
	KindShowUsers:     "show users",
	KindShowChatRooms: "show chatrooms",
	KindRecipients:    "get recipients",
	KindChatRooms:     "get chatrooms",
	KindConversation:  "get conversation",
	KindDiscussion:    "get discussion",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Command is a parsed command line. Args holds the identities the command
// works on; Raw keeps the words as typed for error messages.
type Command struct {
	Kind Kind
	Args []string
	Raw  string
}

// HelpText lists the commands and the per-search options.
const HelpText = `Available command options are:
show users - Get a list of all valid users in archive
show chatrooms - Get a list of all group chat rooms in the archive
get recipients [username or chatroom] - Get a list of the recipients a user sent to, or all users in a chatroom
get chatrooms [username or user1,user2,..] - Get a list of chatrooms for this user. If multiple users are given (separated by a comma), lists the rooms where these users were active together
get conversation [user1 user2] - Generates the conversation between these two users. Prints to screen unless -O is given
get discussion [chatroom] - Generates the group discussion in this chatroom. Prints to screen unless -O is given
exit - Closes this archive search session
In interactive mode, you can also specify options -s, -e, -t, -o, -O and -I`

// ParseCommand resolves the command words into a Command. Words that do not
// form a known command yield KindUnknown.
func ParseCommand(words []string) Command {
	cmd := Command{Raw: strings.Join(words, " ")}
	if len(words) == 0 {
		return cmd
	}

	verb := strings.ToLower(words[0])
	switch {
	case len(words) == 1 && (verb == "help" || verb == "?"):
		cmd.Kind = KindHelp
	case len(words) == 1 && (verb == "exit" || verb == "quit"):
		cmd.Kind = KindExit
	case len(words) < 2:
	case verb == "show":
		cmd.parseShow(strings.ToLower(words[1]), words[2:])
	case verb == "get":
		cmd.parseGet(strings.ToLower(words[1]), words[2:])
	}
	return cmd
}

func (c *Command) parseShow(noun string, rest []string) {
	if len(rest) != 0 {
		return
	}
	switch noun {
	case "users":
		c.Kind = KindShowUsers
	case "chatrooms":
		c.Kind = KindShowChatRooms
	}
}

func (c *Command) parseGet(noun string, rest []string) {
	switch {
	case noun == "recipients" && len(rest) == 1:
		c.Kind = KindRecipients
		c.Args = rest
	case noun == "chatrooms" && len(rest) == 1:
		ids := splitList(rest[0])
		if len(ids) == 0 {
			return
		}
		c.Kind = KindChatRooms
		c.Args = ids
	case noun == "conversation" && len(rest) == 2:
		c.Kind = KindConversation
		c.Args = rest
	case noun == "discussion" && len(rest) == 1:
		c.Kind = KindDiscussion
		c.Args = rest
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
