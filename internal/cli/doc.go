// Package cli implements the jabbersearch command shell: it resolves command
// words into a closed set of commands, runs them against an archive.Engine,
// and prints identity lists or rendered message logs.
//
// A single command can be given on the command line; with -i the tool keeps
// reading commands from stdin:
//
//	show users
//	show chatrooms
//	get recipients alice@example.com
//	get chatrooms alice@example.com,bob@example.com
//	get conversation alice@example.com bob@example.com -s "2021-02-19 17:11:00"
//	get discussion dev@conference.example.com -o html -O dev.html
//	exit
package cli
