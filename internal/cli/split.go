package cli

import (
	"fmt"

	"github.com/google/shlex"
)

// splitLine breaks an interactive line into words with POSIX shell quoting.
// A word starting with # begins a comment that runs to the end of the line.
func splitLine(line string) ([]string, error) {
	words, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("split %q: %w", line, err)
	}
	return words, nil
}
