// Package timerange validates user supplied search bounds and renders them as
// a parameterized predicate over the archive's sent_date column.
//
// Bounds end up next to user controlled SQL, so validation is strict: a value
// must match YYYY-MM-DDTHH:MM:SS exactly and is never coerced.
package timerange

import (
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/jabbersearch/internal/common"
)

// Column is the archive column bounded by Range.
const Column = "sent_date"

// Lead is the connective placed before a non-empty clause.
const Lead = " and "

const (
	// SearchLayout is the accepted bound format.
	SearchLayout = "2006-01-02T15:04:05"
	// DBLayout is the format of the bound values passed to the database.
	DBLayout = "2006-01-02 15:04:05"
	// LocalLayout is what people type on the command line.
	LocalLayout = "2006-01-02 15:04:05"
)

var (
	searchPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`)
	localPattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)
)

// Range is an optional inclusive [Start, End] bound in UTC. Empty means unbounded.
type Range struct {
	Start string
	End   string
}

// Clause is a rendered predicate fragment and its bound arguments.
type Clause struct {
	SQL  string
	Args []any
}

// Empty reports whether the clause adds nothing to a query.
func (c Clause) Empty() bool {
	return c.SQL == ""
}

// Validate checks both bounds against the exact search layout.
func (r Range) Validate() error {
	for _, v := range []string{r.Start, r.End} {
		if v != "" && !searchPattern.MatchString(v) {
			return &common.MalformedTimestampError{Value: v}
		}
	}
	return nil
}

// Clause renders the range as "sent_date >= ? and sent_date <= ?" (or only the
// bound that is present) prefixed with lead. Without bounds the result is empty
// and carries no connective.
func (r Range) Clause(lead string) (Clause, error) {
	if err := r.Validate(); err != nil {
		return Clause{}, err
	}

	var (
		parts []string
		args  []any
	)
	if r.Start != "" {
		parts = append(parts, Column+" >= ?")
		args = append(args, strings.Replace(r.Start, "T", " ", 1))
	}
	if r.End != "" {
		parts = append(parts, Column+" <= ?")
		args = append(args, strings.Replace(r.End, "T", " ", 1))
	}
	if len(parts) == 0 {
		return Clause{}, nil
	}

	return Clause{SQL: lead + strings.Join(parts, " and "), Args: args}, nil
}

// LocalToUTC converts a "YYYY-MM-DD HH:MM:SS" wall clock time in loc to the
// UTC search layout. The archive stores UTC while people search in their own
// timezone.
func LocalToUTC(value string, loc *time.Location) (string, error) {
	if !localPattern.MatchString(value) {
		return "", &common.MalformedTimestampError{Value: value}
	}
	t, err := time.ParseInLocation(LocalLayout, value, loc)
	if err != nil {
		return "", &common.MalformedTimestampError{Value: value}
	}
	return t.UTC().Format(SearchLayout), nil
}
