package archive

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/jabbersearch/internal/common"
	"github.com/dmitrijs2005/jabbersearch/internal/dbx"
)

// DefaultRowWarningThreshold is used when Options leave the threshold unset.
const DefaultRowWarningThreshold = 100

// Guard runs a count probe before a row-returning query is issued.
type Guard struct {
	Threshold int64
}

// Check executes countQuery, which must return a single integer, and fails
// with *common.ResultTooLargeError when the count exceeds the threshold.
func (g Guard) Check(ctx context.Context, db dbx.DBTX, countQuery string, args ...any) error {
	var n int64
	if err := db.QueryRowContext(ctx, countQuery, args...).Scan(&n); err != nil {
		return fmt.Errorf("count probe: %w", err)
	}
	if n > g.Threshold {
		return &common.ResultTooLargeError{Count: n, Threshold: g.Threshold}
	}
	return nil
}
