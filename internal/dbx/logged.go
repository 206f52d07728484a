package dbx

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/jabbersearch/internal/logging"
	"github.com/google/uuid"
)

// LoggedSession decorates a DBTX and logs every statement at debug level with
// a query id and its duration. Bound arguments are never logged: they carry
// identity blinds.
type LoggedSession struct {
	db     DBTX
	logger logging.Logger
}

// NewLoggedSession wraps db.
func NewLoggedSession(db DBTX, logger logging.Logger) *LoggedSession {
	return &LoggedSession{db: db, logger: logger}
}

func (s *LoggedSession) begin(ctx context.Context, query string) (logging.Logger, time.Time) {
	l := s.logger.With("query_id", uuid.NewString())
	l.Debug(ctx, "sql", "query", query)
	return l, time.Now()
}

func (s *LoggedSession) done(ctx context.Context, l logging.Logger, start time.Time, err error) {
	if err != nil {
		l.Warn(ctx, "sql failed", "elapsed", time.Since(start), "error", err)
		return
	}
	l.Debug(ctx, "sql done", "elapsed", time.Since(start))
}

func (s *LoggedSession) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	l, start := s.begin(ctx, query)
	res, err := s.db.ExecContext(ctx, query, args...)
	s.done(ctx, l, start, err)
	return res, err
}

func (s *LoggedSession) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	l, start := s.begin(ctx, query)
	rows, err := s.db.QueryContext(ctx, query, args...)
	s.done(ctx, l, start, err)
	return rows, err
}

// QueryRowContext logs the statement only; the row error surfaces on Scan.
func (s *LoggedSession) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	l, start := s.begin(ctx, query)
	row := s.db.QueryRowContext(ctx, query, args...)
	s.done(ctx, l, start, nil)
	return row
}
