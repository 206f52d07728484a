package archive

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/jabbersearch/internal/common"
	"github.com/dmitrijs2005/jabbersearch/internal/dbx"
	"github.com/dmitrijs2005/jabbersearch/internal/timerange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngineWithMock(t *testing.T, threshold int64) (*Engine, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	e, err := New(db, Options{Table: "jm", RowWarningThreshold: threshold})
	require.NoError(t, err)
	return e, mock, db
}

func TestGuard_TooLargeSkipsFullQuery(t *testing.T) {
	e, mock, _ := newEngineWithMock(t, 500)

	mock.ExpectQuery(`^select count\(\*\) from jm where from_jid like \? escape`).
		WithArgs("alice@example.com%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(501))

	_, err := e.MessagesFrom(context.Background(), "alice@example.com", Search{})

	var tooLarge *common.ResultTooLargeError
	require.True(t, errors.As(err, &tooLarge))
	assert.Equal(t, int64(501), tooLarge.Count)
	assert.Equal(t, int64(500), tooLarge.Threshold)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGuard_AtThresholdRunsQuery(t *testing.T) {
	e, mock, _ := newEngineWithMock(t, 500)

	mock.ExpectQuery(`^select count\(\*\) from jm where from_jid like \? escape`).
		WithArgs("alice@example.com%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(500))
	mock.ExpectQuery(`^select \* from jm where from_jid like \? escape '\\' order by sent_date$`).
		WithArgs("alice@example.com%").
		WillReturnRows(sqlmock.NewRows([]string{"from_jid", "to_jid", "sent_date", "body_string"}).
			AddRow("alice@example.com/r1", "bob@example.com", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), "hi").
			AddRow("alice@example.com.evil/r1", "bob@example.com", time.Date(2021, 1, 1, 0, 1, 0, 0, time.UTC), "nope"))

	msgs, err := e.MessagesFrom(context.Background(), "alice@example.com", Search{})
	require.NoError(t, err)
	require.Len(t, msgs, 1, "prefix over-selection must be filtered out")
	assert.Equal(t, "hi", msgs[0].BodyString)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGuard_IgnoreRowCountSkipsProbe(t *testing.T) {
	e, mock, _ := newEngineWithMock(t, 1)

	mock.ExpectQuery(`^select \* from jm where to_jid like \? escape '\\' and sent_date >= \? order by sent_date$`).
		WithArgs(`bob\_b@example.com%`, "2021-01-01 00:00:00").
		WillReturnRows(sqlmock.NewRows([]string{"from_jid", "to_jid", "sent_date"}))

	msgs, err := e.MessagesTo(context.Background(), "bob_b@example.com", Search{
		Range:          timerange.Range{Start: "2021-01-01T00:00:00"},
		IgnoreRowCount: true,
	})
	require.NoError(t, err)
	assert.Empty(t, msgs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGuard_ProbeErrorSurfaces(t *testing.T) {
	e, mock, _ := newEngineWithMock(t, 10)

	mock.ExpectQuery(`^select count`).WillReturnError(errors.New("connection reset"))

	_, err := e.MessagesFrom(context.Background(), "alice@example.com", Search{})
	assert.ErrorContains(t, err, "connection reset")
	assert.False(t, errors.Is(err, common.ErrResultTooLarge))
}

func TestGuard_DistinctProbeUsesSubquery(t *testing.T) {
	e, mock, _ := newEngineWithMock(t, 2)

	mock.ExpectQuery(`^select count\(\*\) from \(select distinct from_jid, to_jid from jm where from_jid like \? escape '\\'\) as probe$`).
		WithArgs("alice@example.com%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	_, err := e.RecipientsOf(context.Background(), "alice@example.com", Search{})
	assert.ErrorIs(t, err, common.ErrResultTooLarge)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGuard_PostgresPlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	e, err := New(db, Options{Table: "archive.jm", RowWarningThreshold: 5, BindType: dbx.BindType("pgx")})
	require.NoError(t, err)

	mock.ExpectQuery(`^select count\(\*\) from archive\.jm where from_jid like \$1 escape '\\' and sent_date <= \$2$`).
		WithArgs("alice@example.com%", "2021-01-02 00:00:00").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))

	_, err = e.MessagesFrom(context.Background(), "alice@example.com", Search{Range: timerange.Range{End: "2021-01-02T00:00:00"}})
	assert.ErrorIs(t, err, common.ErrResultTooLarge)
	require.NoError(t, mock.ExpectationsWereMet())
}
