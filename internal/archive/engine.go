package archive

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/jabbersearch/internal/common"
	"github.com/dmitrijs2005/jabbersearch/internal/cryptox"
	"github.com/dmitrijs2005/jabbersearch/internal/dbx"
	"github.com/dmitrijs2005/jabbersearch/internal/timerange"
	"github.com/jmoiron/sqlx"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// matchAll stands in for a Jid predicate that cannot be narrowed by a blind.
const matchAll = "1=1"

// Options is the immutable configuration of one Engine.
type Options struct {
	// Table holding the archive, "jm" by default.
	Table string
	// Codec is nil for plaintext archives.
	Codec *cryptox.Codec
	// RowWarningThreshold is the largest result a guarded query may return.
	RowWarningThreshold int64
	// EncryptedColumns defaults to DefaultEncryptedColumns.
	EncryptedColumns []string
	// BindType is the placeholder style of the driver, see dbx.BindType.
	BindType int
}

// Search holds the per-call parameters shared by every operation.
type Search struct {
	Range          timerange.Range
	IgnoreRowCount bool
}

// Identities is the partition of every Jid in the archive.
type Identities struct {
	Users     []string
	ChatRooms []string
}

// Engine answers identity and message lookups over one archive table.
type Engine struct {
	mu        sync.Mutex
	db        dbx.DBTX
	opts      Options
	projector *Projector
	guard     Guard
}

// New validates opts and returns an Engine bound to db.
func New(db dbx.DBTX, opts Options) (*Engine, error) {
	if opts.Table == "" {
		opts.Table = "jm"
	}
	if !identifierPattern.MatchString(opts.Table) {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidTableName, opts.Table)
	}
	if opts.RowWarningThreshold <= 0 {
		opts.RowWarningThreshold = DefaultRowWarningThreshold
	}
	if opts.EncryptedColumns == nil {
		opts.EncryptedColumns = DefaultEncryptedColumns
	}
	for _, c := range opts.EncryptedColumns {
		if !identifierPattern.MatchString(c) {
			return nil, fmt.Errorf("%w: %q", common.ErrInvalidColumnName, c)
		}
	}
	opts.EncryptedColumns = slices.Clone(opts.EncryptedColumns)

	return &Engine{
		db:        db,
		opts:      opts,
		projector: NewProjector(opts.Codec, opts.EncryptedColumns),
		guard:     Guard{Threshold: opts.RowWarningThreshold},
	}, nil
}

// Options returns a copy of the engine configuration.
func (e *Engine) Options() Options {
	o := e.opts
	o.EncryptedColumns = slices.Clone(o.EncryptedColumns)
	return o
}

// ListIdentities returns every bare Jid seen as sender or recipient, sorted,
// split into users and chat rooms.
func (e *Engine) ListIdentities(ctx context.Context, s Search) (Identities, error) {
	seen := make(map[string]struct{})
	for _, col := range []string{ColumnToJID, ColumnFromJID} {
		pairs, err := e.distinct(ctx, []string{col}, matchAll, nil, s)
		if err != nil {
			return Identities{}, err
		}
		for _, p := range pairs {
			seen[Bare(p[0])] = struct{}{}
		}
	}

	var ids Identities
	for _, jid := range sortedKeys(seen) {
		if jid == "" {
			continue
		}
		if IsChatRoom(jid) {
			ids.ChatRooms = append(ids.ChatRooms, jid)
		} else {
			ids.Users = append(ids.Users, jid)
		}
	}
	return ids, nil
}

// Users returns the non chat room part of ListIdentities.
func (e *Engine) Users(ctx context.Context, s Search) ([]string, error) {
	ids, err := e.ListIdentities(ctx, s)
	return ids.Users, err
}

// ChatRooms returns the chat room part of ListIdentities.
func (e *Engine) ChatRooms(ctx context.Context, s Search) ([]string, error) {
	ids, err := e.ListIdentities(ctx, s)
	return ids.ChatRooms, err
}

// RecipientsOf returns the users identity sent messages to. For a chat room
// it returns the room's participants (see ParticipantsOf).
func (e *Engine) RecipientsOf(ctx context.Context, identity string, s Search) ([]string, error) {
	if IsChatRoom(identity) {
		return e.ParticipantsOf(ctx, identity, s)
	}
	return e.counterparts(ctx, ColumnFromJID, identity, s, func(jid string) bool { return !IsChatRoom(jid) })
}

// ParticipantsOf returns the bare Jids a chat room relayed messages to.
func (e *Engine) ParticipantsOf(ctx context.Context, room string, s Search) ([]string, error) {
	return e.counterparts(ctx, ColumnFromJID, room, s, func(jid string) bool { return !IsChatRoom(jid) })
}

// SendersTo returns the users that sent messages to identity.
func (e *Engine) SendersTo(ctx context.Context, identity string, s Search) ([]string, error) {
	return e.counterparts(ctx, ColumnToJID, identity, s, func(jid string) bool { return !IsChatRoom(jid) })
}

// ChatRoomsFor returns the chat rooms every one of identities sent messages
// into. With several identities the result is the intersection of each
// identity's rooms.
func (e *Engine) ChatRoomsFor(ctx context.Context, identities []string, s Search) ([]string, error) {
	if len(identities) == 0 {
		return nil, errors.New("chat rooms: at least one identity is required")
	}

	var shared map[string]struct{}
	for _, id := range identities {
		rooms, err := e.counterparts(ctx, ColumnFromJID, id, s, IsChatRoom)
		if err != nil {
			return nil, err
		}

		set := make(map[string]struct{}, len(rooms))
		for _, r := range rooms {
			if shared == nil {
				set[r] = struct{}{}
				continue
			}
			if _, ok := shared[r]; ok {
				set[r] = struct{}{}
			}
		}
		shared = set
		if len(shared) == 0 {
			break
		}
	}
	return sortedKeys(shared), nil
}

// ConversationBetween returns the messages exchanged by a and b in either
// direction, ordered by sent_date.
func (e *Engine) ConversationBetween(ctx context.Context, a, b string, s Search) ([]Message, error) {
	fromA, argsFromA, err := e.jidPredicate(ColumnFromJID, a)
	if err != nil {
		return nil, err
	}
	toB, argsToB, err := e.jidPredicate(ColumnToJID, b)
	if err != nil {
		return nil, err
	}
	fromB, argsFromB, err := e.jidPredicate(ColumnFromJID, b)
	if err != nil {
		return nil, err
	}
	toA, argsToA, err := e.jidPredicate(ColumnToJID, a)
	if err != nil {
		return nil, err
	}

	where := fmt.Sprintf("((%s and %s) or (%s and %s))", fromA, toB, fromB, toA)
	args := slices.Concat(argsFromA, argsToB, argsFromB, argsToA)

	msgs, err := e.messages(ctx, where, args, s, func(m Message) bool {
		from, to := Bare(m.FromJID), Bare(m.ToJID)
		return (from == a && to == b) || (from == b && to == a)
	})
	return msgs, e.explain(err, a, b)
}

// ChatRoomLog returns the messages a chat room relayed, ordered by sent_date,
// with resent history removed (see Deduplicate).
func (e *Engine) ChatRoomLog(ctx context.Context, room string, s Search) ([]Message, error) {
	msgs, err := e.MessagesFrom(ctx, room, s)
	if err != nil {
		return nil, err
	}
	return Deduplicate(msgs), nil
}

// MessagesFrom returns the messages sent by identity, ordered by sent_date.
func (e *Engine) MessagesFrom(ctx context.Context, identity string, s Search) ([]Message, error) {
	return e.messagesBy(ctx, ColumnFromJID, identity, s, func(m Message) string { return m.FromJID })
}

// MessagesTo returns the messages received by identity, ordered by sent_date.
func (e *Engine) MessagesTo(ctx context.Context, identity string, s Search) ([]Message, error) {
	return e.messagesBy(ctx, ColumnToJID, identity, s, func(m Message) string { return m.ToJID })
}

func (e *Engine) messagesBy(ctx context.Context, column, identity string, s Search, jidOf func(Message) string) ([]Message, error) {
	pred, args, err := e.jidPredicate(column, identity)
	if err != nil {
		return nil, err
	}
	msgs, err := e.messages(ctx, pred, args, s, func(m Message) bool {
		return Bare(jidOf(m)) == identity
	})
	return msgs, e.explain(err, identity)
}

// counterparts looks up the distinct (from_jid, to_jid) pairs where column
// matches identity and returns the bare Jids on the other side that pass keep.
func (e *Engine) counterparts(ctx context.Context, column, identity string, s Search, keep func(string) bool) ([]string, error) {
	pred, args, err := e.jidPredicate(column, identity)
	if err != nil {
		return nil, err
	}

	pairs, err := e.distinct(ctx, []string{ColumnFromJID, ColumnToJID}, pred, args, s)
	if err != nil {
		return nil, e.explain(err, identity)
	}

	self, other := 0, 1
	if column == ColumnToJID {
		self, other = 1, 0
	}

	found := make(map[string]struct{})
	for _, p := range pairs {
		if Bare(p[self]) != identity {
			continue
		}
		jid := Bare(p[other])
		if jid != "" && keep(jid) {
			found[jid] = struct{}{}
		}
	}
	return sortedKeys(found), nil
}

// explain records on a row count refusal which identity, if any, was too
// short for a blind and so widened the count to unrelated rows.
func (e *Engine) explain(err error, identities ...string) error {
	var tooLarge *common.ResultTooLargeError
	if !e.opts.Codec.Enabled() || !errors.As(err, &tooLarge) {
		return err
	}
	for _, id := range identities {
		if _, ok, blindErr := e.opts.Codec.Blind(id); blindErr == nil && !ok {
			tooLarge.ShortIdentity = id
			break
		}
	}
	return err
}

// jidPredicate renders a prefix match of column against the identity's blind.
// When no blind is available the predicate matches every row and the caller's
// exact re-check does all the filtering.
func (e *Engine) jidPredicate(column, identity string) (string, []any, error) {
	if identity == "" {
		return "", nil, errors.New("empty identity")
	}

	prefix := identity
	if e.opts.Codec.Enabled() {
		blind, ok, err := e.opts.Codec.Blind(identity)
		if err != nil {
			return "", nil, err
		}
		if !ok {
			return matchAll, nil, nil
		}
		prefix = blind
	}

	return column + ` like ? escape '\'`, []any{likeEscaper.Replace(prefix) + "%"}, nil
}

// where appends the time range clause to pred.
func (e *Engine) where(pred string, args []any, r timerange.Range) (string, []any, error) {
	clause, err := r.Clause(timerange.Lead)
	if err != nil {
		return "", nil, err
	}
	return pred + clause.SQL, slices.Concat(args, clause.Args), nil
}

func (e *Engine) rebind(q string) string {
	return dbx.Rebind(e.opts.BindType, q)
}

// messages runs the guarded full-row query and keeps the rows accepted by verify.
func (e *Engine) messages(ctx context.Context, pred string, args []any, s Search, verify func(Message) bool) ([]Message, error) {
	where, args, err := e.where(pred, args, s.Range)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !s.IgnoreRowCount {
		q := fmt.Sprintf("select count(*) from %s where %s", e.opts.Table, where)
		if err := e.guard.Check(ctx, e.db, e.rebind(q), args...); err != nil {
			return nil, err
		}
	}

	q := fmt.Sprintf("select * from %s where %s order by %s", e.opts.Table, where, ColumnSentDate)
	rows, err := e.db.QueryContext(ctx, e.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select messages: %w", err)
	}
	defer rows.Close()

	var result []Message
	for rows.Next() {
		raw := make(map[string]any)
		if err := sqlx.MapScan(rows, raw); err != nil {
			return nil, err
		}
		m, err := e.projector.Project(raw)
		if err != nil {
			return nil, err
		}
		if verify(m) {
			result = append(result, m)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// distinct returns the decrypted distinct values of columns for the rows
// matching pred, one slice per row in column order.
func (e *Engine) distinct(ctx context.Context, columns []string, pred string, args []any, s Search) ([][]string, error) {
	where, args, err := e.where(pred, args, s.Range)
	if err != nil {
		return nil, err
	}

	cols := strings.Join(columns, ", ")
	inner := fmt.Sprintf("select distinct %s from %s where %s", cols, e.opts.Table, where)

	e.mu.Lock()
	defer e.mu.Unlock()

	if !s.IgnoreRowCount {
		q := fmt.Sprintf("select count(*) from (%s) as probe", inner)
		if err := e.guard.Check(ctx, e.db, e.rebind(q), args...); err != nil {
			return nil, err
		}
	}

	rows, err := e.db.QueryContext(ctx, e.rebind(inner), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", cols, err)
	}
	defer rows.Close()

	var result [][]string
	for rows.Next() {
		raw := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		vals := make([]string, len(columns))
		for i, col := range columns {
			v, err := e.projector.Value(col, raw[i])
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		result = append(result, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
