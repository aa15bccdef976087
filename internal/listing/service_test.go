package listing

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferialibre/listings-api/internal/ledger"
	"github.com/ferialibre/listings-api/internal/moderation"
)

type fakeRow struct{ err error }

func (r fakeRow) Scan(dest ...any) error { return r.err }

// fakeTx records the statements routed through a transaction. Embedding
// pgx.Tx panics on anything the code under test is not expected to call.
type fakeTx struct {
	pgx.Tx
	insertErr  error
	execErr    error
	queries    []string
	committed  bool
	rolledBack bool
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	t.queries = append(t.queries, sql)
	return fakeRow{err: t.insertErr}
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.queries = append(t.queries, sql)
	if t.execErr != nil {
		return pgconn.CommandTag{}, t.execErr
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

type fakeDB struct {
	tx      *fakeTx
	execTag pgconn.CommandTag
	execErr error
	execSQL []string
}

func (d *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) { return d.tx, nil }

func (d *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	d.execSQL = append(d.execSQL, sql)
	return d.execTag, d.execErr
}

func (d *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}

func (d *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return fakeRow{}
}

func rejectedVerdict() moderation.Verdict {
	return moderation.Verdict{
		Decision:     moderation.DecisionRejected,
		Categories:   []moderation.Category{moderation.CategoryWeapons},
		MatchedTerms: []string{"pistola"},
		Rationale:    "Contenido inapropiado detectado.",
	}
}

func TestApplyVerdictCommitsRecordAndStatusTogether(t *testing.T) {
	tx := &fakeTx{}
	svc := NewService(&fakeDB{tx: tx}, nil, ledger.NewService(nil), nil, nil, nil)

	err := svc.applyVerdict(context.Background(), uuid.New(), rejectedVerdict())
	require.NoError(t, err)

	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
	require.Len(t, tx.queries, 2)
	assert.Contains(t, tx.queries[0], "INSERT INTO moderation_records")
	assert.Contains(t, tx.queries[1], "UPDATE listings SET status")
}

func TestApplyVerdictRollsBackWhenLedgerWriteFails(t *testing.T) {
	tx := &fakeTx{insertErr: errors.New("connection reset")}
	svc := NewService(&fakeDB{tx: tx}, nil, ledger.NewService(nil), nil, nil, nil)

	err := svc.applyVerdict(context.Background(), uuid.New(), rejectedVerdict())
	require.Error(t, err)

	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
	// The status update never reached the transaction, so the listing
	// keeps its review state.
	require.Len(t, tx.queries, 1)
	assert.Contains(t, tx.queries[0], "INSERT INTO moderation_records")
}

func TestApplyVerdictRollsBackWhenStatusUpdateFails(t *testing.T) {
	tx := &fakeTx{execErr: errors.New("connection reset")}
	svc := NewService(&fakeDB{tx: tx}, nil, ledger.NewService(nil), nil, nil, nil)

	err := svc.applyVerdict(context.Background(), uuid.New(), rejectedVerdict())
	require.Error(t, err)

	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestInsertMediaEnforcesCapInStatement(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("INSERT 0 0")}
	svc := NewService(db, nil, nil, nil, nil, nil)

	err := svc.insertMedia(context.Background(), uuid.New(), MediaInput{URL: "https://res.example.com/a.jpg"})
	assert.ErrorIs(t, err, ErrMediaLimit)

	// The guard travels with the insert rather than a separate count.
	require.Len(t, db.execSQL, 1)
	assert.Contains(t, db.execSQL[0], "COUNT(*)")
}

func TestInsertMediaSucceedsUnderCap(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("INSERT 0 1")}
	svc := NewService(db, nil, nil, nil, nil, nil)

	err := svc.insertMedia(context.Background(), uuid.New(), MediaInput{URL: "https://res.example.com/a.jpg"})
	assert.NoError(t, err)
}
