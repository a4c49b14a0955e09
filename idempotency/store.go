package idempotency

import (
	"context"
	"database/sql"
	"time"

	"mailflock/newsletter-outbox/config"
	s "mailflock/newsletter-outbox/outbox/data/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrProcessingConflict is returned when another execution holds the
// in-flight record for the same (user, key) and does not complete
// within the configured wait bound. Callers should map it to a
// "retry later" response.
var ErrProcessingConflict = errors.New("a concurrent request with the same idempotency key is still in flight")

const conflictPollInterval = 100 * time.Millisecond

type queryProvider interface {
	IdempotencyInsertSql() string
	IdempotencyFetchSql() string
	IdempotencyCompleteSql() string
	IdempotencyDeleteCompletedSql() string
	IdempotencyCompletedCountSql() string
}

// Store owns the (user, key) -> saved response mapping. The unique
// constraint on the underlying table is the concurrency gate: of N
// racing requests with the same key, exactly one insert succeeds and
// receives a processing ticket.
type Store struct {
	db            *sql.DB
	queryProvider queryProvider
	waitTimeout   time.Duration
}

func NewStore(db *sql.DB, cfg *config.Config) Store {
	return NewStoreWithQueryProvider(db, newQueryProvider(cfg.DBDriver), cfg.GetIdempotencyWaitDuration())
}

func NewStoreWithQueryProvider(db *sql.DB, qp queryProvider, waitTimeout time.Duration) Store {
	return Store{
		db:            db,
		queryProvider: qp,
		waitTimeout:   waitTimeout,
	}
}

// Ticket is the handle granted to the single execution that won the
// insert race. Every write belonging to the command (the newsletter
// issue and its delivery tasks included) must go through Tx(), so that
// the business change and the idempotency bookkeeping commit together.
type Ticket struct {
	tx     *sql.Tx
	userID uuid.UUID
	key    Key
}

func (t *Ticket) Tx() *sql.Tx {
	return t.tx
}

// Rollback aborts the command's transaction, which also deletes the
// in-flight record so a later retry gets a fresh execution instead of
// being stuck behind a phantom row.
func (t *Ticket) Rollback() error {
	return t.tx.Rollback()
}

// TryProcessing attempts to claim (userID, key) for execution. Exactly
// one of the returned ticket and response is non-nil on success. A
// non-nil response means a previous execution already completed and the
// caller must short-circuit with it instead of re-running the command.
// If a concurrent execution is in flight, TryProcessing waits for it to
// commit or roll back, polling with a backoff bounded by the store's
// wait timeout, and returns ErrProcessingConflict past the bound.
func (st Store) TryProcessing(ctx context.Context, userID uuid.UUID, key Key) (*Ticket, *SavedResponse, error) {
	deadline := time.Now().Add(st.waitTimeout)

	for {
		tx, err := st.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, nil, errors.Wrap(err, "idempotency: error starting a DB transaction")
		}

		res, err := tx.ExecContext(ctx, st.queryProvider.IdempotencyInsertSql(), userID, key.String())
		if err != nil {
			_ = tx.Rollback()
			return nil, nil, errors.Wrap(err, "idempotency: error inserting in-flight record")
		}

		// the drivers we use never return an error from RowsAffected()
		if count, _ := res.RowsAffected(); count == 1 {
			return &Ticket{tx: tx, userID: userID, key: key}, nil, nil
		}

		// another execution won the insert, the open transaction holds
		// nothing we need
		_ = tx.Rollback()

		saved, inFlight, err := st.fetchSavedResponse(ctx, userID, key)
		if err != nil {
			return nil, nil, err
		}

		if saved != nil {
			return nil, saved, nil
		}

		if !inFlight {
			// the racer rolled back, its record is gone, retry the insert
			continue
		}

		if time.Now().After(deadline) {
			return nil, nil, ErrProcessingConflict
		}

		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(conflictPollInterval):
		}
	}
}

// SaveResponse writes the response into the record claimed by the
// ticket and commits the command's transaction. The response is handed
// back unchanged so the caller can persist and answer with one call.
func (st Store) SaveResponse(ctx context.Context, t *Ticket, resp SavedResponse) (SavedResponse, error) {
	headers, err := encodeHeaders(resp.Headers)
	if err != nil {
		_ = t.tx.Rollback()
		return SavedResponse{}, err
	}

	_, err = t.tx.ExecContext(ctx, st.queryProvider.IdempotencyCompleteSql(), resp.StatusCode, headers, resp.Body, t.userID, t.key.String())
	if err != nil {
		_ = t.tx.Rollback()
		return SavedResponse{}, errors.Wrap(err, "idempotency: error saving the response on the in-flight record")
	}

	if err = t.tx.Commit(); err != nil {
		return SavedResponse{}, errors.Wrap(err, "idempotency: error committing the command transaction")
	}

	return resp, nil
}

// DeleteCompletedBefore removes completed records older than the given
// time. In-flight records are never touched. Intended for the cleanup
// job; the store applies no TTL on its own.
func (st Store) DeleteCompletedBefore(olderThan time.Time) (int64, error) {
	res, err := st.db.Exec(st.queryProvider.IdempotencyDeleteCompletedSql(), olderThan)
	if err != nil {
		return 0, errors.Wrap(err, "idempotency: error deleting completed records")
	}

	return res.RowsAffected()
}

func (st Store) GetCompletedCount() (uint, error) {
	var count uint
	err := st.db.QueryRow(st.queryProvider.IdempotencyCompletedCountSql()).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "idempotency: error counting completed records")
	}

	return count, nil
}

func (st Store) fetchSavedResponse(ctx context.Context, userID uuid.UUID, key Key) (saved *SavedResponse, inFlight bool, err error) {
	var status sql.NullInt64
	var headers, body []byte

	row := st.db.QueryRowContext(ctx, st.queryProvider.IdempotencyFetchSql(), userID, key.String())
	err = row.Scan(&status, &headers, &body)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "idempotency: error reading existing record")
	}

	if !status.Valid {
		return nil, true, nil
	}

	decoded, err := decodeHeaders(headers)
	if err != nil {
		return nil, false, err
	}

	return &SavedResponse{
		StatusCode: int(status.Int64),
		Headers:    decoded,
		Body:       body,
	}, false, nil
}

func newQueryProvider(d config.DbDriver) queryProvider {
	switch true {
	case d.Postgres():
		return s.NewPostgresQueryProvider()
	case d.MySQL():
		return s.NewMysqlQueryProvider()
	}

	return nil
}
