package matrix

// syncstore.go implements mautrix.SyncStore over the assistant's SQLite
// database. Persisting the next_batch token across restarts prevents the
// assistant from replaying old room history and re-answering questions that
// were already handled in a previous run.

import (
	"context"
	"database/sql"
	"errors"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/id"
)

var _ mautrix.SyncStore = (*DBSyncStore)(nil)

// DBSyncStore stores the sync token and filter ID in the matrix_sync_state
// table, one row per user.
type DBSyncStore struct {
	db *sql.DB
}

// newDBSyncStore wraps the given connection. The matrix_sync_state migration
// must already be applied.
func newDBSyncStore(db *sql.DB) *DBSyncStore {
	return &DBSyncStore{db: db}
}

// SaveFilterID persists the Matrix event-filter ID for the given user.
func (s *DBSyncStore) SaveFilterID(ctx context.Context, userID id.UserID, filterID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO matrix_sync_state (user_id, filter_id, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET filter_id = excluded.filter_id, updated_at = CURRENT_TIMESTAMP
	`, userID.String(), filterID)
	return err
}

// LoadFilterID retrieves the persisted event-filter ID. Returns ("", nil)
// when nothing is saved yet.
func (s *DBSyncStore) LoadFilterID(ctx context.Context, userID id.UserID) (string, error) {
	var filterID sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT filter_id FROM matrix_sync_state WHERE user_id = ?`, userID.String(),
	).Scan(&filterID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return filterID.String, err
}

// SaveNextBatch persists the opaque /sync next_batch token.
func (s *DBSyncStore) SaveNextBatch(ctx context.Context, userID id.UserID, nextBatchToken string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO matrix_sync_state (user_id, next_batch, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET next_batch = excluded.next_batch, updated_at = CURRENT_TIMESTAMP
	`, userID.String(), nextBatchToken)
	return err
}

// LoadNextBatch retrieves the last saved next_batch token. Returns ("", nil)
// on first run.
func (s *DBSyncStore) LoadNextBatch(ctx context.Context, userID id.UserID) (string, error) {
	var nextBatch sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT next_batch FROM matrix_sync_state WHERE user_id = ?`, userID.String(),
	).Scan(&nextBatch)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return nextBatch.String, err
}
