package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Himess/delreg/internal/core"
)

var _ core.DelegationStore = (*SQLiteDelegationStore)(nil)

// SQLiteDelegationStore persists delegation records in an embedded
// SQLite database so they survive restarts. Timestamps are stored as
// Unix nanoseconds so expiry comparisons happen in SQL.
type SQLiteDelegationStore struct {
	db *sql.DB
}

func NewSQLiteDelegationStore(path string) (*SQLiteDelegationStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteDelegationStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteDelegationStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS delegations (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		delegate TEXT NOT NULL,
		scope TEXT NOT NULL,
		granted_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL,
		correlation_id TEXT,
		UNIQUE (owner, delegate, scope)
	);

	CREATE INDEX IF NOT EXISTS idx_delegations_expires ON delegations(expires_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDelegationStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteDelegationStore) Put(ctx context.Context, record core.DelegationRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO delegations (id, owner, delegate, scope, granted_at, expires_at, correlation_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (owner, delegate, scope) DO UPDATE SET
			granted_at = excluded.granted_at,
			expires_at = excluded.expires_at,
			correlation_id = excluded.correlation_id`,
		uuid.NewString(),
		string(record.Key.Owner),
		string(record.Key.Delegate),
		string(record.Key.Scope),
		record.GrantedAt.UnixNano(),
		record.ExpiresAt.UnixNano(),
		record.CorrelationID,
	)
	return err
}

func (s *SQLiteDelegationStore) Get(ctx context.Context, key core.DelegationKey) (core.DelegationRecord, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT granted_at, expires_at, correlation_id
		 FROM delegations WHERE owner = ? AND delegate = ? AND scope = ?`,
		string(key.Owner), string(key.Delegate), string(key.Scope),
	)

	var grantedAt, expiresAt int64
	var correlationID sql.NullString
	if err := row.Scan(&grantedAt, &expiresAt, &correlationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.DelegationRecord{}, false, nil
		}
		return core.DelegationRecord{}, false, err
	}

	return core.DelegationRecord{
		Key:           key,
		GrantedAt:     time.Unix(0, grantedAt),
		ExpiresAt:     time.Unix(0, expiresAt),
		CorrelationID: correlationID.String,
	}, true, nil
}

func (s *SQLiteDelegationStore) Delete(ctx context.Context, key core.DelegationKey) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM delegations WHERE owner = ? AND delegate = ? AND scope = ?`,
		string(key.Owner), string(key.Delegate), string(key.Scope),
	)
	return err
}

func (s *SQLiteDelegationStore) ListActive(ctx context.Context, now time.Time) ([]core.DelegationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT owner, delegate, scope, granted_at, expires_at, correlation_id
		 FROM delegations WHERE expires_at > ? ORDER BY expires_at`,
		now.UnixNano(),
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	active := make([]core.DelegationRecord, 0)
	for rows.Next() {
		var owner, delegate, scope string
		var grantedAt, expiresAt int64
		var correlationID sql.NullString
		if err := rows.Scan(&owner, &delegate, &scope, &grantedAt, &expiresAt, &correlationID); err != nil {
			return nil, err
		}

		active = append(active, core.DelegationRecord{
			Key: core.DelegationKey{
				Owner:    core.Identity(owner),
				Delegate: core.Identity(delegate),
				Scope:    core.Identity(scope),
			},
			GrantedAt:     time.Unix(0, grantedAt),
			ExpiresAt:     time.Unix(0, expiresAt),
			CorrelationID: correlationID.String,
		})
	}

	return active, rows.Err()
}

func (s *SQLiteDelegationStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM delegations WHERE expires_at <= ?`,
		now.UnixNano(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
