package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultOpTimeout = 5 * time.Second

// PostgresStore implements Store over courtside.credentials.
type PostgresStore struct {
	pool      *pgxpool.Pool
	opTimeout time.Duration
}

// NewPostgresStore creates a Postgres-backed store. opTimeout bounds each
// store round trip; zero or negative selects the default.
func NewPostgresStore(pool *pgxpool.Pool, opTimeout time.Duration) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("credential: nil pool")
	}
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &PostgresStore{pool: pool, opTimeout: opTimeout}, nil
}

const recordColumns = `id, username, role, password_hash, refresh_secret_hash, refresh_secret_expires_at, created_at`

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.Username,
		&rec.Role,
		&rec.PasswordHash,
		&rec.RefreshSecretHash,
		&rec.RefreshSecretExpiresAt,
		&rec.CreatedAt,
	)
	return rec, err
}

// FindByUsername implements Store.
func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	rec, err := scanRecord(s.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM courtside.credentials
		WHERE username = $1
	`, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, unavailable("find by username", err)
	}
	return rec, nil
}

// FindByRefreshSecret implements Store. The candidate set is read fully and
// the connection released before verification starts: verify is an argon2
// run per candidate and must not hold a pool connection.
func (s *PostgresStore) FindByRefreshSecret(ctx context.Context, plain string, verify VerifySecret) (Record, error) {
	candidates, err := s.activeRefreshRecords(ctx)
	if err != nil {
		return Record{}, err
	}

	for _, rec := range candidates {
		ok, err := verify(plain, *rec.RefreshSecretHash)
		if err != nil {
			continue // malformed stored hash: treat as non-match
		}
		if ok {
			return rec, nil
		}
	}
	return Record{}, ErrNotFound
}

func (s *PostgresStore) activeRefreshRecords(ctx context.Context) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM courtside.credentials
		WHERE refresh_secret_hash IS NOT NULL
	`)
	if err != nil {
		return nil, unavailable("scan refresh secrets", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, unavailable("scan refresh secrets", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("scan refresh secrets", err)
	}
	return out, nil
}

// SetRefreshSecret implements Store.
func (s *PostgresStore) SetRefreshSecret(ctx context.Context, userID string, hash *string, expiresAt *time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `
		UPDATE courtside.credentials
		SET refresh_secret_hash = $2,
		    refresh_secret_expires_at = $3
		WHERE id = $1
	`, userID, hash, expiresAt)
	if err != nil {
		return unavailable("set refresh secret", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceRefreshSecret implements Store: lock the row, re-check the hash,
// then overwrite, all in one transaction.
func (s *PostgresStore) ReplaceRefreshSecret(ctx context.Context, userID, observedHash, newHash string, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return unavailable("replace refresh secret", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var stored *string
	err = tx.QueryRow(ctx, `
		SELECT refresh_secret_hash
		FROM courtside.credentials
		WHERE id = $1
		FOR UPDATE
	`, userID).Scan(&stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return unavailable("replace refresh secret", err)
	}

	if stored == nil || *stored != observedHash {
		return ErrConflict
	}

	if _, err := tx.Exec(ctx, `
		UPDATE courtside.credentials
		SET refresh_secret_hash = $2,
		    refresh_secret_expires_at = $3
		WHERE id = $1
	`, userID, newHash, expiresAt); err != nil {
		return unavailable("replace refresh secret", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return unavailable("replace refresh secret", err)
	}
	return nil
}

// unavailable folds transport and query failures into ErrUnavailable so the
// orchestrator can keep infrastructure faults separate from authorization
// outcomes.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}
