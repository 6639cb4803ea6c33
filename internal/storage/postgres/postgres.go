// Package postgres stores records and users in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"moneybook/internal/core"
	"moneybook/internal/storage"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
    id         TEXT PRIMARY KEY,
    owner_id   TEXT NOT NULL,
    kind       TEXT NOT NULL,
    amount     DOUBLE PRECISION NOT NULL CHECK (amount > 0),
    note       TEXT NOT NULL DEFAULT '',
    period     CHAR(7) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    seq        BIGSERIAL
);

CREATE INDEX IF NOT EXISTS idx_records_owner_period ON records (owner_id, period, created_at DESC);
`

const recordColumns = `id, owner_id, kind, amount, note, period, created_at`

type Repository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// New connects to databaseURL and makes sure the schema exists.
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	r := &Repository{pool: pool, now: time.Now}
	if err := r.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

// EnsureSchema creates the tables when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repository) CreateRecord(ctx context.Context, n core.NewRecord) (core.Record, error) {
	if err := n.Validate(); err != nil {
		return core.Record{}, err
	}
	rec := n.Record(uuid.NewString(), r.now().UTC().Truncate(time.Microsecond))
	_, err := r.pool.Exec(ctx,
		`INSERT INTO records (`+recordColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.OwnerID, string(rec.Kind), rec.Amount, rec.Note, string(rec.Period), rec.CreatedAt)
	if err != nil {
		return core.Record{}, fmt.Errorf("insert record: %w", err)
	}
	return rec, nil
}

func (r *Repository) DeleteRecord(ctx context.Context, ownerID, id string) (core.Record, error) {
	row := r.pool.QueryRow(ctx,
		`DELETE FROM records WHERE owner_id = $1 AND id = $2 RETURNING `+recordColumns,
		ownerID, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Record{}, storage.ErrNotFound
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("delete record: %w", err)
	}
	return rec, nil
}

func (r *Repository) ListByPeriod(ctx context.Context, ownerID string, period core.PeriodKey) ([]core.Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM records
		 WHERE owner_id = $1 AND period = $2
		 ORDER BY created_at DESC, seq DESC`,
		ownerID, string(period))
	if err != nil {
		return nil, fmt.Errorf("list records by period: %w", err)
	}
	return collectRecords(rows)
}

func (r *Repository) ListByYear(ctx context.Context, ownerID string, year int) ([]core.Record, error) {
	first, last := storage.YearBounds(year)
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM records
		 WHERE owner_id = $1 AND period BETWEEN $2 AND $3
		 ORDER BY created_at DESC, seq DESC`,
		ownerID, string(first), string(last))
	if err != nil {
		return nil, fmt.Errorf("list records by year: %w", err)
	}
	return collectRecords(rows)
}

func (r *Repository) Owners(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT owner_id FROM records ORDER BY owner_id`)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	owners, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan owners: %w", err)
	}
	return owners, nil
}

func (r *Repository) CreateUser(ctx context.Context, email, passwordHash string) (storage.User, error) {
	u := storage.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		CreatedAt:    r.now().UTC(),
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return storage.User{}, storage.ErrEmailTaken
		}
		return storage.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *Repository) UserByEmail(ctx context.Context, email string) (storage.User, error) {
	var u storage.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email))).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.User{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func scanRecord(row pgx.Row) (core.Record, error) {
	var (
		rec          core.Record
		kind, period string
	)
	if err := row.Scan(&rec.ID, &rec.OwnerID, &kind, &rec.Amount, &rec.Note, &period, &rec.CreatedAt); err != nil {
		return core.Record{}, err
	}
	rec.Kind = core.Kind(kind)
	rec.Period = core.PeriodKey(period)
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}

func collectRecords(rows pgx.Rows) ([]core.Record, error) {
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Record, error) {
		return scanRecord(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	if records == nil {
		records = []core.Record{}
	}
	return records, nil
}
