package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"moneybook/internal/core"
)

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Single connection: concurrent writers would hit SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping implements the readiness check.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) CreateRecord(ctx context.Context, n core.NewRecord) (core.Record, error) {
	if err := n.Validate(); err != nil {
		return core.Record{}, err
	}
	rec := n.Record(uuid.NewString(), r.now().UTC())
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO records (id, owner_id, kind, amount, note, period, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.OwnerID, string(rec.Kind), rec.Amount, rec.Note, string(rec.Period), rec.CreatedAt.UnixMilli())
	if err != nil {
		return core.Record{}, fmt.Errorf("insert record: %w", err)
	}
	// Millisecond precision is what a reload would return.
	rec.CreatedAt = time.UnixMilli(rec.CreatedAt.UnixMilli()).UTC()
	return rec, nil
}

func (r *SQLiteRepository) DeleteRecord(ctx context.Context, ownerID, id string) (core.Record, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Record{}, fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT id, owner_id, kind, amount, note, period, created_at FROM records WHERE owner_id = ? AND id = ?`,
		ownerID, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, ErrNotFound
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("load record: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE owner_id = ? AND id = ?`, ownerID, id); err != nil {
		return core.Record{}, fmt.Errorf("delete record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Record{}, fmt.Errorf("commit delete: %w", err)
	}
	return rec, nil
}

func (r *SQLiteRepository) ListByPeriod(ctx context.Context, ownerID string, period core.PeriodKey) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, kind, amount, note, period, created_at FROM records
		 WHERE owner_id = ? AND period = ?
		 ORDER BY created_at DESC, rowid DESC`,
		ownerID, string(period))
	if err != nil {
		return nil, fmt.Errorf("list records by period: %w", err)
	}
	return collectRecords(rows)
}

func (r *SQLiteRepository) ListByYear(ctx context.Context, ownerID string, year int) ([]core.Record, error) {
	first, last := YearBounds(year)
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, kind, amount, note, period, created_at FROM records
		 WHERE owner_id = ? AND period >= ? AND period <= ?
		 ORDER BY created_at DESC, rowid DESC`,
		ownerID, string(first), string(last))
	if err != nil {
		return nil, fmt.Errorf("list records by year: %w", err)
	}
	return collectRecords(rows)
}

func (r *SQLiteRepository) Owners(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT owner_id FROM records ORDER BY owner_id`)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	defer rows.Close()
	var owners []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		owners = append(owners, id)
	}
	return owners, rows.Err()
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, email, passwordHash string) (User, error) {
	u := User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		CreatedAt:    r.now().UTC(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt.UnixMilli())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) UserByEmail(ctx context.Context, email string) (User, error) {
	var (
		u       User
		created int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email))).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("load user: %w", err)
	}
	u.CreatedAt = time.UnixMilli(created).UTC()
	return u, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (core.Record, error) {
	var (
		rec          core.Record
		kind, period string
		created      int64
	)
	if err := s.Scan(&rec.ID, &rec.OwnerID, &kind, &rec.Amount, &rec.Note, &period, &created); err != nil {
		return core.Record{}, err
	}
	rec.Kind = core.Kind(kind)
	rec.Period = core.PeriodKey(period)
	if created > 0 {
		rec.CreatedAt = time.UnixMilli(created).UTC()
	}
	return rec, nil
}

func collectRecords(rows *sql.Rows) ([]core.Record, error) {
	defer rows.Close()
	records := []core.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}
