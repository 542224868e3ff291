package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"spendlens/internal/core"

	_ "modernc.org/sqlite"
)

// filterSpecKey is the well-known app_state key the active filter
// specification persists under.
const filterSpecKey = "filter_spec"

// SQLiteRepository is the durable store: the transaction snapshot and
// the persisted filter specification. It implements filter.Persistence
// and services.RecordStore.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplaceRecords swaps the whole snapshot in one transaction: the old
// records go away, the new ones come in under the given snapshot ID.
// Records are assumed validated by the caller.
func (r *SQLiteRepository) ReplaceRecords(ctx context.Context, records []core.Record, snapshotID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("clear previous snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (supplier, category, subcategory, amount, date, location, fiscal_year, spend_band, snapshot_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var year sql.NullInt64
		if rec.Year != 0 {
			year = sql.NullInt64{Int64: int64(rec.Year), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			rec.Supplier, rec.Category, rec.Subcategory, rec.Amount,
			rec.Date, rec.Location, year, rec.SpendBand, snapshotID,
		); err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}

	if err := setState(ctx, tx, "snapshot_id", snapshotID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot replaced",
		"snapshot_id", snapshotID,
		"records", len(records))
	return nil
}

// ListRecords loads the current snapshot in insertion order.
func (r *SQLiteRepository) ListRecords(ctx context.Context) ([]core.Record, string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT supplier, category, subcategory, amount, date, location, fiscal_year, spend_band, snapshot_id
		FROM records ORDER BY id`)
	if err != nil {
		return nil, "", fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var (
		records    []core.Record
		snapshotID string
	)
	for rows.Next() {
		var rec core.Record
		var year sql.NullInt64
		if err := rows.Scan(
			&rec.Supplier, &rec.Category, &rec.Subcategory, &rec.Amount,
			&rec.Date, &rec.Location, &year, &rec.SpendBand, &snapshotID,
		); err != nil {
			return nil, "", fmt.Errorf("scan record: %w", err)
		}
		if year.Valid {
			rec.Year = int(year.Int64)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("iterate records: %w", err)
	}
	return records, snapshotID, nil
}

// LoadFilterSpec implements filter.Persistence. A never-written spec
// yields (nil, nil); the filter store treats that as defaults.
func (r *SQLiteRepository) LoadFilterSpec(ctx context.Context) ([]byte, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM app_state WHERE key = ?`, filterSpecKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load filter spec: %w", err)
	}
	return []byte(value), nil
}

// SaveFilterSpec implements filter.Persistence.
func (r *SQLiteRepository) SaveFilterSpec(ctx context.Context, data []byte) error {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		filterSpecKey, string(data), time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("save filter spec: %w", err)
	}
	return nil
}

func setState(ctx context.Context, tx *sql.Tx, key, value string) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("set state %s: %w", key, err)
	}
	return nil
}
