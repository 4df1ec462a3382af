package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/interfaces"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/logger"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteSnapshotStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

var _ interfaces.ISnapshotStore = (*SQLiteSnapshotStore)(nil)

// -----------------------------------------------------------------------------

func NewSQLiteSnapshotStore(cfg *models.MConfig, log *logger.Logger) (*SQLiteSnapshotStore, error) {
	return &SQLiteSnapshotStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

// Initialize opens the database and creates tables/indexes if absent.
// Idempotent: history survives restarts.
func (d *SQLiteSnapshotStore) Initialize() error {
	dsn := d.Config.Storage.DBPath

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// Single writer per tick; WAL lets dashboard reads proceed during writes.
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.ensureTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteSnapshotStore) ensureTables() error {
	// Symbol metadata (code -> display name)
	query := `
		CREATE TABLE IF NOT EXISTS stock_meta (
			code TEXT PRIMARY KEY,
			name TEXT
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create stock_meta: %w", err)
	}

	// Append-only time series
	query = `
		CREATE TABLE IF NOT EXISTS market_snapshot (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER,
			code TEXT,
			price REAL,
			change_pct REAL,
			volume REAL,
			FOREIGN KEY(code) REFERENCES stock_meta(code)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create market_snapshot: %w", err)
	}

	// Composite index for fast "most recent N for symbol" scans
	query = `
		CREATE INDEX IF NOT EXISTS idx_code_timestamp
		ON market_snapshot (code, timestamp DESC);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create idx_code_timestamp: %w", err)
	}

	d.Logger.Info("SQLite store initialized (with index)")
	return nil
}

// -----------------------------------------------------------------------------

// InitMeta populates stock_meta once. Skipped when rows already exist so a
// restart does not refetch or overwrite names.
func (d *SQLiteSnapshotStore) InitMeta(names map[string]string) error {
	var count int
	if err := d.DB.QueryRow("SELECT count(*) FROM stock_meta").Scan(&count); err != nil {
		return err
	}

	if count > 0 {
		d.Logger.Info("Stock meta already populated (%d symbols). Skipping.", count)
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO stock_meta (code, name) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for code, name := range names {
		if _, err := stmt.Exec(code, name); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	d.Logger.Info("Populated %d symbols into meta table", len(names))
	return nil
}

// -----------------------------------------------------------------------------

// SaveSnapshots inserts a batch as one transaction. Partial failures roll the
// whole batch back; an empty batch is a no-op.
func (d *SQLiteSnapshotStore) SaveSnapshots(batch []models.MSnapshot) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO market_snapshot (timestamp, code, price, change_pct, volume)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range batch {
		if _, err := stmt.Exec(s.Timestamp, s.Code, s.Price, s.ChangePct, s.Volume); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

// RecentSnapshots returns up to limit most-recent rows for a symbol, ordered
// ascending by timestamp (the index serves the DESC scan; we reverse for the
// caller).
func (d *SQLiteSnapshotStore) RecentSnapshots(code string, limit int) ([]models.MSnapshot, error) {
	rows, err := d.DB.Query(`
		SELECT timestamp, price, change_pct, volume
		FROM market_snapshot
		WHERE code = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`, code, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.MSnapshot
	for rows.Next() {
		s := models.MSnapshot{Code: code}
		if err := rows.Scan(&s.Timestamp, &s.Price, &s.ChangePct, &s.Volume); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to ascending
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	return result, nil
}

// -----------------------------------------------------------------------------

// CleanupOldData removes snapshots older than the given retention window.
func (d *SQLiteSnapshotStore) CleanupOldData(retention time.Duration) error {
	cutoff := time.Now().UTC().Add(-retention).Unix()

	if _, err := d.DB.Exec("DELETE FROM market_snapshot WHERE timestamp < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup market_snapshot error: %v", err)
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteSnapshotStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
