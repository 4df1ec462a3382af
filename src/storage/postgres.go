package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/interfaces"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/logger"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresSnapshotStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

var _ interfaces.ISnapshotStore = (*PostgresSnapshotStore)(nil)

// -----------------------------------------------------------------------------

func NewPostgresSnapshotStore(cfg *models.MConfig, log *logger.Logger) (*PostgresSnapshotStore, error) {
	return &PostgresSnapshotStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresSnapshotStore) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db
	return d.ensureTables()
}

// -----------------------------------------------------------------------------

func (d *PostgresSnapshotStore) ensureTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS stock_meta (
			code TEXT PRIMARY KEY,
			name TEXT
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create stock_meta: %w", err)
	}

	query = `
		CREATE TABLE IF NOT EXISTS market_snapshot (
			id BIGSERIAL PRIMARY KEY,
			timestamp BIGINT,
			code TEXT REFERENCES stock_meta(code),
			price DOUBLE PRECISION,
			change_pct DOUBLE PRECISION,
			volume DOUBLE PRECISION
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create market_snapshot: %w", err)
	}

	query = `
		CREATE INDEX IF NOT EXISTS idx_code_timestamp
		ON market_snapshot (code, timestamp DESC);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create idx_code_timestamp: %w", err)
	}

	d.Logger.Info("Postgres store initialized (with index)")
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresSnapshotStore) InitMeta(names map[string]string) error {
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

	stmt, err := tx.Prepare("INSERT INTO stock_meta (code, name) VALUES ($1, $2) ON CONFLICT DO NOTHING")
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

func (d *PostgresSnapshotStore) SaveSnapshots(batch []models.MSnapshot) error {
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
		VALUES ($1, $2, $3, $4, $5)
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

func (d *PostgresSnapshotStore) RecentSnapshots(code string, limit int) ([]models.MSnapshot, error) {
	rows, err := d.DB.Query(`
		SELECT timestamp, price, change_pct, volume
		FROM market_snapshot
		WHERE code = $1
		ORDER BY timestamp DESC
		LIMIT $2
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

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	return result, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresSnapshotStore) CleanupOldData(retention time.Duration) error {
	cutoff := time.Now().UTC().Add(-retention).Unix()

	if _, err := d.DB.Exec("DELETE FROM market_snapshot WHERE timestamp < $1", cutoff); err != nil {
		d.Logger.Error("Cleanup market_snapshot error: %v", err)
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresSnapshotStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
