package interfaces

import (
	"time"

	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/models"
)

// -----------------------------------------------------------------------------
// ISnapshotStore defines the contract for time-series storage.
// -----------------------------------------------------------------------------

type ISnapshotStore interface {

	// -----------------------------------------------------------------------------

	// Initialize creates the snapshot table, the (code, timestamp DESC) index
	// and the symbol-metadata table if absent. Idempotent; called on every
	// process start.
	Initialize() error

	// -----------------------------------------------------------------------------

	// InitMeta populates the symbol-metadata table from the given code->name
	// mapping, only when the table is empty.
	InitMeta(names map[string]string) error

	// -----------------------------------------------------------------------------

	// SaveSnapshots inserts a batch as one transaction. An empty batch is a
	// no-op; on failure nothing from the batch is visible.
	SaveSnapshots(batch []models.MSnapshot) error

	// -----------------------------------------------------------------------------

	// RecentSnapshots returns up to limit most-recent snapshots for a symbol,
	// ordered ascending by timestamp.
	RecentSnapshots(code string, limit int) ([]models.MSnapshot, error)

	// -----------------------------------------------------------------------------

	// CleanupOldData deletes snapshots older than the retention window.
	CleanupOldData(retention time.Duration) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
