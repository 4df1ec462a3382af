package interfaces

import "github.com/chinayuren2022-2025/kimi-stock-advisor/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger defines the display surface (dashboard server).
// -----------------------------------------------------------------------------

type IDataExchanger interface {

	// -----------------------------------------------------------------------------

	// Broadcast updates the held state and pushes it to connected clients.
	Broadcast(state *models.MLatestData)

	// -----------------------------------------------------------------------------

	// RecordAlert appends an alert to the retained alert log.
	RecordAlert(alert models.MAlert, analysis string)

	// -----------------------------------------------------------------------------

	// Start the server
	Start() error

	// -----------------------------------------------------------------------------

	// Stop the server gracefully
	Stop() error
}
