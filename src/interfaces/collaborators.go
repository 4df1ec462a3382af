package interfaces

import "github.com/chinayuren2022-2025/kimi-stock-advisor/src/models"

// -----------------------------------------------------------------------------
// Outbound collaborators driven by the orchestrator on alert dispatch.
// Both are best-effort: failures are logged by the caller, never fatal.
// -----------------------------------------------------------------------------

type IAdvisor interface {

	// AnalyzeAlert asks the model for a short read on a triggered alert.
	// Returns the analysis text, or an error the caller logs and drops.
	AnalyzeAlert(quote *models.MQuote, alert *models.MAlert, ctx models.MAdvisorContext) (string, error)

	// Enabled reports whether the advisor is configured (API key present).
	Enabled() bool
}

// -----------------------------------------------------------------------------

type INotifier interface {

	// Send delivers a title + markdown body. Fire-and-forget semantics: a
	// missing webhook configuration makes this a silent no-op.
	Send(title, body string) error
}
