package constants

// OutcomeStatus is the canonical status for rows in extraction_outcomes.
type OutcomeStatus string

// Stable values (store these exact strings in DB).
const (
	StatusParsed OutcomeStatus = "PARSED" // record extracted
	StatusFailed OutcomeStatus = "FAILED" // terminal failure
)
