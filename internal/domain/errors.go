package domain

import "errors"

// Domain errors
var (
	ErrProfileNotFound       = errors.New("profile not found")
	ErrScenarioNotFound      = errors.New("scenario not found")
	ErrInvalidToken          = errors.New("invalid token")
	ErrTrialExpired          = errors.New("trial expired")
	ErrCreditsExhausted      = errors.New("credits exhausted")
	ErrAudioCreditsExhausted = errors.New("audio credits exhausted")
	ErrDemoLimitExceeded     = errors.New("demo request limit exceeded")

	// ErrLedgerConflict is returned by CreditRepository.Consume when the
	// guarded atomic update matched no eligible row: the balance or trial
	// state changed between the gate's read and its write.
	ErrLedgerConflict = errors.New("ledger update affected no rows")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
