package domain

import (
	"context"
	"time"
)

// CreditLedger is the per-user row tracking credit totals/usage and the
// trial window. It exists only for metered users; paid plans never get one.
type CreditLedger struct {
	ID                string    `json:"id,omitempty"`
	UserID            string    `json:"user_id"`
	TotalCredits      int       `json:"total_credits"`
	UsedCredits       int       `json:"used_credits"`
	TotalAudioCredits int       `json:"total_audio_credits"`
	UsedAudioCredits  int       `json:"used_audio_credits"`
	TrialStartedAt    time.Time `json:"trial_started_at"`
	TrialEndsAt       time.Time `json:"trial_ends_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// RemainingCredits returns the text-message balance, never negative.
func (l *CreditLedger) RemainingCredits() int {
	if r := l.TotalCredits - l.UsedCredits; r > 0 {
		return r
	}
	return 0
}

// RemainingAudioCredits returns the audio-turn balance, never negative.
func (l *CreditLedger) RemainingAudioCredits() int {
	if r := l.TotalAudioCredits - l.UsedAudioCredits; r > 0 {
		return r
	}
	return 0
}

// TrialExpired reports whether the trial window has closed at the given instant.
func (l *CreditLedger) TrialExpired(now time.Time) bool {
	return now.After(l.TrialEndsAt)
}

// CreditDefaults holds the values used when a ledger is lazily created for a
// metered user on first balance read.
type CreditDefaults struct {
	TotalCredits      int
	TotalAudioCredits int
	TrialDuration     time.Duration
}

// EntitlementDecision is the ephemeral result of an authorization check.
// Produced fresh per request and never cached.
type EntitlementDecision struct {
	Allowed               bool   `json:"allowed"`
	IsPaidPlan            bool   `json:"is_paid_plan"`
	RemainingCredits      *int   `json:"remaining_credits,omitempty"`
	RemainingAudioCredits *int   `json:"remaining_audio_credits,omitempty"`
	Reason                string `json:"reason,omitempty"`
}

// CreditBalance is the read model served to clients for balance display.
// It is advisory only; the gate re-reads the ledger on every request.
type CreditBalance struct {
	IsPaidPlan            bool       `json:"is_paid_plan"`
	RemainingCredits      int        `json:"remaining_credits"`
	TotalCredits          int        `json:"total_credits"`
	RemainingAudioCredits int        `json:"remaining_audio_credits"`
	TotalAudioCredits     int        `json:"total_audio_credits"`
	IsExpired             bool       `json:"is_expired"`
	TrialEndsAt           *time.Time `json:"trial_ends_at,omitempty"`
}

// CreditRepository defines persistence for credit ledgers.
//
// Consume must be implemented as a single guarded atomic increment
// (used = used + 1 in one statement), not a read-modify-write; two concurrent
// consumers with one remaining credit must not both succeed. When the guard
// rejects the update (no eligible row), implementations return
// ErrLedgerConflict so the caller can re-read and report a precise denial.
type CreditRepository interface {
	GetOrInit(ctx context.Context, userID string, defaults CreditDefaults, token string) (*CreditLedger, error)
	Get(ctx context.Context, userID string, token string) (*CreditLedger, error)
	Consume(ctx context.Context, userID string, audio bool, token string) (*CreditLedger, error)
}

// EntitlementService is the server-side usage gate. It is the only component
// allowed to trigger mutation of a ledger's used_* counters.
type EntitlementService interface {
	Authorize(ctx context.Context, userID string, isAudioRequest bool, token string) (*EntitlementDecision, error)
	Balance(ctx context.Context, userID string, token string) (*CreditBalance, error)
}
