package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"language-coach-server/internal/domain"
)

// SupabaseCreditRepository implements the domain.CreditRepository interface.
//
// Consumption goes through the consume_credits SQL function (see
// supabase/migrations) so the decrement is a single guarded UPDATE statement.
// A read-modify-write over two round trips would let two concurrent requests
// both pass the balance check; the RPC closes that race.
type SupabaseCreditRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabaseCreditRepository creates a new Supabase credit repository
func NewSupabaseCreditRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.CreditRepository {
	return &SupabaseCreditRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// Get returns the user's ledger, or nil when none exists.
func (r *SupabaseCreditRepository) Get(ctx context.Context, userID string, token string) (*domain.CreditLedger, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	data, _, err := client.From("credit_ledgers").
		Select("*", "", false).
		Eq("user_id", userID).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get credit ledger: %w", err)
	}

	var ledgers []domain.CreditLedger
	if err := json.Unmarshal(data, &ledgers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(ledgers) == 0 {
		return nil, nil
	}
	return &ledgers[0], nil
}

// GetOrInit reads the user's ledger, lazily creating one with the given
// defaults on first read. Creation is idempotent under races: the unique
// constraint on user_id turns a concurrent double-insert into a conflict,
// which is resolved by re-reading the winner's row.
func (r *SupabaseCreditRepository) GetOrInit(ctx context.Context, userID string, defaults domain.CreditDefaults, token string) (*domain.CreditLedger, error) {
	ledger, err := r.Get(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	if ledger != nil {
		return ledger, nil
	}

	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	now := time.Now().UTC()
	row := map[string]interface{}{
		"user_id":             userID,
		"total_credits":       defaults.TotalCredits,
		"used_credits":        0,
		"total_audio_credits": defaults.TotalAudioCredits,
		"used_audio_credits":  0,
		"trial_started_at":    now.Format(time.RFC3339),
		"trial_ends_at":       now.Add(defaults.TrialDuration).Format(time.RFC3339),
		"updated_at":          now.Format(time.RFC3339),
	}

	data, _, err := client.From("credit_ledgers").
		Insert(row, false, "", "representation", "").
		Execute()
	if err != nil {
		if isDuplicateKey(err) {
			// Lost the init race; the other writer's row is authoritative.
			existing, rerr := r.Get(ctx, userID, token)
			if rerr != nil {
				return nil, rerr
			}
			if existing == nil {
				return nil, fmt.Errorf("ledger missing after duplicate-insert conflict")
			}
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create credit ledger: %w", err)
	}

	var created []domain.CreditLedger
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("insert returned no ledger row")
	}

	r.logger.Info("Credit ledger initialized", "user_id", userID,
		"total_credits", defaults.TotalCredits, "total_audio_credits", defaults.TotalAudioCredits)
	return &created[0], nil
}

// Consume performs the atomic deduction: used_credits is always incremented
// by 1, used_audio_credits additionally by 1 when audio is true, both in one
// guarded UPDATE. Returns the updated row, or domain.ErrLedgerConflict when
// the guard matched nothing (exhausted or expired between read and write).
func (r *SupabaseCreditRepository) Consume(ctx context.Context, userID string, audio bool, token string) (*domain.CreditLedger, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	result := client.Rpc("consume_credits", "", map[string]interface{}{
		"p_user_id": userID,
		"p_audio":   audio,
	})
	if result == "" {
		// The RPC call itself failed; the balance state is unknown and must
		// not be reported as a denial.
		return nil, fmt.Errorf("consume_credits rpc failed for user %s", userID)
	}

	var updated []domain.CreditLedger
	if err := json.Unmarshal([]byte(result), &updated); err != nil {
		return nil, fmt.Errorf("failed to unmarshal consume_credits result %q: %w", result, err)
	}
	if len(updated) == 0 {
		return nil, domain.ErrLedgerConflict
	}
	return &updated[0], nil
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}
