package repository

import (
	"encoding/json"
	"fmt"

	"language-coach-server/internal/domain"
)

// SupabaseProfileRepository implements the domain.ProfileRepository interface
type SupabaseProfileRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabaseProfileRepository creates a new Supabase profile repository
func NewSupabaseProfileRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.ProfileRepository {
	return &SupabaseProfileRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// GetByUserID retrieves a user's profile row. A missing row is reported as
// domain.ErrProfileNotFound, which callers must surface as a provisioning
// error, never as a credit denial.
func (r *SupabaseProfileRepository) GetByUserID(userID string, token string) (*domain.Profile, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	data, _, err := client.From("profiles").
		Select("*", "", false).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var profiles []domain.Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(profiles) == 0 {
		return nil, domain.ErrProfileNotFound
	}

	profile := profiles[0]
	if profile.PlanID == "" {
		profile.PlanID = domain.PlanTrial
	}
	return &profile, nil
}
