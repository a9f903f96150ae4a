package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"language-coach-server/internal/domain"

	"github.com/supabase-community/supabase-go"
)

// SupabaseScenarioRepository implements the domain.ScenarioRepository interface
type SupabaseScenarioRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabaseScenarioRepository creates a new Supabase scenario repository
func NewSupabaseScenarioRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.ScenarioRepository {
	return &SupabaseScenarioRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// client returns a caller-scoped client, or the anon-key client when no
// token is present. Scenarios are readable anonymously so the demo path can
// resolve persona prompts without authentication.
func (r *SupabaseScenarioRepository) client(token string) (*supabase.Client, error) {
	if token == "" {
		if c := r.supabaseClient.DB(); c != nil {
			return c, nil
		}
		return nil, fmt.Errorf("supabase client not initialized")
	}
	return r.supabaseClient.GetClientWithToken(token)
}

// List retrieves the scenario catalogue.
func (r *SupabaseScenarioRepository) List(ctx context.Context, token string) ([]*domain.Scenario, error) {
	client, err := r.client(token)
	if err != nil {
		return nil, err
	}

	data, _, err := client.From("scenarios").
		Select("*", "", false).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}

	var scenarios []*domain.Scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return scenarios, nil
}

// GetByID retrieves a single scenario. A missing row is domain.ErrScenarioNotFound.
func (r *SupabaseScenarioRepository) GetByID(ctx context.Context, id string, token string) (*domain.Scenario, error) {
	client, err := r.client(token)
	if err != nil {
		return nil, err
	}

	data, _, err := client.From("scenarios").
		Select("*", "", false).
		Eq("id", id).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario: %w", err)
	}

	var scenarios []*domain.Scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(scenarios) == 0 {
		return nil, domain.ErrScenarioNotFound
	}
	return scenarios[0], nil
}
