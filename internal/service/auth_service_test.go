package service

import (
	"errors"
	"testing"

	"github.com/supabase-community/supabase-go"

	"language-coach-server/internal/domain"
)

// MockSupabaseClient for testing
type MockSupabaseClient struct{}

func (m *MockSupabaseClient) Initialize() error {
	return nil
}

func (m *MockSupabaseClient) ValidateToken(token string) (*domain.SupabaseUser, error) {
	if token == "valid-token" {
		return &domain.SupabaseUser{
			ID:    "user-123",
			Email: "learner@example.com",
		}, nil
	}
	return nil, errors.New("invalid token")
}

func (m *MockSupabaseClient) DB() *supabase.Client {
	return nil
}

func (m *MockSupabaseClient) GetClientWithToken(token string) (*supabase.Client, error) {
	return nil, nil
}

func TestAuthService_ValidateToken(t *testing.T) {
	service := NewAuthService(&MockSupabaseClient{}, NewMockLogger())

	user, err := service.ValidateToken("valid-token")
	if err != nil {
		t.Errorf("Expected no error for valid token, got %v", err)
	}
	if user.ID != "user-123" {
		t.Errorf("Expected user ID 'user-123', got '%s'", user.ID)
	}
	if user.Email != "learner@example.com" {
		t.Errorf("Expected user email 'learner@example.com', got '%s'", user.Email)
	}

	_, err = service.ValidateToken("bad-token")
	if err == nil {
		t.Error("Expected error for invalid token")
	}
	expectedError := "invalid token: invalid token"
	if err.Error() != expectedError {
		t.Errorf("Expected error message '%s', got '%s'", expectedError, err.Error())
	}

	_, err = service.ValidateToken("")
	if err == nil {
		t.Error("Expected error for empty token")
	}
}
