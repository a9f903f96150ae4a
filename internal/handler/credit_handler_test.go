package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"language-coach-server/internal/domain"
	apperrors "language-coach-server/pkg/errors"
)

func authedRequest(method, target string) *http.Request {
	return withAuthContext(httptest.NewRequest(method, target, nil))
}

func TestGetBalance_MeteredUser(t *testing.T) {
	gate := &mockEntitlementService{balance: &domain.CreditBalance{
		RemainingCredits:      69,
		TotalCredits:          70,
		RemainingAudioCredits: 14,
		TotalAudioCredits:     14,
	}}
	h := NewCreditHandler(gate, NewMockHandlerLogger())

	rr := httptest.NewRecorder()
	h.GetBalance(rr, authedRequest(http.MethodGet, "/api/v1/credits"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var balance domain.CreditBalance
	if err := json.Unmarshal(rr.Body.Bytes(), &balance); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if balance.RemainingCredits != 69 || balance.TotalCredits != 70 {
		t.Fatalf("unexpected balance: %+v", balance)
	}
	if balance.IsPaidPlan {
		t.Fatalf("expected metered balance")
	}
}

func TestGetBalance_PaidUser(t *testing.T) {
	gate := &mockEntitlementService{balance: &domain.CreditBalance{IsPaidPlan: true}}
	h := NewCreditHandler(gate, NewMockHandlerLogger())

	rr := httptest.NewRecorder()
	h.GetBalance(rr, authedRequest(http.MethodGet, "/api/v1/credits"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var balance domain.CreditBalance
	if err := json.Unmarshal(rr.Body.Bytes(), &balance); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !balance.IsPaidPlan {
		t.Fatalf("expected paid-plan balance")
	}
}

func TestGetBalance_MissingContext(t *testing.T) {
	h := NewCreditHandler(&mockEntitlementService{}, NewMockHandlerLogger())

	rr := httptest.NewRecorder()
	h.GetBalance(rr, httptest.NewRequest(http.MethodGet, "/api/v1/credits", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestGetBalance_ProfileNotFound(t *testing.T) {
	gate := &mockEntitlementService{err: apperrors.NewNotFoundError("Profile not found")}
	h := NewCreditHandler(gate, NewMockHandlerLogger())

	rr := httptest.NewRecorder()
	h.GetBalance(rr, authedRequest(http.MethodGet, "/api/v1/credits"))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}
