package handler

import (
	"net/http"

	"language-coach-server/internal/domain"
)

// CreditHandler serves the balance read model used by the client mirror.
type CreditHandler struct {
	entitlements domain.EntitlementService
	logger       domain.Logger
}

func NewCreditHandler(entitlements domain.EntitlementService, logger domain.Logger) *CreditHandler {
	return &CreditHandler{
		entitlements: entitlements,
		logger:       logger,
	}
}

// GetBalance handles GET /credits. For metered users the first read lazily
// creates the ledger with trial defaults.
func (h *CreditHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}
	token, ok := GetTokenFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Token not found in context")
		return
	}

	balance, err := h.entitlements.Balance(r.Context(), user.ID, token)
	if err != nil {
		h.logger.Error("Failed to load credit balance", err, "user_id", user.ID)
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balance)
}
