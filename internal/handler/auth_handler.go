package handler

import (
	"errors"
	"net/http"

	"language-coach-server/internal/domain"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	profileRepo domain.ProfileRepository
	logger      domain.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(profileRepo domain.ProfileRepository, logger domain.Logger) *AuthHandler {
	return &AuthHandler{
		profileRepo: profileRepo,
		logger:      logger,
	}
}

// GetProfile returns the current user's profile row, plan included.
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
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

	profile, err := h.profileRepo.GetByUserID(user.ID, token)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		h.logger.Error("Failed to load profile", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// ValidateToken confirms the bearer token is good and echoes the user.
func (h *AuthHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
