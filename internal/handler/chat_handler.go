package handler

import (
	"net/http"

	"language-coach-server/internal/domain"
)

// ChatHandler serves the streamed scenario-chat endpoint.
//
// It does its own authentication instead of sitting behind AuthMiddleware
// because a demo-flagged request legitimately carries no token; the demo
// path is throttled by its own limiter and never reaches the entitlement
// gate or any user data.
type ChatHandler struct {
	authService  domain.AuthService
	entitlements domain.EntitlementService
	chatService  domain.ChatService
	demoLimiter  domain.DemoLimiter
	logger       domain.Logger
}

func NewChatHandler(
	authService domain.AuthService,
	entitlements domain.EntitlementService,
	chatService domain.ChatService,
	demoLimiter domain.DemoLimiter,
	logger domain.Logger,
) *ChatHandler {
	return &ChatHandler{
		authService:  authService,
		entitlements: entitlements,
		chatService:  chatService,
		demoLimiter:  demoLimiter,
		logger:       logger,
	}
}

// Chat handles POST /chat: validate, authenticate, authorize, then relay the
// vendor token stream. The gate call always precedes the vendor call; a
// denied request never opens a vendor stream.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if details := decodeAndValidate(r, &req); details != nil {
		writeValidationError(w, details)
		return
	}

	userID := ""
	token := ""
	if req.IsDemoMode {
		if err := h.demoLimiter.Allow(req.DemoSessionID); err != nil {
			writeError(w, http.StatusTooManyRequests, "Demo limit reached, sign up to continue")
			return
		}
	} else {
		var errMsg string
		token, errMsg = bearerToken(r)
		if errMsg != "" {
			writeError(w, http.StatusUnauthorized, errMsg)
			return
		}
		user, err := h.authService.ValidateToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		userID = user.ID

		if _, err := h.entitlements.Authorize(r.Context(), userID, false, token); err != nil {
			writeAppError(w, err)
			return
		}
	}

	stream, err := h.chatService.Stream(r.Context(), userID, &req, token)
	if err != nil {
		h.logger.Error("Failed to start chat stream", err, "scenario_id", req.ScenarioID)
		writeAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, canFlush := w.(http.Flusher)
	wroteAny := false
	for chunk := range stream {
		if chunk.Err != nil {
			if !wroteAny {
				writeAppError(w, chunk.Err)
				return
			}
			// Headers are out; all we can do is truncate the stream.
			h.logger.Error("Chat stream failed mid-response", chunk.Err, "scenario_id", req.ScenarioID)
			return
		}
		if _, err := w.Write([]byte(chunk.Text)); err != nil {
			// Client disconnected; the deduction already made stands.
			return
		}
		wroteAny = true
		if canFlush {
			flusher.Flush()
		}
	}

	if !wroteAny {
		h.logger.Warn("Chat stream produced no content", "scenario_id", req.ScenarioID)
	}
}
