package handler

import (
	"net/http"

	"language-coach-server/internal/domain"
)

// SpeechHandler serves the speech-to-text and text-to-speech endpoints.
// Both are audio operations: the entitlement gate is called with the audio
// flag set, so a successful request debits a message credit and an audio
// credit together.
type SpeechHandler struct {
	authService   domain.AuthService
	entitlements  domain.EntitlementService
	speechService domain.SpeechService
	demoLimiter   domain.DemoLimiter
	logger        domain.Logger
}

func NewSpeechHandler(
	authService domain.AuthService,
	entitlements domain.EntitlementService,
	speechService domain.SpeechService,
	demoLimiter domain.DemoLimiter,
	logger domain.Logger,
) *SpeechHandler {
	return &SpeechHandler{
		authService:   authService,
		entitlements:  entitlements,
		speechService: speechService,
		demoLimiter:   demoLimiter,
		logger:        logger,
	}
}

// SpeechToText handles POST /speech-to-text. Like chat, it authenticates
// inline so the demo path can run tokenless behind its own limiter.
func (h *SpeechHandler) SpeechToText(w http.ResponseWriter, r *http.Request) {
	var req domain.TranscriptionRequest
	if details := decodeAndValidate(r, &req); details != nil {
		writeValidationError(w, details)
		return
	}

	if req.IsDemoMode {
		if err := h.demoLimiter.Allow(req.DemoSessionID); err != nil {
			writeError(w, http.StatusTooManyRequests, "Demo limit reached, sign up to continue")
			return
		}
	} else {
		token, errMsg := bearerToken(r)
		if errMsg != "" {
			writeError(w, http.StatusUnauthorized, errMsg)
			return
		}
		user, err := h.authService.ValidateToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		if _, err := h.entitlements.Authorize(r.Context(), user.ID, true, token); err != nil {
			writeAppError(w, err)
			return
		}
	}

	text, err := h.speechService.Transcribe(r.Context(), &req)
	if err != nil {
		h.logger.Error("Transcription failed", err)
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// TextToSpeech handles POST /text-to-speech. No demo variant: synthesis is
// always authenticated, so the route sits behind AuthMiddleware and identity
// comes from the request context.
func (h *SpeechHandler) TextToSpeech(w http.ResponseWriter, r *http.Request) {
	var req domain.SynthesisRequest
	if details := decodeAndValidate(r, &req); details != nil {
		writeValidationError(w, details)
		return
	}

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

	if _, err := h.entitlements.Authorize(r.Context(), user.ID, true, token); err != nil {
		writeAppError(w, err)
		return
	}

	audio, err := h.speechService.Synthesize(r.Context(), &req)
	if err != nil {
		h.logger.Error("Synthesis failed", err)
		writeAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}
