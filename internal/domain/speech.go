package domain

import "context"

// TranscriptionRequest is the body of POST /speech-to-text.
// Audio is base64-encoded; size limits are enforced before decoding.
type TranscriptionRequest struct {
	Audio         string `json:"audio" validate:"required"`
	MimeType      string `json:"mimeType,omitempty" validate:"omitempty,max=64"`
	Language      string `json:"language,omitempty" validate:"omitempty,max=16"`
	IsDemoMode    bool   `json:"isDemoMode,omitempty"`
	DemoSessionID string `json:"demoSessionId,omitempty" validate:"omitempty,max=64"`
}

// SynthesisRequest is the body of POST /text-to-speech.
type SynthesisRequest struct {
	Text     string `json:"text" validate:"required,max=2000"`
	Language string `json:"language,omitempty" validate:"omitempty,max=16"`
}

// SpeechToTextProvider transcribes a recorded audio blob.
type SpeechToTextProvider interface {
	Transcribe(ctx context.Context, audio []byte, mimeType, language string) (string, error)
}

// TextToSpeechProvider renders text into an audio blob.
type TextToSpeechProvider interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

// SpeechService wraps the speech vendor calls behind input handling
// (base64 decode, size limits, defaults).
type SpeechService interface {
	Transcribe(ctx context.Context, req *TranscriptionRequest) (string, error)
	Synthesize(ctx context.Context, req *SynthesisRequest) ([]byte, error)
}

// DemoLimiter throttles unauthenticated demo requests. It is process-local
// and intentionally non-persistent; it shares no code with the entitlement
// gate so the authenticated path cannot be weakened by demo changes.
type DemoLimiter interface {
	Allow(sessionID string) error
}
