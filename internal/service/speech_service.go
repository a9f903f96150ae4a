package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"language-coach-server/internal/domain"
	apperrors "language-coach-server/pkg/errors"
)

const defaultAudioMimeType = "audio/webm"

type speechService struct {
	sttProvider   domain.SpeechToTextProvider
	ttsProvider   domain.TextToSpeechProvider
	maxAudioBytes int64
	logger        domain.Logger
}

func NewSpeechService(
	sttProvider domain.SpeechToTextProvider,
	ttsProvider domain.TextToSpeechProvider,
	maxAudioBytes int64,
	logger domain.Logger,
) domain.SpeechService {
	return &speechService{
		sttProvider:   sttProvider,
		ttsProvider:   ttsProvider,
		maxAudioBytes: maxAudioBytes,
		logger:        logger,
	}
}

// Transcribe decodes the base64 recording, enforces the size limit and calls
// the speech vendor.
func (s *speechService) Transcribe(ctx context.Context, req *domain.TranscriptionRequest) (string, error) {
	audio, err := decodeBase64Audio(req.Audio)
	if err != nil {
		return "", apperrors.NewValidationError("Validation error", "audio must be valid base64")
	}
	if len(audio) == 0 {
		return "", apperrors.NewValidationError("Validation error", "audio must not be empty")
	}
	if s.maxAudioBytes > 0 && int64(len(audio)) > s.maxAudioBytes {
		return "", apperrors.NewValidationError("Validation error",
			fmt.Sprintf("audio exceeds the %d byte limit", s.maxAudioBytes))
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = defaultAudioMimeType
	}

	text, err := s.sttProvider.Transcribe(ctx, audio, mimeType, req.Language)
	if err != nil {
		return "", err
	}
	return text, nil
}

// Synthesize renders text into an audio blob via the speech vendor.
func (s *speechService) Synthesize(ctx context.Context, req *domain.SynthesisRequest) ([]byte, error) {
	return s.ttsProvider.Synthesize(ctx, req.Text, req.Language)
}

// decodeBase64Audio accepts both padded and unpadded standard base64, which
// browsers produce depending on how the recording was sliced.
func decodeBase64Audio(encoded string) ([]byte, error) {
	if audio, err := base64.StdEncoding.DecodeString(encoded); err == nil {
		return audio, nil
	}
	return base64.RawStdEncoding.DecodeString(encoded)
}
