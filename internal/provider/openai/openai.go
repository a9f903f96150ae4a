// Package openai implements the chat, speech-to-text, and text-to-speech
// provider interfaces against the OpenAI API.
package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"language-coach-server/internal/domain"
	apperrors "language-coach-server/pkg/errors"
)

// Provider implements domain.ChatProvider, domain.SpeechToTextProvider and
// domain.TextToSpeechProvider using a single OpenAI client.
type Provider struct {
	client    oai.Client
	chatModel string
	sttModel  string
	ttsModel  string
}

// config holds optional configuration for the provider.
type config struct {
	baseURL string
	timeout time.Duration
}

// Option is a functional option for Provider.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New constructs a new OpenAI Provider.
func New(apiKey, chatModel, sttModel, ttsModel string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}
	if chatModel == "" || sttModel == "" || ttsModel == "" {
		return nil, fmt.Errorf("openai: chat, stt and tts models must not be empty")
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	return &Provider{
		client:    oai.NewClient(reqOpts...),
		chatModel: chatModel,
		sttModel:  sttModel,
		ttsModel:  ttsModel,
	}, nil
}

// StreamChat implements domain.ChatProvider. Chunks are forwarded as they
// arrive from the vendor stream, strictly in order, without buffering the
// full response.
func (p *Provider) StreamChat(ctx context.Context, prompt domain.ChatPrompt) (<-chan domain.ChatChunk, error) {
	messages := make([]oai.ChatCompletionMessageParamUnion, 0, len(prompt.Messages)+1)
	if prompt.SystemPrompt != "" {
		messages = append(messages, oai.SystemMessage(prompt.SystemPrompt))
	}
	for _, m := range prompt.Messages {
		switch m.Role {
		case "system":
			messages = append(messages, oai.SystemMessage(m.Content))
		case "assistant":
			messages = append(messages, oai.AssistantMessage(m.Content))
		default:
			messages = append(messages, oai.UserMessage(m.Content))
		}
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, oai.ChatCompletionNewParams{
		Model:    oai.ChatModel(p.chatModel),
		Messages: messages,
	})
	if err := stream.Err(); err != nil {
		return nil, translateError(err)
	}

	ch := make(chan domain.ChatChunk, 32)
	go func() {
		defer close(ch)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			text := chunk.Choices[0].Delta.Content
			if text == "" {
				continue
			}
			select {
			case ch <- domain.ChatChunk{Text: text}:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
			select {
			case ch <- domain.ChatChunk{Err: translateError(err)}:
			case <-ctx.Done():
			}
		}
	}()
	return ch, nil
}

// Transcribe implements domain.SpeechToTextProvider.
func (p *Provider) Transcribe(ctx context.Context, audio []byte, mimeType, language string) (string, error) {
	filename := filenameForMime(mimeType)

	params := oai.AudioTranscriptionNewParams{
		Model: oai.AudioModel(p.sttModel),
		File:  oai.File(bytes.NewReader(audio), filename, mimeType),
	}
	if language != "" {
		params.Language = oai.String(language)
	}

	transcription, err := p.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", translateError(err)
	}
	return transcription.Text, nil
}

// Synthesize implements domain.TextToSpeechProvider. The vendor response is
// buffered fully; synthesized clips are short.
func (p *Provider) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	res, err := p.client.Audio.Speech.New(ctx, oai.AudioSpeechNewParams{
		Model: oai.SpeechModel(p.ttsModel),
		Voice: oai.AudioSpeechNewParamsVoiceAlloy,
		Input: text,
	})
	if err != nil {
		return nil, translateError(err)
	}
	defer res.Body.Close()

	audio, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, apperrors.NewVendorError("failed to read synthesized audio", err)
	}
	return audio, nil
}

func filenameForMime(mimeType string) string {
	switch mimeType {
	case "audio/wav", "audio/x-wav":
		return "audio.wav"
	case "audio/mpeg", "audio/mp3":
		return "audio.mp3"
	case "audio/ogg":
		return "audio.ogg"
	case "audio/mp4", "audio/m4a":
		return "audio.m4a"
	default:
		return "audio.webm"
	}
}

// translateError maps vendor failures onto the stable error taxonomy instead
// of leaking vendor-specific status text: rate limits become 429, quota
// exhaustion becomes 402, anything else a generic vendor failure.
func translateError(err error) error {
	var apiErr *oai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests && apiErr.Code == "insufficient_quota":
			return apperrors.NewPaymentRequiredError("AI service quota exhausted")
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return apperrors.NewRateLimitedError("AI service rate limit exceeded")
		}
	}
	return apperrors.NewVendorError("AI service request failed", err)
}
