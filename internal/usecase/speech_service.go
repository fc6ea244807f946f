package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kotoba/backend/internal/domain"
)

// Speaking rate bounds, matching the voice settings slider
const (
	MinSpeechRate     = 0.5
	MaxSpeechRate     = 2.0
	DefaultSpeechRate = 1.0
)

// SpeechVoices are the synthesis voices offered to clients
var SpeechVoices = []string{"alloy", "ash", "coral", "echo", "fable", "nova", "onyx", "sage", "shimmer"}

// SpeechService synthesizes and transcribes Japanese speech
type SpeechService struct {
	speech       domain.SpeechClient
	defaultVoice string
}

// NewSpeechService creates a speech service. speech may be nil,
// in which case every call reports ErrServiceUnavailable.
func NewSpeechService(speech domain.SpeechClient, defaultVoice string) *SpeechService {
	if !isKnownVoice(defaultVoice) {
		defaultVoice = SpeechVoices[0]
	}
	return &SpeechService{speech: speech, defaultVoice: defaultVoice}
}

// Voices lists the available voices and the default one
func (s *SpeechService) Voices() (voices []string, defaultVoice string) {
	out := make([]string, len(SpeechVoices))
	copy(out, SpeechVoices)
	return out, s.defaultVoice
}

// Synthesize renders text as audio
func (s *SpeechService) Synthesize(ctx context.Context, req *domain.SpeechRequest) (*domain.Audio, error) {
	if req == nil || strings.TrimSpace(req.Text) == "" {
		return nil, domain.ErrInvalidRequest
	}
	if s.speech == nil {
		return nil, domain.ErrServiceUnavailable
	}

	voice := strings.ToLower(strings.TrimSpace(req.Voice))
	if !isKnownVoice(voice) {
		voice = s.defaultVoice
	}

	audio, err := s.speech.Synthesize(ctx, req.Text, voice, clampRate(req.Rate))
	if err != nil {
		return nil, upstreamError(err)
	}
	return audio, nil
}

// Transcribe converts recorded Japanese speech to text
func (s *SpeechService) Transcribe(ctx context.Context, audio *domain.Audio) (string, error) {
	if audio == nil || len(audio.Data) == 0 {
		return "", domain.ErrInvalidRequest
	}
	if s.speech == nil {
		return "", domain.ErrServiceUnavailable
	}

	text, err := s.speech.Transcribe(ctx, audio, "ja")
	if err != nil {
		return "", upstreamError(err)
	}
	return text, nil
}

// clampRate maps an unset rate to the default and bounds the rest
func clampRate(rate float64) float64 {
	switch {
	case rate == 0:
		return DefaultSpeechRate
	case rate < MinSpeechRate:
		return MinSpeechRate
	case rate > MaxSpeechRate:
		return MaxSpeechRate
	default:
		return rate
	}
}

func isKnownVoice(voice string) bool {
	for _, v := range SpeechVoices {
		if v == voice {
			return true
		}
	}
	return false
}

// upstreamError marks a gateway failure as ErrUpstreamFailure. An unavailable
// gateway (open circuit) keeps ErrServiceUnavailable so callers can tell the two apart.
func upstreamError(err error) error {
	if errors.Is(err, domain.ErrServiceUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
}
