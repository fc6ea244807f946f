package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kotoba/backend/internal/domain"
	"github.com/kotoba/backend/internal/infrastructure/metrics"
)

// PronunciationServiceConfig holds configuration for pronunciation practice
type PronunciationServiceConfig struct {
	Threshold   float64
	PhraseLimit int
}

// PronunciationService serves practice phrases and scores spoken attempts
type PronunciationService struct {
	questions   domain.QuestionRepository
	speech      domain.SpeechClient
	scorer      *PronunciationScorer
	metrics     *metrics.Metrics
	phraseLimit int
}

// NewPronunciationService creates a pronunciation service. speech may be nil,
// in which case audio evaluation reports ErrServiceUnavailable.
func NewPronunciationService(
	questions domain.QuestionRepository,
	speech domain.SpeechClient,
	m *metrics.Metrics,
	config PronunciationServiceConfig,
) *PronunciationService {
	limit := config.PhraseLimit
	if limit <= 0 {
		limit = 10
	}

	return &PronunciationService{
		questions:   questions,
		speech:      speech,
		scorer:      NewPronunciationScorer(ScorerConfig{Threshold: config.Threshold}),
		metrics:     m,
		phraseLimit: limit,
	}
}

// Phrases returns the target phrases for a practice round
func (s *PronunciationService) Phrases(ctx context.Context) ([]string, error) {
	phrases, err := s.questions.ListPhrases(ctx, s.phraseLimit)
	if err != nil {
		return nil, fmt.Errorf("list phrases: %w", err)
	}
	if phrases == nil {
		phrases = []string{}
	}
	return phrases, nil
}

// Evaluate scores a transcript against the target phrase
func (s *PronunciationService) Evaluate(ctx context.Context, phrase, transcript string) (*domain.PronunciationResult, error) {
	if strings.TrimSpace(phrase) == "" {
		return nil, domain.ErrInvalidRequest
	}

	similarity := Similarity(transcript, phrase)
	result := &domain.PronunciationResult{
		Phrase:         phrase,
		Transcript:     transcript,
		Similarity:     similarity,
		EditSimilarity: EditSimilarity(transcript, phrase),
		Correct:        s.scorer.IsCorrect(similarity),
	}

	s.metrics.RecordPronunciation(ctx, similarity, result.Correct)
	log.Debug().
		Str("component", "pronunciation").
		Str("phrase", phrase).
		Str("transcript", transcript).
		Float64("similarity", similarity).
		Bool("correct", result.Correct).
		Msg("scored attempt")

	return result, nil
}

// EvaluateAudio transcribes a recorded attempt and scores it
func (s *PronunciationService) EvaluateAudio(ctx context.Context, phrase string, audio *domain.Audio) (*domain.PronunciationResult, error) {
	if strings.TrimSpace(phrase) == "" || audio == nil || len(audio.Data) == 0 {
		return nil, domain.ErrInvalidRequest
	}
	if s.speech == nil {
		return nil, domain.ErrServiceUnavailable
	}

	transcript, err := s.speech.Transcribe(ctx, audio, "ja")
	if err != nil {
		return nil, upstreamError(err)
	}

	return s.Evaluate(ctx, phrase, transcript)
}
