package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// QuestionRepository persists quiz questions
type QuestionRepository interface {
	ListQuestions(ctx context.Context) ([]Question, error)
	ListByCategory(ctx context.Context, category Category) ([]Question, error)
	ListPhrases(ctx context.Context, limit int) ([]string, error)
	GetQuestion(ctx context.Context, id string) (*Question, error)
	GetQuestions(ctx context.Context, ids []string) (map[string]Question, error)
	CreateQuestion(ctx context.Context, q *Question) error
	DeleteQuestion(ctx context.Context, id string) error
}

// ResultRepository persists completed quiz results
type ResultRepository interface {
	CreateResult(ctx context.Context, r *QuizResult) error
	GetResultByShareID(ctx context.Context, shareID string) (*QuizResult, error)
	ListResults(ctx context.Context) ([]QuizResult, error)
	TopResults(ctx context.Context, category Category, limit int) ([]QuizResult, error)
}

// ChatClient produces one assistant reply for a conversation
type ChatClient interface {
	Chat(ctx context.Context, messages []ChatMessage) (string, error)
}

// SpeechClient converts between text and audio
type SpeechClient interface {
	Synthesize(ctx context.Context, text, voice string, speed float64) (*Audio, error)
	Transcribe(ctx context.Context, audio *Audio, language string) (string, error)
}

// TokenManager issues and verifies admin session tokens
type TokenManager interface {
	Issue(subject string) (token string, expiresAt time.Time, err error)
	Validate(token string) (subject string, err error)
}
