package http

import (
	"context"
	"sort"
	"sync"

	"github.com/kotoba/backend/internal/domain"
)

type memoryQuestions struct {
	mu        sync.Mutex
	questions []domain.Question
}

func (m *memoryQuestions) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Question(nil), m.questions...), nil
}

func (m *memoryQuestions) ListByCategory(ctx context.Context, category domain.Category) ([]domain.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Question
	for _, q := range m.questions {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memoryQuestions) ListPhrases(ctx context.Context, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, q := range m.questions {
		if len(out) == limit {
			break
		}
		out = append(out, q.Question)
	}
	return out, nil
}

func (m *memoryQuestions) GetQuestion(ctx context.Context, id string) (*domain.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.questions {
		if q.ID == id {
			q := q
			return &q, nil
		}
	}
	return nil, domain.ErrQuestionNotFound
}

func (m *memoryQuestions) GetQuestions(ctx context.Context, ids []string) (map[string]domain.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]domain.Question{}
	for _, q := range m.questions {
		for _, id := range ids {
			if q.ID == id {
				out[id] = q
			}
		}
	}
	return out, nil
}

func (m *memoryQuestions) CreateQuestion(ctx context.Context, q *domain.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions = append(m.questions, *q)
	return nil
}

func (m *memoryQuestions) DeleteQuestion(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, q := range m.questions {
		if q.ID == id {
			m.questions = append(m.questions[:i], m.questions[i+1:]...)
			return nil
		}
	}
	return domain.ErrQuestionNotFound
}

type memoryResults struct {
	mu      sync.Mutex
	results []domain.QuizResult
}

func (m *memoryResults) CreateResult(ctx context.Context, r *domain.QuizResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, *r)
	return nil
}

func (m *memoryResults) GetResultByShareID(ctx context.Context, shareID string) (*domain.QuizResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.results {
		if r.ShareID == shareID {
			r := r
			return &r, nil
		}
	}
	return nil, domain.ErrResultNotFound
}

func (m *memoryResults) ListResults(ctx context.Context) ([]domain.QuizResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.QuizResult(nil), m.results...), nil
}

func (m *memoryResults) TopResults(ctx context.Context, category domain.Category, limit int) ([]domain.QuizResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.QuizResult
	for _, r := range m.results {
		if r.Category == category {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CompletedAt.Before(out[j].CompletedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type stubChat struct {
	reply string
	err   error
}

func (s *stubChat) Chat(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	return s.reply, s.err
}

type stubSpeech struct {
	transcript string
	err        error
}

func (s *stubSpeech) Synthesize(ctx context.Context, text, voice string, speed float64) (*domain.Audio, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Audio{Data: []byte("mp3:" + voice), ContentType: "audio/mpeg"}, nil
}

func (s *stubSpeech) Transcribe(ctx context.Context, audio *domain.Audio, language string) (string, error) {
	return s.transcript, s.err
}
