package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kotoba/backend/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu          sync.Mutex
	data        map[string]interface{}
	getError    error
	setError    error
	getCalls    int
	setCalls    int
	deletedKeys []string
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string]interface{}),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedKeys = append(m.deletedKeys, key)
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

// MockQuestionRepository keeps questions in insertion order
type MockQuestionRepository struct {
	questions []domain.Question
	listError error
	created   []domain.Question
}

func NewMockQuestionRepository(questions ...domain.Question) *MockQuestionRepository {
	return &MockQuestionRepository{questions: questions}
}

func (m *MockQuestionRepository) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	out := make([]domain.Question, len(m.questions))
	copy(out, m.questions)
	return out, nil
}

func (m *MockQuestionRepository) ListByCategory(ctx context.Context, category domain.Category) ([]domain.Question, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	var out []domain.Question
	for _, q := range m.questions {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *MockQuestionRepository) ListPhrases(ctx context.Context, limit int) ([]string, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	var out []string
	for _, q := range m.questions {
		if len(out) == limit {
			break
		}
		out = append(out, q.Question)
	}
	return out, nil
}

func (m *MockQuestionRepository) GetQuestion(ctx context.Context, id string) (*domain.Question, error) {
	for _, q := range m.questions {
		if q.ID == id {
			q := q
			return &q, nil
		}
	}
	return nil, domain.ErrQuestionNotFound
}

func (m *MockQuestionRepository) GetQuestions(ctx context.Context, ids []string) (map[string]domain.Question, error) {
	out := make(map[string]domain.Question)
	for _, id := range ids {
		for _, q := range m.questions {
			if q.ID == id {
				out[id] = q
			}
		}
	}
	return out, nil
}

func (m *MockQuestionRepository) CreateQuestion(ctx context.Context, q *domain.Question) error {
	m.created = append(m.created, *q)
	m.questions = append(m.questions, *q)
	return nil
}

func (m *MockQuestionRepository) DeleteQuestion(ctx context.Context, id string) error {
	for i, q := range m.questions {
		if q.ID == id {
			m.questions = append(m.questions[:i], m.questions[i+1:]...)
			return nil
		}
	}
	return domain.ErrQuestionNotFound
}

// MockResultRepository orders top results like the SQL implementation
type MockResultRepository struct {
	mu          sync.Mutex
	results     []domain.QuizResult
	createError error
	topError    error
	topCalls    int
	// beforeTop runs at the start of TopResults, outside the lock
	beforeTop func()
}

func NewMockResultRepository(results ...domain.QuizResult) *MockResultRepository {
	return &MockResultRepository{results: results}
}

func (m *MockResultRepository) CreateResult(ctx context.Context, r *domain.QuizResult) error {
	if m.createError != nil {
		return m.createError
	}
	m.results = append(m.results, *r)
	return nil
}

func (m *MockResultRepository) GetResultByShareID(ctx context.Context, shareID string) (*domain.QuizResult, error) {
	for _, r := range m.results {
		if r.ShareID == shareID {
			r := r
			return &r, nil
		}
	}
	return nil, domain.ErrResultNotFound
}

func (m *MockResultRepository) ListResults(ctx context.Context) ([]domain.QuizResult, error) {
	out := make([]domain.QuizResult, len(m.results))
	copy(out, m.results)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out, nil
}

func (m *MockResultRepository) TopResults(ctx context.Context, category domain.Category, limit int) ([]domain.QuizResult, error) {
	if m.beforeTop != nil {
		m.beforeTop()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topCalls++
	if m.topError != nil {
		return nil, m.topError
	}
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

// MockChatClient records the messages it was sent
type MockChatClient struct {
	reply    string
	err      error
	received []domain.ChatMessage
}

func (m *MockChatClient) Chat(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	m.received = messages
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

// MockSpeechClient returns canned audio and transcripts
type MockSpeechClient struct {
	transcript   string
	err          error
	lastVoice    string
	lastSpeed    float64
	lastLanguage string
}

func (m *MockSpeechClient) Synthesize(ctx context.Context, text, voice string, speed float64) (*domain.Audio, error) {
	m.lastVoice = voice
	m.lastSpeed = speed
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Audio{Data: []byte("mp3:" + text), ContentType: "audio/mpeg"}, nil
}

func (m *MockSpeechClient) Transcribe(ctx context.Context, audio *domain.Audio, language string) (string, error) {
	m.lastLanguage = language
	if m.err != nil {
		return "", m.err
	}
	return m.transcript, nil
}

// MockTokenManager issues predictable tokens
type MockTokenManager struct {
	issued []string
}

func (m *MockTokenManager) Issue(subject string) (string, time.Time, error) {
	m.issued = append(m.issued, subject)
	return "token-for-" + subject, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

func (m *MockTokenManager) Validate(token string) (string, error) {
	return "", domain.ErrUnauthorized
}

func sampleQuestion(id string, category domain.Category, answer string) domain.Question {
	return domain.Question{
		ID:            id,
		Category:      category,
		Question:      "question " + id,
		OptionA:       "a",
		OptionB:       "b",
		OptionC:       "c",
		OptionD:       "d",
		CorrectAnswer: answer,
	}
}
