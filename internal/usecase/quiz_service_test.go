package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotoba/backend/internal/domain"
)

func newTestQuizService(questions *MockQuestionRepository, results *MockResultRepository, cache *MockCacheRepository) *QuizService {
	leaderboard := NewLeaderboardService(results, cache, LeaderboardServiceConfig{})
	svc := NewQuizService(questions, results, leaderboard, nil, QuizServiceConfig{})
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestNewQuizService_Defaults(t *testing.T) {
	svc := NewQuizService(NewMockQuestionRepository(), NewMockResultRepository(), nil, nil, QuizServiceConfig{})
	if svc.questionsPerQuiz != 10 {
		t.Errorf("questionsPerQuiz = %d, want 10", svc.questionsPerQuiz)
	}
}

func TestStartQuiz(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects unknown category", func(t *testing.T) {
		svc := newTestQuizService(NewMockQuestionRepository(), NewMockResultRepository(), NewMockCacheRepository())
		_, err := svc.StartQuiz(ctx, "kanji")
		if !errors.Is(err, domain.ErrInvalidCategory) {
			t.Errorf("error = %v, want ErrInvalidCategory", err)
		}
	})

	t.Run("empty category is an empty quiz", func(t *testing.T) {
		svc := newTestQuizService(NewMockQuestionRepository(), NewMockResultRepository(), NewMockCacheRepository())
		quiz, err := svc.StartQuiz(ctx, "katakana")
		require.NoError(t, err)
		assert.NotNil(t, quiz)
		assert.Empty(t, quiz)
	})

	t.Run("caps at ten questions and hides answers", func(t *testing.T) {
		repo := NewMockQuestionRepository()
		for i := 0; i < 15; i++ {
			repo.questions = append(repo.questions, sampleQuestion(fmt.Sprintf("h%d", i), domain.CategoryHiragana, "A"))
		}
		repo.questions = append(repo.questions, sampleQuestion("k1", domain.CategoryKatakana, "B"))

		svc := newTestQuizService(repo, NewMockResultRepository(), NewMockCacheRepository())
		quiz, err := svc.StartQuiz(ctx, "Hiragana")
		require.NoError(t, err)
		assert.Len(t, quiz, 10)

		seen := map[string]bool{}
		for _, q := range quiz {
			assert.NotEqual(t, "k1", q.ID, "quiz must only contain the requested category")
			assert.False(t, seen[q.ID], "duplicate question %s", q.ID)
			seen[q.ID] = true
			assert.Len(t, q.Options, 4)
		}
	})

	t.Run("shuffles the question order", func(t *testing.T) {
		repo := NewMockQuestionRepository(
			sampleQuestion("1", domain.CategoryVocabulary, "A"),
			sampleQuestion("2", domain.CategoryVocabulary, "A"),
			sampleQuestion("3", domain.CategoryVocabulary, "A"),
		)
		svc := newTestQuizService(repo, NewMockResultRepository(), NewMockCacheRepository())
		shuffled := false
		svc.shuffle = func(n int, swap func(i, j int)) {
			shuffled = true
			swap(0, n-1)
		}

		quiz, err := svc.StartQuiz(ctx, "vocabulary")
		require.NoError(t, err)
		assert.True(t, shuffled)
		assert.Equal(t, "3", quiz[0].ID)
		assert.Equal(t, "1", quiz[2].ID)
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		repo := NewMockQuestionRepository()
		repo.listError = errors.New("db down")
		svc := newTestQuizService(repo, NewMockResultRepository(), NewMockCacheRepository())
		_, err := svc.StartQuiz(ctx, "hiragana")
		assert.Error(t, err)
	})
}

func TestCheckAnswer(t *testing.T) {
	ctx := context.Background()
	repo := NewMockQuestionRepository(sampleQuestion("q1", domain.CategoryHiragana, "C"))
	svc := newTestQuizService(repo, NewMockResultRepository(), NewMockCacheRepository())

	tests := []struct {
		name        string
		questionID  string
		answer      string
		wantCorrect bool
		wantErr     error
	}{
		{"correct answer", "q1", "C", true, nil},
		{"lower case accepted", "q1", "c", true, nil},
		{"wrong answer", "q1", "A", false, nil},
		{"invalid letter", "q1", "E", false, domain.ErrInvalidAnswer},
		{"unknown question", "nope", "A", false, domain.ErrQuestionNotFound},
		{"empty question id", "", "A", false, domain.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check, err := svc.CheckAnswer(ctx, tt.questionID, tt.answer)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCorrect, check.Correct)
			assert.Equal(t, "C", check.CorrectAnswer)
		})
	}
}

func TestSubmitQuiz(t *testing.T) {
	ctx := context.Background()

	newFixture := func() (*QuizService, *MockResultRepository, *MockCacheRepository) {
		questions := NewMockQuestionRepository(
			sampleQuestion("q1", domain.CategoryHiragana, "A"),
			sampleQuestion("q2", domain.CategoryHiragana, "B"),
			sampleQuestion("q3", domain.CategoryHiragana, "C"),
			sampleQuestion("k1", domain.CategoryKatakana, "D"),
		)
		results := NewMockResultRepository()
		cache := NewMockCacheRepository()
		return newTestQuizService(questions, results, cache), results, cache
	}

	t.Run("grades and stores the result", func(t *testing.T) {
		svc, results, cache := newFixture()
		result, err := svc.SubmitQuiz(ctx, &domain.QuizSubmission{
			UserName: "  Yuki  ",
			Category: "hiragana",
			Answers: []domain.AnswerSubmission{
				{QuestionID: "q1", Answer: "A"},
				{QuestionID: "q2", Answer: "b"},
				{QuestionID: "q3", Answer: "D"},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "Yuki", result.UserName)
		assert.Equal(t, 2, result.Score)
		assert.Equal(t, 3, result.TotalQuestions)
		assert.Equal(t, domain.CategoryHiragana, result.Category)
		assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{8}$`), result.ShareID)
		assert.NotEmpty(t, result.ID)
		assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), result.CompletedAt)

		require.Len(t, results.results, 1)
		assert.Contains(t, cache.deletedKeys, "leaderboard:hiragana")
	})

	tests := []struct {
		name       string
		submission *domain.QuizSubmission
		wantErr    error
	}{
		{"nil submission", nil, domain.ErrInvalidRequest},
		{"blank name", &domain.QuizSubmission{UserName: "  ", Category: "hiragana", Answers: []domain.AnswerSubmission{{QuestionID: "q1", Answer: "A"}}}, domain.ErrInvalidRequest},
		{"no answers", &domain.QuizSubmission{UserName: "Ken", Category: "hiragana"}, domain.ErrInvalidRequest},
		{"bad category", &domain.QuizSubmission{UserName: "Ken", Category: "kanji", Answers: []domain.AnswerSubmission{{QuestionID: "q1", Answer: "A"}}}, domain.ErrInvalidCategory},
		{"unknown question", &domain.QuizSubmission{UserName: "Ken", Category: "hiragana", Answers: []domain.AnswerSubmission{{QuestionID: "zz", Answer: "A"}}}, domain.ErrQuestionNotFound},
		{"question from another category", &domain.QuizSubmission{UserName: "Ken", Category: "hiragana", Answers: []domain.AnswerSubmission{{QuestionID: "k1", Answer: "D"}}}, domain.ErrInvalidRequest},
		{"duplicate answers", &domain.QuizSubmission{UserName: "Ken", Category: "hiragana", Answers: []domain.AnswerSubmission{{QuestionID: "q1", Answer: "A"}, {QuestionID: "q1", Answer: "A"}}}, domain.ErrInvalidRequest},
		{"invalid letter", &domain.QuizSubmission{UserName: "Ken", Category: "hiragana", Answers: []domain.AnswerSubmission{{QuestionID: "q1", Answer: "Z"}}}, domain.ErrInvalidAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, results, _ := newFixture()
			_, err := svc.SubmitQuiz(ctx, tt.submission)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if len(results.results) != 0 {
				t.Errorf("stored %d results, want none", len(results.results))
			}
		})
	}

	t.Run("repository failure is returned", func(t *testing.T) {
		svc, results, _ := newFixture()
		results.createError = errors.New("insert failed")
		_, err := svc.SubmitQuiz(ctx, &domain.QuizSubmission{
			UserName: "Ken",
			Category: "hiragana",
			Answers:  []domain.AnswerSubmission{{QuestionID: "q1", Answer: "A"}},
		})
		assert.Error(t, err)
	})
}

func TestGetResult(t *testing.T) {
	ctx := context.Background()
	results := NewMockResultRepository(domain.QuizResult{ShareID: "abc12345", Score: 7, TotalQuestions: 10})
	svc := newTestQuizService(NewMockQuestionRepository(), results, NewMockCacheRepository())

	got, err := svc.GetResult(ctx, "abc12345")
	require.NoError(t, err)
	assert.Equal(t, 7, got.Score)
	assert.Equal(t, domain.GradeGreat, got.Grade())

	_, err = svc.GetResult(ctx, "missing1")
	assert.ErrorIs(t, err, domain.ErrResultNotFound)

	_, err = svc.GetResult(ctx, " ")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestNewShareID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewShareID()
		if len(id) != 8 {
			t.Fatalf("NewShareID() = %q, want 8 characters", id)
		}
		seen[id] = true
	}
	if len(seen) < 99 {
		t.Errorf("NewShareID produced %d distinct ids out of 100", len(seen))
	}
}
