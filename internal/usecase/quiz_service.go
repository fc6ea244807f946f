package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kotoba/backend/internal/domain"
	"github.com/kotoba/backend/internal/infrastructure/metrics"
)

// shareIDLength is the length of the token used in shareable result URLs
const shareIDLength = 8

// QuizServiceConfig holds configuration for the quiz service
type QuizServiceConfig struct {
	QuestionsPerQuiz int
}

// QuizService runs multiple-choice quizzes and records their results
type QuizService struct {
	questions        domain.QuestionRepository
	results          domain.ResultRepository
	leaderboard      *LeaderboardService
	metrics          *metrics.Metrics
	questionsPerQuiz int
	now              func() time.Time
	shuffle          func(n int, swap func(i, j int))
}

// NewQuizService creates a new quiz service with dependencies
func NewQuizService(
	questions domain.QuestionRepository,
	results domain.ResultRepository,
	leaderboard *LeaderboardService,
	m *metrics.Metrics,
	config QuizServiceConfig,
) *QuizService {
	perQuiz := config.QuestionsPerQuiz
	if perQuiz <= 0 {
		perQuiz = 10
	}

	return &QuizService{
		questions:        questions,
		results:          results,
		leaderboard:      leaderboard,
		metrics:          m,
		questionsPerQuiz: perQuiz,
		now:              time.Now,
		shuffle:          rand.Shuffle,
	}
}

// StartQuiz picks a shuffled set of questions for the category with answers hidden.
// An empty category yields an empty slice, not an error.
func (s *QuizService) StartQuiz(ctx context.Context, rawCategory string) ([]domain.QuizQuestion, error) {
	category, err := domain.ParseCategory(rawCategory)
	if err != nil {
		return nil, err
	}

	all, err := s.questions.ListByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list questions for %s: %w", category, err)
	}

	s.shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if len(all) > s.questionsPerQuiz {
		all = all[:s.questionsPerQuiz]
	}

	quiz := make([]domain.QuizQuestion, 0, len(all))
	for i := range all {
		quiz = append(quiz, domain.QuizQuestion{
			ID:       all[i].ID,
			Question: all[i].Question,
			Options:  all[i].Options(),
		})
	}
	return quiz, nil
}

// CheckAnswer grades a single answer and reveals the correct letter
func (s *QuizService) CheckAnswer(ctx context.Context, questionID, rawAnswer string) (*domain.AnswerCheck, error) {
	answer, err := domain.ParseAnswer(rawAnswer)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(questionID) == "" {
		return nil, domain.ErrInvalidRequest
	}

	q, err := s.questions.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	return &domain.AnswerCheck{
		QuestionID:    q.ID,
		Answer:        answer,
		Correct:       answer == q.CorrectAnswer,
		CorrectAnswer: q.CorrectAnswer,
	}, nil
}

// SubmitQuiz grades a finished quiz, stores the result and returns it with its share ID
func (s *QuizService) SubmitQuiz(ctx context.Context, submission *domain.QuizSubmission) (*domain.QuizResult, error) {
	if submission == nil || len(submission.Answers) == 0 {
		return nil, domain.ErrInvalidRequest
	}
	userName := strings.TrimSpace(submission.UserName)
	if userName == "" {
		return nil, domain.ErrInvalidRequest
	}
	category, err := domain.ParseCategory(submission.Category)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(submission.Answers))
	for _, a := range submission.Answers {
		ids = append(ids, a.QuestionID)
	}
	stored, err := s.questions.GetQuestions(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load answered questions: %w", err)
	}

	score := 0
	seen := make(map[string]bool, len(submission.Answers))
	for _, a := range submission.Answers {
		if seen[a.QuestionID] {
			return nil, domain.ErrInvalidRequest
		}
		seen[a.QuestionID] = true

		q, ok := stored[a.QuestionID]
		if !ok {
			return nil, domain.ErrQuestionNotFound
		}
		if q.Category != category {
			return nil, domain.ErrInvalidRequest
		}
		answer, err := domain.ParseAnswer(a.Answer)
		if err != nil {
			return nil, err
		}
		if answer == q.CorrectAnswer {
			score++
		}
	}

	result := &domain.QuizResult{
		ID:             uuid.NewString(),
		UserName:       userName,
		Score:          score,
		TotalQuestions: len(submission.Answers),
		Category:       category,
		ShareID:        NewShareID(),
		CompletedAt:    s.now().UTC(),
	}

	if err := s.results.CreateResult(ctx, result); err != nil {
		return nil, fmt.Errorf("save result: %w", err)
	}

	if s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx, category)
	}
	s.metrics.RecordQuizSubmission(ctx, string(category))

	log.Info().
		Str("component", "quiz").
		Str("category", string(category)).
		Str("share_id", result.ShareID).
		Int("score", result.Score).
		Int("total", result.TotalQuestions).
		Msg("quiz submitted")

	return result, nil
}

// GetResult looks up a stored result by its share ID
func (s *QuizService) GetResult(ctx context.Context, shareID string) (*domain.QuizResult, error) {
	shareID = strings.TrimSpace(shareID)
	if shareID == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.results.GetResultByShareID(ctx, shareID)
}

// NewShareID returns a random 8-character lower-case alphanumeric token
func NewShareID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:shareIDLength]
}
