package usecase

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kotoba/backend/internal/domain"
	"github.com/kotoba/backend/internal/infrastructure/auth"
)

// AdminServiceConfig holds the single admin identity
type AdminServiceConfig struct {
	AdminEmail        string
	AdminPasswordHash string
}

// AdminService manages quiz content and exposes all results to the admin
type AdminService struct {
	questions    domain.QuestionRepository
	results      domain.ResultRepository
	tokens       domain.TokenManager
	adminEmail   string
	passwordHash string
	now          func() time.Time
}

// NewAdminService creates a new admin service with dependencies
func NewAdminService(
	questions domain.QuestionRepository,
	results domain.ResultRepository,
	tokens domain.TokenManager,
	config AdminServiceConfig,
) *AdminService {
	return &AdminService{
		questions:    questions,
		results:      results,
		tokens:       tokens,
		adminEmail:   strings.ToLower(strings.TrimSpace(config.AdminEmail)),
		passwordHash: config.AdminPasswordHash,
		now:          time.Now,
	}
}

// Login checks the admin credentials and issues a session token
func (s *AdminService) Login(ctx context.Context, email, password string) (*domain.AdminSession, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if s.adminEmail == "" || s.passwordHash == "" {
		return nil, domain.ErrUnauthorized
	}

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.adminEmail)) == 1
	passwordOK := auth.CheckPassword(s.passwordHash, password)
	if !emailOK || !passwordOK {
		log.Warn().Str("component", "admin").Str("email", email).Msg("rejected admin login")
		return nil, domain.ErrUnauthorized
	}

	token, expiresAt, err := s.tokens.Issue(email)
	if err != nil {
		return nil, err
	}
	return &domain.AdminSession{Token: token, ExpiresAt: expiresAt}, nil
}

// ListQuestions returns every question, newest first
func (s *AdminService) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	return s.questions.ListQuestions(ctx)
}

// AddQuestion validates and stores a new question
func (s *AdminService) AddQuestion(ctx context.Context, q *domain.Question) (*domain.Question, error) {
	if q == nil {
		return nil, domain.ErrInvalidRequest
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	q.ID = uuid.NewString()
	q.CreatedAt = s.now().UTC()

	if err := s.questions.CreateQuestion(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	log.Info().Str("component", "admin").Str("question_id", q.ID).Str("category", string(q.Category)).Msg("question added")
	return q, nil
}

// DeleteQuestion removes a question by ID
func (s *AdminService) DeleteQuestion(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrInvalidRequest
	}
	if err := s.questions.DeleteQuestion(ctx, id); err != nil {
		return err
	}
	log.Info().Str("component", "admin").Str("question_id", id).Msg("question deleted")
	return nil
}

// ListResults returns every quiz result, newest first
func (s *AdminService) ListResults(ctx context.Context) ([]domain.QuizResult, error) {
	return s.results.ListResults(ctx)
}

// ImportQuestions validates and stores a batch of questions, stopping at the first invalid one
func (s *AdminService) ImportQuestions(ctx context.Context, questions []domain.Question) (int, error) {
	for i := range questions {
		if _, err := s.AddQuestion(ctx, &questions[i]); err != nil {
			return i, fmt.Errorf("question %d (%q): %w", i+1, questions[i].Question, err)
		}
	}
	return len(questions), nil
}
