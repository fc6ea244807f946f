package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kotoba/backend/internal/domain"
)

// Schema creates the questions and quiz_results tables if they do not exist
const Schema = `
CREATE TABLE IF NOT EXISTS questions (
    id             TEXT PRIMARY KEY,
    category       TEXT NOT NULL,
    question       TEXT NOT NULL,
    option_a       TEXT NOT NULL,
    option_b       TEXT NOT NULL,
    option_c       TEXT NOT NULL,
    option_d       TEXT NOT NULL,
    correct_answer TEXT NOT NULL CHECK (correct_answer IN ('A','B','C','D')),
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_questions_category ON questions(category);

CREATE TABLE IF NOT EXISTS quiz_results (
    id              TEXT PRIMARY KEY,
    user_name       TEXT NOT NULL,
    score           INTEGER NOT NULL CHECK (score >= 0),
    total_questions INTEGER NOT NULL CHECK (total_questions > 0),
    category        TEXT NOT NULL,
    share_id        TEXT NOT NULL UNIQUE,
    completed_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_quiz_results_leaderboard ON quiz_results(category, score DESC, completed_at ASC);
`

// DB is the subset of *pgxpool.Pool the store needs
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store persists questions and quiz results in PostgreSQL
type Store struct {
	db   DB
	pool *pgxpool.Pool
}

var (
	_ domain.QuestionRepository = (*Store)(nil)
	_ domain.ResultRepository   = (*Store)(nil)
)

// Open connects a pool to dsn and verifies the connection
func Open(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Store{db: pool, pool: pool}, nil
}

// NewStore wraps an existing connection or pool
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Close releases the pool if the store owns one
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	return s.pool.Ping(ctx)
}

// Migrate applies Schema
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

const questionColumns = `id, category, question, option_a, option_b, option_c, option_d, correct_answer, created_at`

// ListQuestions returns every question, newest first
func (s *Store) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.db.Query(ctx, `SELECT `+questionColumns+` FROM questions ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list questions: %w", err)
	}
	return collectQuestions(rows)
}

// ListByCategory returns the questions of one category
func (s *Store) ListByCategory(ctx context.Context, category domain.Category) ([]domain.Question, error) {
	rows, err := s.db.Query(ctx, `SELECT `+questionColumns+` FROM questions WHERE category = $1 ORDER BY created_at, id`, string(category))
	if err != nil {
		return nil, fmt.Errorf("postgres: list %s questions: %w", category, err)
	}
	return collectQuestions(rows)
}

// ListPhrases returns up to limit question texts for pronunciation practice
func (s *Store) ListPhrases(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT question FROM questions ORDER BY created_at, id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list phrases: %w", err)
	}
	defer rows.Close()

	var phrases []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("postgres: scan phrase: %w", err)
		}
		phrases = append(phrases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list phrases: %w", err)
	}
	return phrases, nil
}

// GetQuestion returns one question or domain.ErrQuestionNotFound
func (s *Store) GetQuestion(ctx context.Context, id string) (*domain.Question, error) {
	row := s.db.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id)

	q, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("postgres: get question %q: %w", id, err)
	}
	return q, nil
}

// GetQuestions returns the questions with the given IDs keyed by ID.
// Unknown IDs are simply absent from the map.
func (s *Store) GetQuestions(ctx context.Context, ids []string) (map[string]domain.Question, error) {
	out := make(map[string]domain.Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := s.db.Query(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("postgres: get questions: %w", err)
	}
	questions, err := collectQuestions(rows)
	if err != nil {
		return nil, err
	}
	for _, q := range questions {
		out[q.ID] = q
	}
	return out, nil
}

// CreateQuestion inserts q
func (s *Store) CreateQuestion(ctx context.Context, q *domain.Question) error {
	const query = `
		INSERT INTO questions (id, category, question, option_a, option_b, option_c, option_d, correct_answer, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err := s.db.Exec(ctx, query,
		q.ID, string(q.Category), q.Question,
		q.OptionA, q.OptionB, q.OptionC, q.OptionD,
		q.CorrectAnswer, q.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("postgres: question %q already exists: %w", q.ID, domain.ErrInvalidRequest)
		}
		return fmt.Errorf("postgres: create question: %w", err)
	}
	return nil
}

// DeleteQuestion removes a question or returns domain.ErrQuestionNotFound
func (s *Store) DeleteQuestion(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete question %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

const resultColumns = `id, user_name, score, total_questions, category, share_id, completed_at`

// CreateResult inserts r
func (s *Store) CreateResult(ctx context.Context, r *domain.QuizResult) error {
	const query = `
		INSERT INTO quiz_results (id, user_name, score, total_questions, category, share_id, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err := s.db.Exec(ctx, query,
		r.ID, r.UserName, r.Score, r.TotalQuestions,
		string(r.Category), r.ShareID, r.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create result: %w", err)
	}
	return nil
}

// GetResultByShareID returns one result or domain.ErrResultNotFound
func (s *Store) GetResultByShareID(ctx context.Context, shareID string) (*domain.QuizResult, error) {
	row := s.db.QueryRow(ctx, `SELECT `+resultColumns+` FROM quiz_results WHERE share_id = $1`, shareID)

	r, err := scanResult(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrResultNotFound
		}
		return nil, fmt.Errorf("postgres: get result %q: %w", shareID, err)
	}
	return r, nil
}

// ListResults returns every result, most recent first
func (s *Store) ListResults(ctx context.Context) ([]domain.QuizResult, error) {
	rows, err := s.db.Query(ctx, `SELECT `+resultColumns+` FROM quiz_results ORDER BY completed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list results: %w", err)
	}
	return collectResults(rows)
}

// TopResults returns the best results of a category.
// Ties on score go to whoever finished first.
func (s *Store) TopResults(ctx context.Context, category domain.Category, limit int) ([]domain.QuizResult, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+resultColumns+` FROM quiz_results WHERE category = $1 ORDER BY score DESC, completed_at ASC LIMIT $2`,
		string(category), limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: top results for %s: %w", category, err)
	}
	return collectResults(rows)
}

func scanQuestion(row pgx.Row) (*domain.Question, error) {
	var q domain.Question
	var category string
	if err := row.Scan(
		&q.ID, &category, &q.Question,
		&q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD,
		&q.CorrectAnswer, &q.CreatedAt,
	); err != nil {
		return nil, err
	}
	q.Category = domain.Category(category)
	return &q, nil
}

func collectQuestions(rows pgx.Rows) ([]domain.Question, error) {
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan question: %w", err)
		}
		out = append(out, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate questions: %w", err)
	}
	return out, nil
}

func scanResult(row pgx.Row) (*domain.QuizResult, error) {
	var r domain.QuizResult
	var category string
	if err := row.Scan(
		&r.ID, &r.UserName, &r.Score, &r.TotalQuestions,
		&category, &r.ShareID, &r.CompletedAt,
	); err != nil {
		return nil, err
	}
	r.Category = domain.Category(category)
	return &r, nil
}

func collectResults(rows pgx.Rows) ([]domain.QuizResult, error) {
	defer rows.Close()

	var out []domain.QuizResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan result: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate results: %w", err)
	}
	return out, nil
}

// isDuplicateKeyError reports a unique violation (SQLSTATE 23505)
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
