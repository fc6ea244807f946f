package domain

import "time"

// Grade buckets a quiz percentage the way the results page labels it
type Grade string

const (
	GradePerfect      Grade = "perfect"
	GradeGreat        Grade = "great"
	GradeKeepLearning Grade = "keep_learning"
)

// QuizResult is a completed quiz attempt
type QuizResult struct {
	ID             string    `json:"id"`
	UserName       string    `json:"userName"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Category       Category  `json:"category"`
	ShareID        string    `json:"shareId"`
	CompletedAt    time.Time `json:"completedAt"`
}

// Percentage returns the score as a percentage of total questions
func (r *QuizResult) Percentage() float64 {
	if r.TotalQuestions <= 0 {
		return 0
	}
	return float64(r.Score) / float64(r.TotalQuestions) * 100
}

// Grade classifies the result: 100% is perfect, 70% and up is great
func (r *QuizResult) Grade() Grade {
	p := r.Percentage()
	switch {
	case p >= 100:
		return GradePerfect
	case p >= 70:
		return GradeGreat
	default:
		return GradeKeepLearning
	}
}

// AnswerSubmission is one answered question in a quiz submission
type AnswerSubmission struct {
	QuestionID string `json:"questionId" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

// QuizSubmission is a finished quiz sent for grading
type QuizSubmission struct {
	UserName string             `json:"userName" binding:"required"`
	Category string             `json:"category" binding:"required"`
	Answers  []AnswerSubmission `json:"answers" binding:"required"`
}

// LeaderboardEntry is one ranked row of a category leaderboard
type LeaderboardEntry struct {
	Rank           int       `json:"rank"`
	UserName       string    `json:"userName"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Percentage     float64   `json:"percentage"`
	CompletedAt    time.Time `json:"completedAt"`
}
