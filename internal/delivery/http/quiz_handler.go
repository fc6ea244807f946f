package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kotoba/backend/internal/domain"
)

type answerRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

type resultResponse struct {
	*domain.QuizResult
	Percentage float64      `json:"percentage"`
	Grade      domain.Grade `json:"grade"`
}

func newResultResponse(r *domain.QuizResult) resultResponse {
	return resultResponse{QuizResult: r, Percentage: r.Percentage(), Grade: r.Grade()}
}

// StartQuiz handles GET /quiz/:category
func (h *Handler) StartQuiz(c *gin.Context) {
	category := c.Param("category")
	questions, err := h.svc.Quiz.StartQuiz(c.Request.Context(), category)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category":  category,
		"questions": questions,
	})
}

// CheckAnswer handles POST /quiz/answer
func (h *Handler) CheckAnswer(c *gin.Context) {
	var req answerRequest
	if !bindJSON(c, &req) {
		return
	}

	check, err := h.svc.Quiz.CheckAnswer(c.Request.Context(), req.QuestionID, req.Answer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, check)
}

// SubmitQuiz handles POST /quiz/submit
func (h *Handler) SubmitQuiz(c *gin.Context) {
	var req domain.QuizSubmission
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Quiz.SubmitQuiz(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newResultResponse(result))
}

// GetResult handles GET /results/:shareId
func (h *Handler) GetResult(c *gin.Context) {
	result, err := h.svc.Quiz.GetResult(c.Request.Context(), c.Param("shareId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newResultResponse(result))
}

// AllLeaderboards handles GET /leaderboard
func (h *Handler) AllLeaderboards(c *gin.Context) {
	boards, err := h.svc.Leaderboard.AllLeaderboards(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboards": boards})
}

// Leaderboard handles GET /leaderboard/:category
func (h *Handler) Leaderboard(c *gin.Context) {
	category := c.Param("category")
	entries, err := h.svc.Leaderboard.Leaderboard(c.Request.Context(), category)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"entries":  entries,
	})
}
