package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kotoba/backend/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin handles POST /admin/login
func (h *Handler) AdminLogin(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.svc.Admin.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ListQuestions handles GET /admin/questions
func (h *Handler) ListQuestions(c *gin.Context) {
	questions, err := h.svc.Admin.ListQuestions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

// AddQuestion handles POST /admin/questions
func (h *Handler) AddQuestion(c *gin.Context) {
	var req domain.Question
	if !bindJSON(c, &req) {
		return
	}

	q, err := h.svc.Admin.AddQuestion(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

// DeleteQuestion handles DELETE /admin/questions/:id
func (h *Handler) DeleteQuestion(c *gin.Context) {
	if err := h.svc.Admin.DeleteQuestion(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListResults handles GET /admin/results
func (h *Handler) ListResults(c *gin.Context) {
	results, err := h.svc.Admin.ListResults(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]resultResponse, 0, len(results))
	for i := range results {
		out = append(out, newResultResponse(&results[i]))
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}
