package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/kotoba/backend/internal/domain"
	"github.com/kotoba/backend/internal/usecase"
)

// maxUploadBytes bounds recorded audio uploads
const maxUploadBytes = 10 << 20

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles the use cases the handlers call
type Services struct {
	Quiz          *usecase.QuizService
	Leaderboard   *usecase.LeaderboardService
	Pronunciation *usecase.PronunciationService
	Conversation  *usecase.ConversationService
	Speech        *usecase.SpeechService
	Admin         *usecase.AdminService
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	svc     Services
	db      Pinger
	version string
}

// NewHandler creates a new HTTP handler. db may be nil, in which case the
// health check does not probe the database.
func NewHandler(services Services, db Pinger, version string) *Handler {
	return &Handler{svc: services, db: db, version: version}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("component", "health").Msg("database ping failed")
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{
		"status":  status,
		"service": "kotoba-backend",
		"version": h.version,
	})
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidAnswer):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		status, message = http.StatusUnauthorized, domain.ErrUnauthorized.Error()
	case errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrResultNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrRateLimited):
		status, message = http.StatusTooManyRequests, domain.ErrRateLimited.Error()
	case errors.Is(err, domain.ErrServiceUnavailable):
		status, message = http.StatusServiceUnavailable, domain.ErrServiceUnavailable.Error()
	case errors.Is(err, domain.ErrUpstreamFailure):
		status, message = http.StatusBadGateway, domain.ErrUpstreamFailure.Error()
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Int("status", status).Msg("request failed")
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// bindJSON decodes the body into req, answering 400 on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return false
	}
	return true
}

// readAudio loads the multipart "audio" file of the request
func readAudio(c *gin.Context) (*domain.Audio, error) {
	header, err := c.FormFile("audio")
	if err != nil {
		return nil, fmt.Errorf("%w: audio file is required", domain.ErrInvalidRequest)
	}
	if header.Size > maxUploadBytes {
		return nil, fmt.Errorf("%w: audio file exceeds %d bytes", domain.ErrInvalidRequest, maxUploadBytes)
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	return &domain.Audio{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
		FileName:    header.Filename,
	}, nil
}
