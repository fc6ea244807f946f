package http

import (
	"github.com/gin-gonic/gin"

	"github.com/kotoba/backend/config"
	"github.com/kotoba/backend/internal/domain"
	"github.com/kotoba/backend/internal/infrastructure/metrics"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, tokens domain.TokenManager, m *metrics.Metrics) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(MetricsMiddleware(m))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		quiz := v1.Group("/quiz")
		{
			quiz.GET("/:category", handler.StartQuiz)
			quiz.POST("/answer", handler.CheckAnswer)
			quiz.POST("/submit", handler.SubmitQuiz)
		}

		v1.GET("/results/:shareId", handler.GetResult)

		leaderboard := v1.Group("/leaderboard")
		{
			leaderboard.GET("", handler.AllLeaderboards)
			leaderboard.GET("/:category", handler.Leaderboard)
		}

		pronunciation := v1.Group("/pronunciation")
		{
			pronunciation.GET("/phrases", handler.PronunciationPhrases)
			pronunciation.POST("/evaluate", handler.EvaluatePronunciation)
			pronunciation.POST("/evaluate-audio", handler.EvaluatePronunciationAudio)
		}

		conversation := v1.Group("/conversation")
		{
			conversation.GET("/greeting", handler.ConversationGreeting)
			conversation.POST("/reply", handler.ConversationReply)
		}

		speech := v1.Group("/speech")
		{
			speech.GET("/voices", handler.SpeechVoices)
			speech.POST("/synthesize", handler.Synthesize)
			speech.POST("/transcribe", handler.Transcribe)
		}

		v1.POST("/admin/login", handler.AdminLogin)

		admin := v1.Group("/admin", AuthMiddleware(tokens))
		{
			admin.GET("/questions", handler.ListQuestions)
			admin.POST("/questions", handler.AddQuestion)
			admin.DELETE("/questions/:id", handler.DeleteQuestion)
			admin.GET("/results", handler.ListResults)
		}
	}

	return router
}
