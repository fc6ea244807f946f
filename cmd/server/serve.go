package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/kotoba/backend/config"
	httpDelivery "github.com/kotoba/backend/internal/delivery/http"
	"github.com/kotoba/backend/internal/domain"
	"github.com/kotoba/backend/internal/infrastructure/auth"
	"github.com/kotoba/backend/internal/infrastructure/cache"
	"github.com/kotoba/backend/internal/infrastructure/metrics"
	"github.com/kotoba/backend/internal/infrastructure/openai"
	"github.com/kotoba/backend/internal/infrastructure/postgres"
	"github.com/kotoba/backend/internal/usecase"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Msg("starting Kotoba backend")

	shutdownMetrics, err := metrics.InitProvider(ctx, "kotoba-backend", version)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Warn().Err(err).Msg("metrics shutdown failed")
		}
	}()
	met, err := metrics.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		return fmt.Errorf("create instruments: %w", err)
	}

	store, err := postgres.Open(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	memCache := cache.NewMemoryCache(cache.DefaultSweepInterval)
	defer memCache.Close()

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Without an API key conversation and speech answer 503; the interfaces
	// must stay nil rather than hold a nil *openai.Client.
	var chat domain.ChatClient
	var speech domain.SpeechClient
	if cfg.OpenAI.APIKey != "" {
		client, err := openai.NewClient(openai.Config{
			APIKey:             cfg.OpenAI.APIKey,
			BaseURL:            cfg.OpenAI.BaseURL,
			ChatModel:          cfg.OpenAI.ChatModel,
			SpeechModel:        cfg.OpenAI.TTSModel,
			TranscriptionModel: cfg.OpenAI.TranscriptionModel,
			RequestsPerMinute:  cfg.OpenAI.RequestsPerMinute,
			Timeout:            cfg.OpenAI.Timeout,
		}, met)
		if err != nil {
			return err
		}
		chat, speech = client, client
		log.Info().Str("chat_model", cfg.OpenAI.ChatModel).Str("tts_model", cfg.OpenAI.TTSModel).Msg("OpenAI configured")
	} else {
		log.Warn().Msg("OpenAI API key not configured; conversation and speech are disabled")
	}

	services := newServices(cfg, store, memCache, tokens, chat, speech, met)
	handler := httpDelivery.NewHandler(services, store, version)
	router := httpDelivery.SetupRouter(cfg, handler, tokens, met)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newServices wires the use cases over their repositories and clients
func newServices(
	cfg *config.Config,
	store *postgres.Store,
	memCache domain.CacheRepository,
	tokens domain.TokenManager,
	chat domain.ChatClient,
	speech domain.SpeechClient,
	met *metrics.Metrics,
) httpDelivery.Services {
	leaderboard := usecase.NewLeaderboardService(store, memCache, usecase.LeaderboardServiceConfig{
		Size:     cfg.Quiz.LeaderboardSize,
		CacheTTL: cfg.Cache.TTL,
	})

	return httpDelivery.Services{
		Quiz: usecase.NewQuizService(store, store, leaderboard, met, usecase.QuizServiceConfig{
			QuestionsPerQuiz: cfg.Quiz.QuestionsPerQuiz,
		}),
		Leaderboard: leaderboard,
		Pronunciation: usecase.NewPronunciationService(store, speech, met, usecase.PronunciationServiceConfig{
			Threshold:   cfg.Pronunciation.Threshold,
			PhraseLimit: cfg.Pronunciation.PhraseLimit,
		}),
		Conversation: usecase.NewConversationService(chat, usecase.ConversationServiceConfig{
			SystemPrompt: cfg.OpenAI.SystemPrompt,
			HistoryLimit: cfg.OpenAI.HistoryLimit,
		}),
		Speech: usecase.NewSpeechService(speech, cfg.OpenAI.DefaultVoice),
		Admin:  newAdminService(cfg, store, tokens),
	}
}

func newAdminService(cfg *config.Config, store *postgres.Store, tokens domain.TokenManager) *usecase.AdminService {
	return usecase.NewAdminService(store, store, tokens, usecase.AdminServiceConfig{
		AdminEmail:        cfg.Auth.AdminEmail,
		AdminPasswordHash: cfg.Auth.AdminPasswordHash,
	})
}
