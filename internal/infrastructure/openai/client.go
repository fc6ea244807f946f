package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/kotoba/backend/internal/domain"
	"github.com/kotoba/backend/internal/infrastructure/metrics"
)

// Config holds OpenAI connection settings
type Config struct {
	APIKey             string
	BaseURL            string
	ChatModel          string
	SpeechModel        string
	TranscriptionModel string
	RequestsPerMinute  int
	Timeout            time.Duration
	MaxRetries         int
}

// Client talks to the OpenAI API for chat, text-to-speech and transcription.
// Every call is rate limited, retried on transient failures and guarded by a
// circuit breaker so a failing upstream is not hammered.
type Client struct {
	api                *goopenai.Client
	limiter            *rate.Limiter
	breaker            *gobreaker.CircuitBreaker
	metrics            *metrics.Metrics
	chatModel          string
	speechModel        string
	transcriptionModel string
	maxRetries         int
	sleep              func(ctx context.Context, d time.Duration) error
}

var (
	_ domain.ChatClient   = (*Client)(nil)
	_ domain.SpeechClient = (*Client)(nil)
)

// NewClient creates a new OpenAI client
func NewClient(config Config, m *metrics.Metrics) (*Client, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, errors.New("openai: api key is required")
	}

	apiConfig := goopenai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		apiConfig.BaseURL = strings.TrimRight(config.BaseURL, "/")
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	apiConfig.HTTPClient = &http.Client{Timeout: timeout}

	rpm := config.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	// burst of 5 lets a short conversation exchange through without queueing
	limiter := rate.NewLimiter(rate.Limit(float64(rpm)/60), 5)

	maxRetries := config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &Client{
		api:                goopenai.NewClientWithConfig(apiConfig),
		limiter:            limiter,
		breaker:            newBreaker("openai"),
		metrics:            m,
		chatModel:          withDefault(config.ChatModel, goopenai.GPT4oMini),
		speechModel:        withDefault(config.SpeechModel, string(goopenai.TTSModel1)),
		transcriptionModel: withDefault(config.TranscriptionModel, goopenai.Whisper1),
		maxRetries:         maxRetries,
		sleep:              sleepContext,
	}, nil
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// rejected requests say nothing about upstream health
		IsSuccessful: func(err error) bool {
			return err == nil || !isRetryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("component", "openai").Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
}

// Chat returns the assistant reply to messages
func (c *Client) Chat(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model:    c.chatModel,
		Messages: make([]goopenai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	var reply string
	err := c.do(ctx, "chat", func(ctx context.Context) error {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("openai: chat completion returned no choices")
		}
		reply = resp.Choices[0].Message.Content
		return nil
	})
	return reply, err
}

// Synthesize renders text as MP3 audio
func (c *Client) Synthesize(ctx context.Context, text, voice string, speed float64) (*domain.Audio, error) {
	req := goopenai.CreateSpeechRequest{
		Model:          goopenai.SpeechModel(c.speechModel),
		Input:          text,
		Voice:          goopenai.SpeechVoice(voice),
		Speed:          speed,
		ResponseFormat: goopenai.SpeechResponseFormatMp3,
	}

	var data []byte
	err := c.do(ctx, "speech", func(ctx context.Context) error {
		resp, err := c.api.CreateSpeech(ctx, req)
		if err != nil {
			return err
		}
		defer resp.Close()

		data, err = io.ReadAll(resp)
		if err != nil {
			return fmt.Errorf("openai: read speech: %w", err)
		}
		if len(data) == 0 {
			return errors.New("openai: no audio data received")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &domain.Audio{Data: data, ContentType: "audio/mpeg", FileName: "speech.mp3"}, nil
}

// Transcribe converts recorded speech to text. language is an ISO-639-1 hint.
func (c *Client) Transcribe(ctx context.Context, audio *domain.Audio, language string) (string, error) {
	if audio == nil || len(audio.Data) == 0 {
		return "", domain.ErrInvalidRequest
	}
	// the file name extension tells the API how to decode the upload
	name := audio.FileName
	if name == "" {
		name = "recording.webm"
	}

	var text string
	err := c.do(ctx, "transcription", func(ctx context.Context) error {
		resp, err := c.api.CreateTranscription(ctx, goopenai.AudioRequest{
			Model:    c.transcriptionModel,
			FilePath: name,
			Reader:   bytes.NewReader(audio.Data),
			Language: language,
			Format:   goopenai.AudioResponseFormatJSON,
		})
		if err != nil {
			return err
		}
		text = strings.TrimSpace(resp.Text)
		return nil
	})
	return text, err
}

// do runs call under the rate limiter, retry policy and circuit breaker,
// recording one upstream metric per logical request
func (c *Client) do(ctx context.Context, kind string, call func(ctx context.Context) error) error {
	start := time.Now()
	err := c.retry(ctx, kind, call)
	c.metrics.RecordUpstream(ctx, kind, time.Since(start).Seconds(), err)
	return err
}

func (c *Client) retry(ctx context.Context, kind string, call func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("openai: rate limiter: %w", err)
		}

		_, err := c.breaker.Execute(func() (interface{}, error) {
			return nil, call(ctx)
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: openai circuit open", domain.ErrServiceUnavailable)
		}

		lastErr = err
		if !isRetryable(err) {
			log.Warn().Err(err).Str("component", "openai").Str("kind", kind).Msg("request rejected")
			return err
		}

		log.Warn().Err(err).Str("component", "openai").Str("kind", kind).Int("attempt", attempt).Msg("request failed")
		if attempt < c.maxRetries {
			if err := c.sleep(ctx, exponentialBackoff(attempt)); err != nil {
				return err
			}
		}
	}

	log.Error().Err(lastErr).Str("component", "openai").Str("kind", kind).Msg("all retries failed")
	return lastErr
}

// isRetryable reports whether err is worth another attempt:
// rate limiting, server errors and transport failures are, bad requests are not
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	return true
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// exponentialBackoff returns the delay before retry attempt+1: 500ms, 1s, 2s, ...
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(1<<(attempt-1)) * 500 * time.Millisecond
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func withDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
