package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kotoba/backend/internal/domain"
)

type evaluateRequest struct {
	Phrase     string `json:"phrase" binding:"required"`
	Transcript string `json:"transcript"`
}

type replyRequest struct {
	Messages []domain.ChatMessage `json:"messages" binding:"required,dive"`
}

// PronunciationPhrases handles GET /pronunciation/phrases
func (h *Handler) PronunciationPhrases(c *gin.Context) {
	phrases, err := h.svc.Pronunciation.Phrases(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"phrases": phrases})
}

// EvaluatePronunciation handles POST /pronunciation/evaluate with a client-side transcript
func (h *Handler) EvaluatePronunciation(c *gin.Context) {
	var req evaluateRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.svc.Pronunciation.Evaluate(c.Request.Context(), req.Phrase, req.Transcript)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// EvaluatePronunciationAudio handles POST /pronunciation/evaluate-audio.
// The form carries the target "phrase" and the recorded "audio" file.
func (h *Handler) EvaluatePronunciationAudio(c *gin.Context) {
	audio, err := readAudio(c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.svc.Pronunciation.EvaluateAudio(c.Request.Context(), c.PostForm("phrase"), audio)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ConversationGreeting handles GET /conversation/greeting
func (h *Handler) ConversationGreeting(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Conversation.Greeting())
}

// ConversationReply handles POST /conversation/reply
func (h *Handler) ConversationReply(c *gin.Context) {
	var req replyRequest
	if !bindJSON(c, &req) {
		return
	}

	reply, err := h.svc.Conversation.Reply(c.Request.Context(), req.Messages)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// SpeechVoices handles GET /speech/voices
func (h *Handler) SpeechVoices(c *gin.Context) {
	voices, def := h.svc.Speech.Voices()
	c.JSON(http.StatusOK, gin.H{
		"voices":       voices,
		"defaultVoice": def,
	})
}

// Synthesize handles POST /speech/synthesize and streams back MP3 audio
func (h *Handler) Synthesize(c *gin.Context) {
	var req domain.SpeechRequest
	if !bindJSON(c, &req) {
		return
	}

	audio, err := h.svc.Speech.Synthesize(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Length", strconv.Itoa(len(audio.Data)))
	c.Data(http.StatusOK, audio.ContentType, audio.Data)
}

// Transcribe handles POST /speech/transcribe
func (h *Handler) Transcribe(c *gin.Context) {
	audio, err := readAudio(c)
	if err != nil {
		respondError(c, err)
		return
	}

	text, err := h.svc.Speech.Transcribe(c.Request.Context(), audio)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}
