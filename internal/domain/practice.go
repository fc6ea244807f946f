package domain

// PronunciationResult is the outcome of scoring one spoken attempt
type PronunciationResult struct {
	Phrase     string  `json:"phrase"`
	Transcript string  `json:"transcript"`
	Similarity float64 `json:"similarity"`
	// EditSimilarity is reported for comparison only; Correct is derived from Similarity.
	EditSimilarity float64 `json:"editSimilarity"`
	Correct        bool    `json:"correct"`
}

// Chat message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a practice conversation
type ChatMessage struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content"`
}

// SpeechRequest asks for Japanese text to be synthesized
type SpeechRequest struct {
	Text  string  `json:"text" binding:"required"`
	Voice string  `json:"voice,omitempty"`
	Rate  float64 `json:"rate,omitempty"`
}

// Audio is synthesized or uploaded audio
type Audio struct {
	Data        []byte
	ContentType string
	FileName    string
}
