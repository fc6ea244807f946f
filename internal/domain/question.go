package domain

import (
	"strings"
	"time"
)

// Category is a quiz category
type Category string

const (
	CategoryHiragana   Category = "hiragana"
	CategoryKatakana   Category = "katakana"
	CategoryVocabulary Category = "vocabulary"
)

// Categories lists every quiz category in display order
var Categories = []Category{CategoryHiragana, CategoryKatakana, CategoryVocabulary}

// ParseCategory validates a raw category name
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

// AnswerLetters are the valid multiple-choice answers in option order
var AnswerLetters = []string{"A", "B", "C", "D"}

// ParseAnswer normalizes an answer letter, accepting lower case
func ParseAnswer(s string) (string, error) {
	a := strings.ToUpper(strings.TrimSpace(s))
	for _, l := range AnswerLetters {
		if a == l {
			return a, nil
		}
	}
	return "", ErrInvalidAnswer
}

// Question is a stored multiple-choice quiz question
type Question struct {
	ID            string    `json:"id" yaml:"id,omitempty"`
	Category      Category  `json:"category" yaml:"category"`
	Question      string    `json:"question" yaml:"question"`
	OptionA       string    `json:"optionA" yaml:"option_a"`
	OptionB       string    `json:"optionB" yaml:"option_b"`
	OptionC       string    `json:"optionC" yaml:"option_c"`
	OptionD       string    `json:"optionD" yaml:"option_d"`
	CorrectAnswer string    `json:"correctAnswer" yaml:"correct_answer"`
	CreatedAt     time.Time `json:"createdAt" yaml:"-"`
}

// Validate checks that a question is complete and normalizes its category and answer
func (q *Question) Validate() error {
	category, err := ParseCategory(string(q.Category))
	if err != nil {
		return err
	}
	answer, err := ParseAnswer(q.CorrectAnswer)
	if err != nil {
		return err
	}
	for _, field := range []string{q.Question, q.OptionA, q.OptionB, q.OptionC, q.OptionD} {
		if strings.TrimSpace(field) == "" {
			return ErrInvalidRequest
		}
	}
	q.Category = category
	q.CorrectAnswer = answer
	return nil
}

// Options returns the four options keyed by answer letter
func (q *Question) Options() map[string]string {
	return map[string]string{
		"A": q.OptionA,
		"B": q.OptionB,
		"C": q.OptionC,
		"D": q.OptionD,
	}
}

// QuizQuestion is the player-facing view of a question, without the answer
type QuizQuestion struct {
	ID       string            `json:"id"`
	Question string            `json:"question"`
	Options  map[string]string `json:"options"`
}

// AnswerCheck is the feedback for one answered question
type AnswerCheck struct {
	QuestionID    string `json:"questionId"`
	Answer        string `json:"answer"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer"`
}
