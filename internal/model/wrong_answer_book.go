package model

import (
	"time"

	"github.com/google/uuid"
)

// WrongAnswerBook collects the currently-unmastered questions for one
// bank name. Reconciliation after each session mutates it; it is deleted
// when its question list becomes empty. Bank name is the natural merge
// key, so at most one book per distinct name is expected.
type WrongAnswerBook struct {
	ID        uuid.UUID        `json:"id"`
	BankName  string           `json:"bank_name"`
	Category  string           `json:"category,omitempty"`
	Rating    int              `json:"rating"`
	Questions []GradedQuestion `json:"questions"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// PracticeQuestions returns the book's questions stripped of previous
// grading, ready to be used as a fresh practice question set.
func (b *WrongAnswerBook) PracticeQuestions() []Question {
	qs := make([]Question, len(b.Questions))
	for i, gq := range b.Questions {
		qs[i] = gq.Question
	}
	return qs
}
