package model

import (
	"time"

	"github.com/google/uuid"
)

// HistorySource tags which kind of question set a session was taken from.
type HistorySource string

const (
	SourceQuestionBank    HistorySource = "question_bank"
	SourceWrongAnswerBook HistorySource = "wrong_answer_book"
)

// PracticeNameSuffix is appended to the bank name of history records
// produced by wrong-answer practice sessions.
const PracticeNameSuffix = " - 错题练习"

// ExamHistory is the immutable record of one completed session. Created
// exactly once per submission; BankID is nil for practice sessions.
type ExamHistory struct {
	ID           uuid.UUID        `json:"id"`
	BankID       *uuid.UUID       `json:"bank_id,omitempty"`
	BankName     string           `json:"bank_name"`
	ExamDate     time.Time        `json:"exam_date"`
	TimeUsed     int              `json:"time_used"` // seconds
	TotalScore   int              `json:"total_score"`
	CorrectCount int              `json:"correct_count"`
	TotalCount   int              `json:"total_count"`
	Source       HistorySource    `json:"source"`
	Questions    []GradedQuestion `json:"questions"`
	CreatedAt    time.Time        `json:"created_at"`
}
