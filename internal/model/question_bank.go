package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionBank is a named collection of questions with exam parameters.
// Read-only while an exam session runs; the session operates on a
// shuffled copy of Questions.
type QuestionBank struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Category   string     `json:"category,omitempty"`
	TimeLimit  int        `json:"time_limit"` // minutes
	AllowPause bool       `json:"allow_pause"`
	Rating     int        `json:"rating"` // 0-5
	Questions  []Question `json:"questions"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// SaveQuestionBankRequest is the payload for creating or updating a bank.
type SaveQuestionBankRequest struct {
	Name       string            `json:"name" binding:"required,min=1,max=255"`
	Category   string            `json:"category" binding:"omitempty,max=100"`
	TimeLimit  int               `json:"time_limit" binding:"required,min=1,max=480"`
	AllowPause *bool             `json:"allow_pause" binding:"required"`
	Rating     *int              `json:"rating" binding:"required,min=0,max=5"`
	Questions  []QuestionPayload `json:"questions" binding:"required,min=1,dive"`
}
