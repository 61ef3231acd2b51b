package exam

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tikulab/tiku-backend/internal/model"
)

// Recorder builds and persists the immutable history record of a
// completed session. It returns the generated record ID so the caller
// can navigate to the results view.
type Recorder struct {
	history HistoryStore
	log     zerolog.Logger
}

// NewRecorder creates a Recorder.
func NewRecorder(history HistoryStore, log zerolog.Logger) *Recorder {
	return &Recorder{
		history: history,
		log:     log.With().Str("component", "history_recorder").Logger(),
	}
}

// Record persists one history record for a graded session. For practice
// sessions the bank name is synthesized with the practice suffix and
// bankID is nil.
func (r *Recorder) Record(
	ctx context.Context,
	source model.HistorySource,
	bankID *uuid.UUID,
	bankName string,
	timeUsed time.Duration,
	graded []model.GradedQuestion,
	correctCount int,
) (uuid.UUID, error) {
	if source == model.SourceWrongAnswerBook {
		bankName = bankName + model.PracticeNameSuffix
	}

	rec := &model.ExamHistory{
		BankID:       bankID,
		BankName:     bankName,
		ExamDate:     time.Now(),
		TimeUsed:     int(timeUsed.Seconds()),
		TotalScore:   Score(correctCount, len(graded)),
		CorrectCount: correctCount,
		TotalCount:   len(graded),
		Source:       source,
		Questions:    graded,
	}

	if err := r.history.Insert(ctx, rec); err != nil {
		return uuid.Nil, fmt.Errorf("insert history: %w", err)
	}

	r.log.Info().
		Str("history_id", rec.ID.String()).
		Str("bank_name", bankName).
		Int("score", rec.TotalScore).
		Int("correct", correctCount).
		Int("total", rec.TotalCount).
		Msg("Exam history recorded")

	return rec.ID, nil
}
