package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tikulab/tiku-backend/internal/model"
	"github.com/tikulab/tiku-backend/internal/repository"
)

// HistoryService handles exam history reads and deletion. Records are
// created only by the session engine's recorder.
type HistoryService struct {
	history *repository.HistoryRepository
	log     zerolog.Logger
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(history *repository.HistoryRepository, log zerolog.Logger) *HistoryService {
	return &HistoryService{
		history: history,
		log:     log.With().Str("component", "history_service").Logger(),
	}
}

// List returns all history records, most recent exam first.
func (s *HistoryService) List(ctx context.Context) ([]model.ExamHistory, error) {
	return s.history.List(ctx)
}

// GetByID returns one record for the results view.
func (s *HistoryService) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamHistory, error) {
	return s.history.GetByID(ctx, id)
}

// Delete removes one record.
func (s *HistoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.history.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("history_id", id.String()).Msg("Exam history deleted")
	return nil
}
