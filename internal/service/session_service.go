package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tikulab/tiku-backend/internal/config"
	"github.com/tikulab/tiku-backend/internal/exam"
	"github.com/tikulab/tiku-backend/internal/model"
	"github.com/tikulab/tiku-backend/internal/repository"
)

// ErrSessionNotFound means no live session matches the given id.
var ErrSessionNotFound = errors.New("session not found")

// SessionService bridges the HTTP layer and the exam session engine:
// it resolves banks and books, starts sessions through the manager and
// dispatches per-session operations.
type SessionService struct {
	manager *exam.Manager
	banks   *repository.BankRepository
	books   *repository.BookRepository
	cfg     *config.Config
	log     zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	manager *exam.Manager,
	banks *repository.BankRepository,
	books *repository.BookRepository,
	cfg *config.Config,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		manager: manager,
		banks:   banks,
		books:   books,
		cfg:     cfg,
		log:     log.With().Str("component", "session_service").Logger(),
	}
}

// StartBankExam starts (or restores) an exam session over a bank.
func (s *SessionService) StartBankExam(ctx context.Context, bankID uuid.UUID) (exam.View, error) {
	bank, err := s.banks.GetByID(ctx, bankID)
	if err != nil {
		return exam.View{}, fmt.Errorf("get bank: %w", err)
	}

	session, err := s.manager.StartBank(ctx, bank)
	if err != nil {
		return exam.View{}, err
	}
	return session.View(), nil
}

// StartPractice starts a wrong-answer practice session over a book.
func (s *SessionService) StartPractice(ctx context.Context, bookID uuid.UUID) (exam.View, error) {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return exam.View{}, fmt.Errorf("get book: %w", err)
	}

	session, err := s.manager.StartPractice(ctx, book, s.cfg.PracticeTimeLimit)
	if err != nil {
		return exam.View{}, err
	}
	return session.View(), nil
}

// Get resolves a live session by id.
func (s *SessionService) Get(id uuid.UUID) (*exam.Session, error) {
	session, ok := s.manager.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// State returns the current view of a session.
func (s *SessionService) State(id uuid.UUID) (exam.View, error) {
	session, err := s.Get(id)
	if err != nil {
		return exam.View{}, err
	}
	return session.View(), nil
}

// RecordAnswer stores an answer in a session.
func (s *SessionService) RecordAnswer(id uuid.UUID, questionID string, ans model.Answer) error {
	session, err := s.Get(id)
	if err != nil {
		return err
	}
	return session.RecordAnswer(questionID, ans)
}

// Navigate moves a session's current position.
func (s *SessionService) Navigate(id uuid.UUID, index int) error {
	session, err := s.Get(id)
	if err != nil {
		return err
	}
	return session.Navigate(index)
}

// TogglePause flips a session between Active and Paused.
func (s *SessionService) TogglePause(id uuid.UUID) (exam.State, error) {
	session, err := s.Get(id)
	if err != nil {
		return "", err
	}
	return session.TogglePause(), nil
}

// Submit grades and persists a session, returning the history record id.
func (s *SessionService) Submit(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	session, err := s.Get(id)
	if err != nil {
		return uuid.Nil, err
	}
	return session.Submit(ctx)
}

// Shutdown drains the session manager during graceful shutdown.
func (s *SessionService) Shutdown() {
	s.manager.Shutdown()
}
