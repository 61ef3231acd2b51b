package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tikulab/tiku-backend/internal/model"
	"github.com/tikulab/tiku-backend/internal/repository"
)

// Domain errors
var (
	// ErrAnswerShape means a question's correct answer does not match its
	// type: multiple-choice requires a set of at least one value, single
	// and judge require exactly one value.
	ErrAnswerShape = errors.New("correct answer shape does not match question type")
)

// BankService handles question bank business logic.
type BankService struct {
	banks *repository.BankRepository
	log   zerolog.Logger
}

// NewBankService creates a new BankService.
func NewBankService(banks *repository.BankRepository, log zerolog.Logger) *BankService {
	return &BankService{
		banks: banks,
		log:   log.With().Str("component", "bank_service").Logger(),
	}
}

// List returns all banks, most recently updated first.
func (s *BankService) List(ctx context.Context) ([]model.QuestionBank, error) {
	return s.banks.List(ctx)
}

// GetByID returns one bank.
func (s *BankService) GetByID(ctx context.Context, id uuid.UUID) (*model.QuestionBank, error) {
	return s.banks.GetByID(ctx, id)
}

// Create validates and stores a new bank.
func (s *BankService) Create(ctx context.Context, req *model.SaveQuestionBankRequest) (*model.QuestionBank, error) {
	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	bank := &model.QuestionBank{
		Name:       req.Name,
		Category:   req.Category,
		TimeLimit:  req.TimeLimit,
		AllowPause: *req.AllowPause,
		Rating:     *req.Rating,
		Questions:  questions,
	}
	if err := s.banks.Create(ctx, bank); err != nil {
		return nil, fmt.Errorf("create bank: %w", err)
	}

	s.log.Info().
		Str("bank_id", bank.ID.String()).
		Str("name", bank.Name).
		Int("questions", len(bank.Questions)).
		Msg("Question bank created")
	return bank, nil
}

// Update validates and replaces a bank's editable fields.
func (s *BankService) Update(ctx context.Context, id uuid.UUID, req *model.SaveQuestionBankRequest) (*model.QuestionBank, error) {
	bank, err := s.banks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	bank.Name = req.Name
	bank.Category = req.Category
	bank.TimeLimit = req.TimeLimit
	bank.AllowPause = *req.AllowPause
	bank.Rating = *req.Rating
	bank.Questions = questions

	if err := s.banks.Update(ctx, bank); err != nil {
		return nil, fmt.Errorf("update bank: %w", err)
	}

	s.log.Info().
		Str("bank_id", bank.ID.String()).
		Int("questions", len(bank.Questions)).
		Msg("Question bank updated")
	return bank, nil
}

// Delete removes a bank.
func (s *BankService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.banks.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("bank_id", id.String()).Msg("Question bank deleted")
	return nil
}

// buildQuestions converts request payloads into stored questions,
// assigning fresh identifiers and enforcing the answer-shape invariant.
func buildQuestions(payloads []model.QuestionPayload) ([]model.Question, error) {
	questions := make([]model.Question, len(payloads))
	for i, p := range payloads {
		qtype := model.QuestionType(p.Type)

		switch qtype {
		case model.QuestionTypeMultiple:
			if p.CorrectAnswer.Kind != model.AnswerMultiple || len(p.CorrectAnswer.Values) == 0 {
				return nil, fmt.Errorf("question %d: %w", i+1, ErrAnswerShape)
			}
		default:
			if p.CorrectAnswer.Kind != model.AnswerSingle || p.CorrectAnswer.Value == "" {
				return nil, fmt.Errorf("question %d: %w", i+1, ErrAnswerShape)
			}
		}

		options := p.Options
		if qtype == model.QuestionTypeJudge {
			options = nil
		}

		questions[i] = model.Question{
			ID:            uuid.NewString(),
			Type:          qtype,
			Text:          p.Text,
			Options:       options,
			CorrectAnswer: p.CorrectAnswer,
			Explanation:   p.Explanation,
		}
	}
	return questions, nil
}
