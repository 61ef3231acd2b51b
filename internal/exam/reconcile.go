package exam

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tikulab/tiku-backend/internal/model"
)

// Reconciler folds graded session results into the wrong-answer book
// collection. Bank sessions merge newly-wrong questions into the book
// matching the bank name; practice sessions overwrite their source book
// with the still-wrong subset and delete it once empty.
type Reconciler struct {
	books BookStore
	log   zerolog.Logger
}

// NewReconciler creates a Reconciler.
func NewReconciler(books BookStore, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		books: books,
		log:   log.With().Str("component", "reconciler").Logger(),
	}
}

// RecordWrongAnswers handles a question-bank submission. Wrong questions
// are merged into the existing book for bankName, deduplicated by
// question text with existing entries winning, or a new book is created
// when none exists. Correct-only submissions are a no-op.
func (r *Reconciler) RecordWrongAnswers(ctx context.Context, bankName, category string, rating int, graded []model.GradedQuestion) error {
	wrong := filterWrong(graded)
	if len(wrong) == 0 {
		return nil
	}

	book, err := r.books.FindByBankName(ctx, bankName)
	if err != nil {
		return fmt.Errorf("find book: %w", err)
	}

	if book == nil {
		book = &model.WrongAnswerBook{
			BankName:  bankName,
			Category:  category,
			Rating:    rating,
			Questions: wrong,
		}
		if err := r.books.Insert(ctx, book); err != nil {
			return fmt.Errorf("create book: %w", err)
		}
		r.log.Info().
			Str("bank_name", bankName).
			Int("questions", len(wrong)).
			Msg("Wrong-answer book created")
		return nil
	}

	merged := dedupeByText(append(append([]model.GradedQuestion{}, book.Questions...), wrong...))
	if err := r.books.UpdateQuestions(ctx, book.ID, merged, time.Now()); err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	r.log.Info().
		Str("bank_name", bankName).
		Int("added", len(merged)-len(book.Questions)).
		Int("total", len(merged)).
		Msg("Wrong-answer book merged")
	return nil
}

// ResolvePractice handles a wrong-answer-practice submission against the
// book the practice was started from. Questions answered correctly are
// dropped; an emptied book is deleted (mastery achieved).
func (r *Reconciler) ResolvePractice(ctx context.Context, book *model.WrongAnswerBook, graded []model.GradedQuestion) error {
	stillWrong := filterWrong(graded)

	if len(stillWrong) == 0 {
		if err := r.books.Delete(ctx, book.ID); err != nil {
			return fmt.Errorf("delete book: %w", err)
		}
		r.log.Info().
			Str("bank_name", book.BankName).
			Msg("Wrong-answer book mastered and deleted")
		return nil
	}

	if err := r.books.UpdateQuestions(ctx, book.ID, stillWrong, time.Now()); err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	r.log.Info().
		Str("bank_name", book.BankName).
		Int("remaining", len(stillWrong)).
		Msg("Wrong-answer book narrowed")
	return nil
}

func filterWrong(graded []model.GradedQuestion) []model.GradedQuestion {
	var wrong []model.GradedQuestion
	for _, gq := range graded {
		if !gq.IsCorrect {
			wrong = append(wrong, gq)
		}
	}
	return wrong
}

// dedupeByText keeps the first occurrence of each question text, so
// entries already in a book win over new ones with identical prompts.
func dedupeByText(questions []model.GradedQuestion) []model.GradedQuestion {
	seen := make(map[string]struct{}, len(questions))
	out := questions[:0]
	for _, q := range questions {
		if _, ok := seen[q.Text]; ok {
			continue
		}
		seen[q.Text] = struct{}{}
		out = append(out, q)
	}
	return out
}
