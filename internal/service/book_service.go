package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tikulab/tiku-backend/internal/model"
	"github.com/tikulab/tiku-backend/internal/repository"
)

// BookService handles wrong-answer book reads and explicit deletion.
// Merging and narrowing happen through the session engine's reconciler.
type BookService struct {
	books *repository.BookRepository
	log   zerolog.Logger
}

// NewBookService creates a new BookService.
func NewBookService(books *repository.BookRepository, log zerolog.Logger) *BookService {
	return &BookService{
		books: books,
		log:   log.With().Str("component", "book_service").Logger(),
	}
}

// List returns all books, most recently updated first.
func (s *BookService) List(ctx context.Context) ([]model.WrongAnswerBook, error) {
	return s.books.List(ctx)
}

// GetByID returns one book.
func (s *BookService) GetByID(ctx context.Context, id uuid.UUID) (*model.WrongAnswerBook, error) {
	return s.books.GetByID(ctx, id)
}

// Delete removes a book, abandoning its unmastered questions.
func (s *BookService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.books.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("book_id", id.String()).Msg("Wrong-answer book deleted")
	return nil
}
