package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tikulab/tiku-backend/internal/model"
)

// BookRepository handles wrong-answer book data access.
type BookRepository struct {
	pool *pgxpool.Pool
}

// NewBookRepository creates a new BookRepository.
func NewBookRepository(pool *pgxpool.Pool) *BookRepository {
	return &BookRepository{pool: pool}
}

// List retrieves all books, most recently updated first.
func (r *BookRepository) List(ctx context.Context) ([]model.WrongAnswerBook, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, bank_name, category, rating, questions, created_at, updated_at
		 FROM wrong_answer_books
		 ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []model.WrongAnswerBook
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *book)
	}
	return books, rows.Err()
}

// GetByID retrieves a single book.
func (r *BookRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.WrongAnswerBook, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, bank_name, category, rating, questions, created_at, updated_at
		 FROM wrong_answer_books WHERE id = $1`, id,
	)
	book, err := scanBook(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return book, nil
}

// FindByBankName returns the book matching a bank name exactly, or nil
// when none exists. Bank name is the reconciler's merge key.
func (r *BookRepository) FindByBankName(ctx context.Context, bankName string) (*model.WrongAnswerBook, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, bank_name, category, rating, questions, created_at, updated_at
		 FROM wrong_answer_books WHERE bank_name = $1`, bankName,
	)
	book, err := scanBook(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return book, nil
}

// Insert stores a new book and fills in its generated id.
func (r *BookRepository) Insert(ctx context.Context, book *model.WrongAnswerBook) error {
	questions, err := json.Marshal(book.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO wrong_answer_books (bank_name, category, rating, questions)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		book.BankName, nullableText(book.Category), book.Rating, questions,
	).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
}

// UpdateQuestions replaces a book's question list.
func (r *BookRepository) UpdateQuestions(ctx context.Context, id uuid.UUID, qs []model.GradedQuestion, updatedAt time.Time) error {
	questions, err := json.Marshal(qs)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE wrong_answer_books SET questions = $2, updated_at = $3 WHERE id = $1`,
		id, questions, updatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a book.
func (r *BookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM wrong_answer_books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBook(row pgx.Row) (*model.WrongAnswerBook, error) {
	var (
		book     model.WrongAnswerBook
		category *string
		raw      []byte
	)
	if err := row.Scan(&book.ID, &book.BankName, &category, &book.Rating, &raw,
		&book.CreatedAt, &book.UpdatedAt); err != nil {
		return nil, err
	}
	if category != nil {
		book.Category = *category
	}
	if err := json.Unmarshal(raw, &book.Questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}
	return &book, nil
}
