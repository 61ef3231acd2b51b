package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tikulab/tiku-backend/internal/model"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// BankRepository handles question bank data access.
type BankRepository struct {
	pool *pgxpool.Pool
}

// NewBankRepository creates a new BankRepository.
func NewBankRepository(pool *pgxpool.Pool) *BankRepository {
	return &BankRepository{pool: pool}
}

// List retrieves all banks, most recently updated first.
func (r *BankRepository) List(ctx context.Context) ([]model.QuestionBank, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, category, time_limit, allow_pause, rating, questions, created_at, updated_at
		 FROM question_banks
		 ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var banks []model.QuestionBank
	for rows.Next() {
		bank, err := scanBank(rows)
		if err != nil {
			return nil, err
		}
		banks = append(banks, *bank)
	}
	return banks, rows.Err()
}

// GetByID retrieves a single bank.
func (r *BankRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.QuestionBank, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, category, time_limit, allow_pause, rating, questions, created_at, updated_at
		 FROM question_banks WHERE id = $1`, id,
	)
	bank, err := scanBank(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return bank, nil
}

// Create inserts a new bank and fills in its generated id and timestamps.
func (r *BankRepository) Create(ctx context.Context, bank *model.QuestionBank) error {
	questions, err := json.Marshal(bank.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO question_banks (name, category, time_limit, allow_pause, rating, questions)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		bank.Name, nullableText(bank.Category), bank.TimeLimit, bank.AllowPause, bank.Rating, questions,
	).Scan(&bank.ID, &bank.CreatedAt, &bank.UpdatedAt)
}

// Update replaces a bank's editable fields.
func (r *BankRepository) Update(ctx context.Context, bank *model.QuestionBank) error {
	questions, err := json.Marshal(bank.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE question_banks
		 SET name = $2, category = $3, time_limit = $4, allow_pause = $5, rating = $6,
		     questions = $7, updated_at = NOW()
		 WHERE id = $1`,
		bank.ID, bank.Name, nullableText(bank.Category), bank.TimeLimit, bank.AllowPause, bank.Rating, questions,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a bank.
func (r *BankRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM question_banks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBank(row pgx.Row) (*model.QuestionBank, error) {
	var (
		bank     model.QuestionBank
		category *string
		raw      []byte
	)
	if err := row.Scan(&bank.ID, &bank.Name, &category, &bank.TimeLimit, &bank.AllowPause,
		&bank.Rating, &raw, &bank.CreatedAt, &bank.UpdatedAt); err != nil {
		return nil, err
	}
	if category != nil {
		bank.Category = *category
	}
	if err := json.Unmarshal(raw, &bank.Questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}
	return &bank, nil
}

// nullableText maps an empty string to SQL NULL.
func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
