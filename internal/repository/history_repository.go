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

// HistoryRepository handles exam history data access. Records are
// written once and never updated.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

// Insert stores a completed-session record and fills in its generated id.
func (r *HistoryRepository) Insert(ctx context.Context, rec *model.ExamHistory) error {
	questions, err := json.Marshal(rec.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_history
		   (bank_id, bank_name, exam_date, time_used, total_score, correct_count, total_count, source, questions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		rec.BankID, rec.BankName, rec.ExamDate, rec.TimeUsed, rec.TotalScore,
		rec.CorrectCount, rec.TotalCount, rec.Source, questions,
	).Scan(&rec.ID, &rec.CreatedAt)
}

// List retrieves all history records, most recent exam first.
func (r *HistoryRepository) List(ctx context.Context) ([]model.ExamHistory, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, bank_id, bank_name, exam_date, time_used, total_score, correct_count, total_count, source, questions, created_at
		 FROM exam_history
		 ORDER BY exam_date DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.ExamHistory
	for rows.Next() {
		rec, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// GetByID retrieves one record for the results view.
func (r *HistoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamHistory, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, bank_id, bank_name, exam_date, time_used, total_score, correct_count, total_count, source, questions, created_at
		 FROM exam_history WHERE id = $1`, id,
	)
	rec, err := scanHistory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// Delete removes one record.
func (r *HistoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM exam_history WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanHistory(row pgx.Row) (*model.ExamHistory, error) {
	var (
		rec model.ExamHistory
		raw []byte
	)
	if err := row.Scan(&rec.ID, &rec.BankID, &rec.BankName, &rec.ExamDate, &rec.TimeUsed,
		&rec.TotalScore, &rec.CorrectCount, &rec.TotalCount, &rec.Source, &raw, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &rec.Questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}
	return &rec, nil
}
