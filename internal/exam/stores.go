package exam

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tikulab/tiku-backend/internal/model"
)

// HistoryStore persists completed-session records.
type HistoryStore interface {
	// Insert stores a new record and fills in its generated ID.
	Insert(ctx context.Context, rec *model.ExamHistory) error
}

// BookStore persists wrong-answer books.
type BookStore interface {
	// FindByBankName returns the book for a bank name, or nil when none exists.
	FindByBankName(ctx context.Context, bankName string) (*model.WrongAnswerBook, error)
	// Insert stores a new book and fills in its generated ID.
	Insert(ctx context.Context, book *model.WrongAnswerBook) error
	// UpdateQuestions replaces a book's question list and bumps its updated timestamp.
	UpdateQuestions(ctx context.Context, id uuid.UUID, questions []model.GradedQuestion, updatedAt time.Time) error
	// Delete removes a book entirely.
	Delete(ctx context.Context, id uuid.UUID) error
}

// Snapshot is the recoverable state of an in-progress session, keyed by
// the owning bank's identifier. It survives a client reload; it is
// cleared on submission. The shuffled question order rides along so a
// restored session keeps the permutation its answers were keyed under.
type Snapshot struct {
	Answers       map[string]model.Answer `json:"answers"`
	TimeRemaining int                     `json:"timeRemaining"`
	CurrentIndex  int                     `json:"currentIndex"`
	Questions     []model.Question        `json:"questions,omitempty"`
}

// SnapshotStore is the local recovery store for in-progress sessions.
type SnapshotStore interface {
	// Load returns the snapshot for a bank, or nil when none exists.
	Load(ctx context.Context, bankID uuid.UUID) (*Snapshot, error)
	// Save writes the snapshot for a bank (write-through, no TTL).
	Save(ctx context.Context, bankID uuid.UUID, snap *Snapshot) error
	// Clear removes the snapshot for a bank.
	Clear(ctx context.Context, bankID uuid.UUID) error
}
