package exam

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tikulab/tiku-backend/internal/model"
)

// Manager owns the live sessions, at most one per source (bank or book)
// id. Starting a new session over an existing source replaces the old
// one: the single-user tool treats concurrent tabs as last-write-wins.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session // by session id
	bySource map[uuid.UUID]*Session // active session per bank/book id

	recorder   *Recorder
	reconciler *Reconciler
	snaps      SnapshotStore
	log        zerolog.Logger
}

// NewManager creates a Manager wired to the given stores.
func NewManager(history HistoryStore, books BookStore, snaps SnapshotStore, log zerolog.Logger) *Manager {
	return &Manager{
		sessions:   make(map[uuid.UUID]*Session),
		bySource:   make(map[uuid.UUID]*Session),
		recorder:   NewRecorder(history, log),
		reconciler: NewReconciler(books, log),
		snaps:      snaps,
		log:        log.With().Str("component", "session_manager").Logger(),
	}
}

// StartBank starts an exam session over a question bank. A usable
// snapshot for the bank restores the interrupted attempt instead of
// reshuffling.
func (m *Manager) StartBank(ctx context.Context, bank *model.QuestionBank) (*Session, error) {
	snap, err := m.snaps.Load(ctx, bank.ID)
	if err != nil {
		// A broken snapshot must not block starting; fall back to fresh.
		m.log.Warn().Err(err).Str("bank_id", bank.ID.String()).Msg("Snapshot load failed")
		snap = nil
	}

	cfg := Config{
		Source:       model.SourceQuestionBank,
		SourceID:     bank.ID,
		BankID:       &bank.ID,
		BankName:     bank.Name,
		Category:     bank.Category,
		Rating:       bank.Rating,
		TimeLimit:    time.Duration(bank.TimeLimit) * time.Minute,
		PauseAllowed: bank.AllowPause,
		Questions:    bank.Questions,
	}
	return m.start(cfg, snap)
}

// StartPractice starts a wrong-answer practice session over a book.
// Practice runs with a fixed time limit, no pausing and no snapshots.
func (m *Manager) StartPractice(_ context.Context, book *model.WrongAnswerBook, timeLimit time.Duration) (*Session, error) {
	cfg := Config{
		Source:       model.SourceWrongAnswerBook,
		SourceID:     book.ID,
		BankName:     book.BankName,
		Category:     book.Category,
		Rating:       book.Rating,
		TimeLimit:    timeLimit,
		PauseAllowed: false,
		Questions:    book.PracticeQuestions(),
		Book:         book,
	}
	return m.start(cfg, nil)
}

func (m *Manager) start(cfg Config, snap *Snapshot) (*Session, error) {
	snaps := m.snaps
	if cfg.Source != model.SourceQuestionBank {
		snaps = nil
	}

	s, err := newSession(cfg, snap, m.recorder, m.reconciler, snaps, m.release, m.log)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	m.mu.Lock()
	prev := m.bySource[cfg.SourceID]
	m.bySource[cfg.SourceID] = s
	m.sessions[s.ID] = s
	if prev != nil {
		delete(m.sessions, prev.ID)
	}
	m.mu.Unlock()

	// Stop the replaced session outside the manager lock.
	if prev != nil {
		prev.Stop()
		m.log.Info().
			Str("source_id", cfg.SourceID.String()).
			Str("replaced", prev.ID.String()).
			Msg("Replaced in-flight session")
	}
	return s, nil
}

// Get returns a live (or freshly submitted) session by id.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// release unbinds a submitted session from its source key so the next
// start reshuffles. The session itself stays resolvable by id until
// replaced, letting clients fetch the final state.
func (m *Manager) release(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for srcID, s := range m.bySource {
		if s.ID == id {
			delete(m.bySource, srcID)
			break
		}
	}
}

// Shutdown stops the timers of every live session. In-progress bank
// sessions keep their snapshots and can be resumed after a restart.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Stop()
	}
	m.log.Info().Int("sessions", len(sessions)).Msg("Session manager drained")
}
