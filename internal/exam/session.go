package exam

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tikulab/tiku-backend/internal/model"
)

// State is the lifecycle state of a session.
type State string

const (
	StateActive    State = "ACTIVE"
	StatePaused    State = "PAUSED"
	StateSubmitted State = "SUBMITTED"
)

// Domain errors surfaced by session operations.
var (
	ErrSessionSubmitted = errors.New("session already submitted")
	ErrQuestionNotFound = errors.New("question not in session")
	ErrIndexOutOfRange  = errors.New("question index out of range")
	ErrNoQuestions      = errors.New("question set is empty")
)

// EventType identifies a session event pushed to stream subscribers.
type EventType string

const (
	EventTick      EventType = "tick"
	EventPaused    EventType = "paused"
	EventResumed   EventType = "resumed"
	EventSubmitted EventType = "submitted"
)

// Event is a session lifecycle notification.
type Event struct {
	Type          EventType `json:"event"`
	TimeRemaining int       `json:"time_remaining"`
	HistoryID     uuid.UUID `json:"history_id,omitempty"`
}

// Config describes the question set and exam parameters a session runs on.
type Config struct {
	Source       model.HistorySource
	SourceID     uuid.UUID  // bank or book id; the session key
	BankID       *uuid.UUID // recorded on history; nil for practice
	BankName     string
	Category     string
	Rating       int
	TimeLimit    time.Duration
	PauseAllowed bool
	Questions    []model.Question
	// Book is the practice source for wrong-answer sessions, nil otherwise.
	Book *model.WrongAnswerBook
}

// Session drives one timed attempt at a shuffled question set from start
// to submission. All state is owned by the session and guarded by its
// mutex; the per-second timer is the only autonomous transition and is
// stopped on every move away from Active.
type Session struct {
	ID        uuid.UUID
	StartedAt time.Time

	cfg Config

	mu        sync.Mutex
	state     State
	questions []model.Question
	answers   map[string]model.Answer
	remaining int // seconds
	index     int
	historyID uuid.UUID

	stopTick chan struct{}
	subs     map[chan Event]struct{}

	recorder   *Recorder
	reconciler *Reconciler
	snaps      SnapshotStore // nil disables snapshot persistence

	onSubmitted func(id uuid.UUID)
	log         zerolog.Logger
}

// newSession shuffles (or restores) the question set, initializes state
// and starts the countdown. Sessions are created through a Manager.
func newSession(
	cfg Config,
	snap *Snapshot,
	recorder *Recorder,
	reconciler *Reconciler,
	snaps SnapshotStore,
	onSubmitted func(id uuid.UUID),
	log zerolog.Logger,
) (*Session, error) {
	if len(cfg.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	s := &Session{
		ID:          uuid.New(),
		StartedAt:   time.Now(),
		cfg:         cfg,
		state:       StateActive,
		answers:     make(map[string]model.Answer),
		remaining:   int(cfg.TimeLimit.Seconds()),
		recorder:    recorder,
		reconciler:  reconciler,
		snaps:       snaps,
		onSubmitted: onSubmitted,
		subs:        make(map[chan Event]struct{}),
	}
	s.log = log.With().
		Str("component", "session").
		Str("session_id", s.ID.String()).
		Str("source", string(cfg.Source)).
		Logger()

	if snap != nil && snapshotUsable(snap, len(cfg.Questions)) {
		// Resume the interrupted attempt: same permutation, same answers.
		s.questions = snap.Questions
		if len(s.questions) == 0 {
			s.questions = shuffleQuestions(cfg.Questions)
		}
		for id, ans := range snap.Answers {
			s.answers[id] = ans
		}
		s.remaining = snap.TimeRemaining
		s.index = snap.CurrentIndex
		s.log.Info().
			Int("answers", len(s.answers)).
			Int("time_remaining", s.remaining).
			Msg("Session restored from snapshot")
	} else {
		s.questions = shuffleQuestions(cfg.Questions)
	}

	s.mu.Lock()
	s.startTimerLocked()
	s.mu.Unlock()

	s.log.Info().
		Int("questions", len(s.questions)).
		Dur("time_limit", cfg.TimeLimit).
		Bool("pause_allowed", cfg.PauseAllowed).
		Msg("Session started")
	return s, nil
}

// shuffleQuestions copies and permutes the question set, then reassigns
// IDs to positional indexes so in-session answer keys are decoupled from
// the bank's stored identifiers.
func shuffleQuestions(qs []model.Question) []model.Question {
	out := make([]model.Question, len(qs))
	copy(out, qs)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	for i := range out {
		out[i].ID = strconv.Itoa(i)
	}
	return out
}

// snapshotUsable rejects snapshots that no longer match the source
// question set, e.g. after the bank was edited.
func snapshotUsable(snap *Snapshot, questionCount int) bool {
	if snap.TimeRemaining <= 0 {
		return false
	}
	if len(snap.Questions) > 0 && len(snap.Questions) != questionCount {
		return false
	}
	if snap.CurrentIndex < 0 || snap.CurrentIndex >= questionCount {
		return false
	}
	return true
}

// ─── Timer ──────────────────────────────────────────────────────────

func (s *Session) startTimerLocked() {
	if s.stopTick != nil {
		return
	}
	stop := make(chan struct{})
	s.stopTick = stop
	go s.runTimer(stop)
}

func (s *Session) stopTimerLocked() {
	if s.stopTick != nil {
		close(s.stopTick)
		s.stopTick = nil
	}
}

func (s *Session) runTimer(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if done := s.tick(); done {
				return
			}
		}
	}
}

// tick decrements the remaining time by one second and auto-submits at
// zero. Returns true once the timer goroutine should exit.
func (s *Session) tick() bool {
	s.mu.Lock()

	if s.state != StateActive {
		s.mu.Unlock()
		return true
	}

	s.remaining--
	if s.remaining > 0 {
		snap := s.snapshotLocked()
		s.publishLocked(Event{Type: EventTick, TimeRemaining: s.remaining})
		s.mu.Unlock()
		s.persistSnapshot(snap)
		return false
	}

	s.remaining = 0
	s.publishLocked(Event{Type: EventTick, TimeRemaining: 0})
	s.log.Info().Msg("Time expired, auto-submitting")
	if _, err := s.submitLocked(context.Background()); err != nil {
		// Auto-submit failed on a storage write. The session stays
		// recoverable so a manual submit can retry.
		s.log.Error().Err(err).Msg("Automatic submission failed")
	}
	s.mu.Unlock()
	return true
}

// ─── Operations ─────────────────────────────────────────────────────

// RecordAnswer stores or overwrites the answer for a question. Option
// membership is not validated. Allowed while Active or Paused; while
// Paused the change is held back from the snapshot store until resume.
func (s *Session) RecordAnswer(questionID string, ans model.Answer) error {
	s.mu.Lock()

	if s.state == StateSubmitted {
		s.mu.Unlock()
		return ErrSessionSubmitted
	}
	if !s.hasQuestionLocked(questionID) {
		s.mu.Unlock()
		return ErrQuestionNotFound
	}

	s.answers[questionID] = ans
	var snap *Snapshot
	if s.state == StateActive {
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	s.persistSnapshot(snap)
	return nil
}

// Navigate moves the current position to any valid index; traversal is
// free-form, no answered-first requirement.
func (s *Session) Navigate(index int) error {
	s.mu.Lock()

	if s.state == StateSubmitted {
		s.mu.Unlock()
		return ErrSessionSubmitted
	}
	if index < 0 || index >= len(s.questions) {
		s.mu.Unlock()
		return ErrIndexOutOfRange
	}

	s.index = index
	var snap *Snapshot
	if s.state == StateActive {
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	s.persistSnapshot(snap)
	return nil
}

// TogglePause flips Active and Paused. A no-op when the source does not
// allow pausing (practice sessions never do) or after submission. While
// Paused the timer does not run and snapshot writes are suspended.
func (s *Session) TogglePause() State {
	s.mu.Lock()

	if !s.cfg.PauseAllowed || s.cfg.Source != model.SourceQuestionBank {
		st := s.state
		s.mu.Unlock()
		return st
	}

	var snap *Snapshot
	switch s.state {
	case StateActive:
		s.stopTimerLocked()
		s.state = StatePaused
		s.publishLocked(Event{Type: EventPaused, TimeRemaining: s.remaining})
		s.log.Info().Int("time_remaining", s.remaining).Msg("Session paused")
	case StatePaused:
		s.state = StateActive
		snap = s.snapshotLocked() // flush answers made while paused
		s.startTimerLocked()
		s.publishLocked(Event{Type: EventResumed, TimeRemaining: s.remaining})
		s.log.Info().Int("time_remaining", s.remaining).Msg("Session resumed")
	}
	st := s.state
	s.mu.Unlock()

	s.persistSnapshot(snap)
	return st
}

// Submit grades the session and persists the outcome. Idempotent: a
// second call (or the race between the final tick and a manual submit)
// returns the already-recorded history ID without writing again.
func (s *Session) Submit(ctx context.Context) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitLocked(ctx)
}

// submitLocked runs the submission sequence: grade, record history,
// reconcile wrong answers, clear snapshot, transition to Submitted.
//
// The history insert is the commit point. If it fails, the session rolls
// back to its previous state so the user can retry; nothing was written.
// Failures after it (reconcile, snapshot clear) are logged but do not
// fail the submission, since re-running would duplicate the history
// record that must exist exactly once.
func (s *Session) submitLocked(ctx context.Context) (uuid.UUID, error) {
	if s.state == StateSubmitted {
		return s.historyID, nil
	}

	prev := s.state
	s.stopTimerLocked()
	timeUsed := time.Since(s.StartedAt)

	graded, correct := GradeAll(s.questions, s.answers)

	historyID, err := s.recorder.Record(ctx, s.cfg.Source, s.cfg.BankID, s.cfg.BankName, timeUsed, graded, correct)
	if err != nil {
		s.state = prev
		if prev == StateActive && s.remaining > 0 {
			s.startTimerLocked()
		}
		return uuid.Nil, err
	}

	if s.cfg.Source == model.SourceWrongAnswerBook {
		err = s.reconciler.ResolvePractice(ctx, s.cfg.Book, graded)
	} else {
		err = s.reconciler.RecordWrongAnswers(ctx, s.cfg.BankName, s.cfg.Category, s.cfg.Rating, graded)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("Wrong-answer reconciliation failed")
	}

	if s.snaps != nil && s.cfg.Source == model.SourceQuestionBank {
		if err := s.snaps.Clear(ctx, s.cfg.SourceID); err != nil {
			s.log.Warn().Err(err).Msg("Snapshot clear failed")
		}
	}

	s.state = StateSubmitted
	s.historyID = historyID
	s.publishLocked(Event{Type: EventSubmitted, TimeRemaining: s.remaining, HistoryID: historyID})
	s.closeSubsLocked()

	if s.onSubmitted != nil {
		go s.onSubmitted(s.ID)
	}

	s.log.Info().
		Str("history_id", historyID.String()).
		Int("correct", correct).
		Int("total", len(graded)).
		Msg("Session submitted")
	return historyID, nil
}

// Stop tears the session down without submitting: the timer halts and
// stream subscribers are released. In-progress state stays in the
// snapshot store so the attempt can be resumed later.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.closeSubsLocked()
}

// ─── State access ───────────────────────────────────────────────────

// View is an immutable copy of the session state for API responses.
type View struct {
	SessionID     uuid.UUID               `json:"session_id"`
	Source        model.HistorySource     `json:"source"`
	SourceID      uuid.UUID               `json:"source_id"`
	BankName      string                  `json:"bank_name"`
	State         State                   `json:"state"`
	TimeRemaining int                     `json:"time_remaining"`
	CurrentIndex  int                     `json:"current_index"`
	TotalCount    int                     `json:"total_count"`
	PauseAllowed  bool                    `json:"pause_allowed"`
	Answers       map[string]model.Answer `json:"answers"`
	Questions     []model.QuestionView    `json:"questions"`
	HistoryID     *uuid.UUID              `json:"history_id,omitempty"`
}

// View returns a snapshot of the session for clients. Questions are
// stripped of correct answers and explanations.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make(map[string]model.Answer, len(s.answers))
	for id, ans := range s.answers {
		answers[id] = ans
	}
	views := make([]model.QuestionView, len(s.questions))
	for i, q := range s.questions {
		views[i] = q.View()
	}

	v := View{
		SessionID:     s.ID,
		Source:        s.cfg.Source,
		SourceID:      s.cfg.SourceID,
		BankName:      s.cfg.BankName,
		State:         s.state,
		TimeRemaining: s.remaining,
		CurrentIndex:  s.index,
		TotalCount:    len(s.questions),
		PauseAllowed:  s.cfg.PauseAllowed && s.cfg.Source == model.SourceQuestionBank,
		Answers:       answers,
		Questions:     views,
	}
	if s.state == StateSubmitted {
		id := s.historyID
		v.HistoryID = &id
	}
	return v
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) hasQuestionLocked(id string) bool {
	for i := range s.questions {
		if s.questions[i].ID == id {
			return true
		}
	}
	return false
}

// ─── Snapshot persistence ───────────────────────────────────────────

// snapshotLocked copies the recoverable state for a store write. Nil
// when the source does not persist snapshots.
func (s *Session) snapshotLocked() *Snapshot {
	if s.snaps == nil || s.cfg.Source != model.SourceQuestionBank {
		return nil
	}

	answers := make(map[string]model.Answer, len(s.answers))
	for id, ans := range s.answers {
		answers[id] = ans
	}
	return &Snapshot{
		Answers:       answers,
		TimeRemaining: s.remaining,
		CurrentIndex:  s.index,
		Questions:     s.questions,
	}
}

// persistSnapshot writes a captured snapshot without holding the
// session mutex, so a slow store cannot stall answers or ticks. Best
// effort: a failed write is logged, never surfaced, because the live
// session remains the source of truth.
func (s *Session) persistSnapshot(snap *Snapshot) {
	if snap == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.snaps.Save(ctx, s.cfg.SourceID, snap); err != nil {
		s.log.Warn().Err(err).Msg("Snapshot save failed")
	}
}

// ─── Event stream ───────────────────────────────────────────────────

// Subscribe registers a listener for session events. The returned cancel
// function must be called when the listener goes away. The channel is
// closed on submission or teardown.
func (s *Session) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Event, 16)
	if s.subs == nil {
		// Already torn down; hand back a closed channel.
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.subs != nil {
			if _, ok := s.subs[ch]; ok {
				delete(s.subs, ch)
				close(ch)
			}
		}
	}
}

func (s *Session) publishLocked(ev Event) {
	for ch := range s.subs {
		select {
		case ch <- ev:
		default: // Slow subscriber, drop the event.
		}
	}
}

func (s *Session) closeSubsLocked() {
	for ch := range s.subs {
		close(ch)
	}
	s.subs = nil
}
