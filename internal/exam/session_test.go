package exam_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tikulab/tiku-backend/internal/exam"
	"github.com/tikulab/tiku-backend/internal/model"
)

// ─── In-memory fakes for the store interfaces ───────────────────────

type fakeHistory struct {
	mu       sync.Mutex
	records  []model.ExamHistory
	failNext bool
}

func (f *fakeHistory) Insert(_ context.Context, rec *model.ExamHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return errors.New("history store down")
	}
	rec.ID = uuid.New()
	rec.CreatedAt = time.Now()
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeHistory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func (f *fakeHistory) last() model.ExamHistory {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[len(f.records)-1]
}

type fakeBooks struct {
	mu    sync.Mutex
	books map[string]*model.WrongAnswerBook // by bank name
}

func newFakeBooks() *fakeBooks {
	return &fakeBooks{books: make(map[string]*model.WrongAnswerBook)}
}

func (f *fakeBooks) FindByBankName(_ context.Context, bankName string) (*model.WrongAnswerBook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[bankName]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBooks) Insert(_ context.Context, book *model.WrongAnswerBook) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	book.ID = uuid.New()
	book.CreatedAt = time.Now()
	book.UpdatedAt = book.CreatedAt
	cp := *book
	f.books[book.BankName] = &cp
	return nil
}

func (f *fakeBooks) UpdateQuestions(_ context.Context, id uuid.UUID, qs []model.GradedQuestion, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.books {
		if b.ID == id {
			b.Questions = qs
			b.UpdatedAt = updatedAt
			return nil
		}
	}
	return errors.New("book not found")
}

func (f *fakeBooks) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, b := range f.books {
		if b.ID == id {
			delete(f.books, name)
			return nil
		}
	}
	return errors.New("book not found")
}

func (f *fakeBooks) get(bankName string) *model.WrongAnswerBook {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.books[bankName]
}

type fakeSnaps struct {
	mu    sync.Mutex
	snaps map[uuid.UUID]*exam.Snapshot
}

func newFakeSnaps() *fakeSnaps {
	return &fakeSnaps{snaps: make(map[uuid.UUID]*exam.Snapshot)}
}

func (f *fakeSnaps) Load(_ context.Context, bankID uuid.UUID) (*exam.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snaps[bankID], nil
}

func (f *fakeSnaps) Save(_ context.Context, bankID uuid.UUID, snap *exam.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snaps[bankID] = snap
	return nil
}

func (f *fakeSnaps) Clear(_ context.Context, bankID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.snaps, bankID)
	return nil
}

func (f *fakeSnaps) get(bankID uuid.UUID) *exam.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snaps[bankID]
}

// ─── Fixtures ───────────────────────────────────────────────────────

type env struct {
	history *fakeHistory
	books   *fakeBooks
	snaps   *fakeSnaps
	manager *exam.Manager
}

func newEnv() *env {
	history := &fakeHistory{}
	books := newFakeBooks()
	snaps := newFakeSnaps()
	return &env{
		history: history,
		books:   books,
		snaps:   snaps,
		manager: exam.NewManager(history, books, snaps, zerolog.Nop()),
	}
}

func testBank(questionCount int) *model.QuestionBank {
	qs := make([]model.Question, questionCount)
	for i := range qs {
		qs[i] = model.Question{
			ID:            uuid.NewString(),
			Type:          model.QuestionTypeSingle,
			Text:          "题目" + string(rune('A'+i)),
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: model.SingleAnswer("A"),
		}
	}
	return &model.QuestionBank{
		ID:         uuid.New(),
		Name:       "测试题库",
		Category:   "测试",
		TimeLimit:  30,
		AllowPause: true,
		Rating:     3,
		Questions:  qs,
	}
}

// answerAll records the same answer for every question in the session.
func answerAll(t *testing.T, s *exam.Session, ans model.Answer) {
	t.Helper()
	for _, q := range s.View().Questions {
		if err := s.RecordAnswer(q.ID, ans); err != nil {
			t.Fatalf("RecordAnswer(%q): %v", q.ID, err)
		}
	}
}

// ─── Tests ──────────────────────────────────────────────────────────

func TestStartBankAssignsPositionalIDs(t *testing.T) {
	e := newEnv()
	s, err := e.manager.StartBank(context.Background(), testBank(5))
	if err != nil {
		t.Fatalf("StartBank: %v", err)
	}
	defer s.Stop()

	v := s.View()
	if v.State != exam.StateActive {
		t.Errorf("state = %s, want ACTIVE", v.State)
	}
	if v.TimeRemaining != 30*60 {
		t.Errorf("time remaining = %d, want %d", v.TimeRemaining, 30*60)
	}
	if v.TotalCount != 5 {
		t.Fatalf("total = %d, want 5", v.TotalCount)
	}
	seen := make(map[string]bool)
	for i, q := range v.Questions {
		if q.ID != intToStr(i) {
			t.Errorf("question %d has id %q, want positional", i, q.ID)
		}
		if seen[q.Text] {
			t.Errorf("question text %q appears twice", q.Text)
		}
		seen[q.Text] = true
	}
}

func intToStr(i int) string {
	return string(rune('0' + i))
}

func TestStartBankEmptyQuestions(t *testing.T) {
	e := newEnv()
	bank := testBank(0)
	if _, err := e.manager.StartBank(context.Background(), bank); !errors.Is(err, exam.ErrNoQuestions) {
		t.Fatalf("err = %v, want ErrNoQuestions", err)
	}
}

func TestRecordAnswerPersistsSnapshot(t *testing.T) {
	e := newEnv()
	bank := testBank(3)
	s, err := e.manager.StartBank(context.Background(), bank)
	if err != nil {
		t.Fatalf("StartBank: %v", err)
	}
	defer s.Stop()

	if err := s.RecordAnswer("1", model.SingleAnswer("B")); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}

	snap := e.snaps.get(bank.ID)
	if snap == nil {
		t.Fatal("no snapshot written after answering")
	}
	if got := snap.Answers["1"]; got.Value != "B" {
		t.Errorf("snapshot answer = %+v, want B", got)
	}
	if len(snap.Questions) != 3 {
		t.Errorf("snapshot question count = %d, want 3", len(snap.Questions))
	}

	if err := s.RecordAnswer("no-such-id", model.SingleAnswer("A")); !errors.Is(err, exam.ErrQuestionNotFound) {
		t.Errorf("unknown question err = %v, want ErrQuestionNotFound", err)
	}
}

func TestNavigate(t *testing.T) {
	e := newEnv()
	s, err := e.manager.StartBank(context.Background(), testBank(3))
	if err != nil {
		t.Fatalf("StartBank: %v", err)
	}
	defer s.Stop()

	if err := s.Navigate(2); err != nil {
		t.Fatalf("Navigate(2): %v", err)
	}
	if got := s.View().CurrentIndex; got != 2 {
		t.Errorf("index = %d, want 2", got)
	}
	if err := s.Navigate(3); !errors.Is(err, exam.ErrIndexOutOfRange) {
		t.Errorf("Navigate(3) err = %v, want ErrIndexOutOfRange", err)
	}
	if err := s.Navigate(-1); !errors.Is(err, exam.ErrIndexOutOfRange) {
		t.Errorf("Navigate(-1) err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestSubmitIdempotent(t *testing.T) {
	e := newEnv()
	s, err := e.manager.StartBank(context.Background(), testBank(2))
	if err != nil {
		t.Fatalf("StartBank: %v", err)
	}

	answerAll(t, s, model.SingleAnswer("A"))

	first, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	second, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if first != second {
		t.Errorf("history ids differ: %s vs %s", first, second)
	}
	if e.history.count() != 1 {
		t.Errorf("history records = %d, want 1", e.history.count())
	}

	if err := s.RecordAnswer("0", model.SingleAnswer("B")); !errors.Is(err, exam.ErrSessionSubmitted) {
		t.Errorf("RecordAnswer after submit err = %v, want ErrSessionSubmitted", err)
	}
	if err := s.Navigate(0); !errors.Is(err, exam.ErrSessionSubmitted) {
		t.Errorf("Navigate after submit err = %v, want ErrSessionSubmitted", err)
	}
}

func TestSubmitRollsBackOnHistoryFailure(t *testing.T) {
	e := newEnv()
	s, err := e.manager.StartBank(context.Background(), testBank(2))
	if err != nil {
		t.Fatalf("StartBank: %v", err)
	}
	defer s.Stop()

	e.history.failNext = true
	if _, err := s.Submit(context.Background()); err == nil {
		t.Fatal("Submit should fail when the history insert fails")
	}
	if got := s.State(); got != exam.StateActive {
		t.Fatalf("state after failed submit = %s, want ACTIVE", got)
	}

	// The retry succeeds and writes exactly one record.
	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("retry Submit: %v", err)
	}
	if e.history.count() != 1 {
		t.Errorf("history records = %d, want 1", e.history.count())
	}
}

func TestSubmitGradesAndScores(t *testing.T) {
	e := newEnv()
	s, err := e.manager.StartBank(context.Background(), testBank(4))
	if err != nil {
		t.Fatalf("StartBank: %v", err)
	}

	// Three right, one wrong.
	v := s.View()
	for i, q := range v.Questions {
		ans := model.SingleAnswer("A")
		if i == 3 {
			ans = model.SingleAnswer("B")
		}
		if err := s.RecordAnswer(q.ID, ans); err != nil {
			t.Fatalf("RecordAnswer: %v", err)
		}
	}

	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	rec := e.history.last()
	if rec.CorrectCount != 3 || rec.TotalCount != 4 {
		t.Errorf("counts = %d/%d, want 3/4", rec.CorrectCount, rec.TotalCount)
	}
	if rec.TotalScore != 75 {
		t.Errorf("score = %d, want 75", rec.TotalScore)
	}
	if rec.Source != model.SourceQuestionBank {
		t.Errorf("source = %s, want question_bank", rec.Source)
	}
	if rec.BankName != "测试题库" {
		t.Errorf("bank name = %q", rec.BankName)
	}
}

func TestSubmitRecordsWrongAnswersAndClearsSnapshot(t *testing.T) {
	e := newEnv()
	bank := testBank(3)
	s, err := e.manager.StartBank(context.Background(), bank)
	if err != nil {
		t.Fatalf("StartBank: %v", err)
	}

	answerAll(t, s, model.SingleAnswer("B")) // everything wrong

	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	book := e.books.get(bank.Name)
	if book == nil {
		t.Fatal("no wrong-answer book created")
	}
	if len(book.Questions) != 3 {
		t.Errorf("book holds %d questions, want 3", len(book.Questions))
	}
	if book.Category != bank.Category || book.Rating != bank.Rating {
		t.Errorf("book metadata = %q/%d, want %q/%d", book.Category, book.Rating, bank.Category, bank.Rating)
	}
	if e.snaps.get(bank.ID) != nil {
		t.Error("snapshot should be cleared on submission")
	}
}

func TestSubmitAllCorrectLeavesNoBook(t *testing.T) {
	e := newEnv()
	bank := testBank(2)
	s, err := e.manager.StartBank(context.Background(), bank)
	if err != nil {
		t.Fatalf("StartBank: %v", err)
	}

	answerAll(t, s, model.SingleAnswer("A"))
	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if e.books.get(bank.Name) != nil {
		t.Error("correct-only submission must not create a book")
	}
}

func TestWrongBookMergeKeepsExistingEntries(t *testing.T) {
	e := newEnv()
	bank := testBank(2)

	// First attempt gets both wrong.
	s1, err := e.manager.StartBank(context.Background(), bank)
	if err != nil {
		t.Fatalf("StartBank: %v", err)
	}
	answerAll(t, s1, model.SingleAnswer("B"))
	if _, err := s1.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Second attempt also gets both wrong with a different answer. The
	// book must keep the first attempt's entries for identical prompts.
	s2, err := e.manager.StartBank(context.Background(), bank)
	if err != nil {
		t.Fatalf("StartBank: %v", err)
	}
	answerAll(t, s2, model.SingleAnswer("C"))
	if _, err := s2.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	book := e.books.get(bank.Name)
	if book == nil {
		t.Fatal("book missing")
	}
	if len(book.Questions) != 2 {
		t.Fatalf("book holds %d questions, want 2 (deduplicated by text)", len(book.Questions))
	}
	for _, q := range book.Questions {
		if q.UserAnswer.Value != "B" {
			t.Errorf("existing entry overwritten: user answer = %q, want B", q.UserAnswer.Value)
		}
	}
}

func TestSnapshotRestore(t *testing.T) {
	e := newEnv()
	bank := testBank(3)

	// An interrupted attempt left a snapshot behind.
	shuffled := make([]model.Question, 3)
	copy(shuffled, bank.Questions)
	for i := range shuffled {
		shuffled[i].ID = intToStr(i)
	}
	e.snaps.snaps[bank.ID] = &exam.Snapshot{
		Answers:       map[string]model.Answer{"1": model.SingleAnswer("C")},
		TimeRemaining: 444,
		CurrentIndex:  2,
		Questions:     shuffled,
	}

	s, err := e.manager.StartBank(context.Background(), bank)
	if err != nil {
		t.Fatalf("StartBank: %v", err)
	}
	defer s.Stop()

	v := s.View()
	if v.TimeRemaining < 440 || v.TimeRemaining > 444 {
		t.Errorf("time remaining = %d, want about 444", v.TimeRemaining)
	}
	if v.CurrentIndex != 2 {
		t.Errorf("index = %d, want 2", v.CurrentIndex)
	}
	if got := v.Answers["1"]; got.Value != "C" {
		t.Errorf("restored answer = %+v, want C", got)
	}
	for i, q := range v.Questions {
		if q.Text != shuffled[i].Text {
			t.Errorf("question order changed at %d: %q vs %q", i, q.Text, shuffled[i].Text)
		}
	}
}

func TestStaleSnapshotIgnored(t *testing.T) {
	e := newEnv()
	bank := testBank(3)

	// Snapshot taken before the bank shrank to 3 questions.
	e.snaps.snaps[bank.ID] = &exam.Snapshot{
		Answers:       map[string]model.Answer{"4": model.SingleAnswer("A")},
		TimeRemaining: 100,
		CurrentIndex:  4,
		Questions:     make([]model.Question, 5),
	}

	s, err := e.manager.StartBank(context.Background(), bank)
	if err != nil {
		t.Fatalf("StartBank: %v", err)
	}
	defer s.Stop()

	v := s.View()
	if len(v.Answers) != 0 {
		t.Error("stale snapshot answers should be discarded")
	}
	if v.TimeRemaining != 30*60 {
		t.Errorf("time remaining = %d, want full limit", v.TimeRemaining)
	}
}

func TestTogglePause(t *testing.T) {
	e := newEnv()
	bank := testBank(2)
	s, err := e.manager.StartBank(context.Background(), bank)
	if err != nil {
		t.Fatalf("StartBank: %v", err)
	}
	defer s.Stop()

	if got := s.TogglePause(); got != exam.StatePaused {
		t.Fatalf("state after pause = %s, want PAUSED", got)
	}

	// Answers are accepted while paused but held out of the snapshot.
	before := e.snaps.get(bank.ID)
	if err := s.RecordAnswer("0", model.SingleAnswer("D")); err != nil {
		t.Fatalf("RecordAnswer while paused: %v", err)
	}
	after := e.snaps.get(bank.ID)
	if before != after {
		t.Error("snapshot written during pause")
	}

	if got := s.TogglePause(); got != exam.StateActive {
		t.Fatalf("state after resume = %s, want ACTIVE", got)
	}
	snap := e.snaps.get(bank.ID)
	if snap == nil || snap.Answers["0"].Value != "D" {
		t.Error("resume should flush answers made while paused")
	}
}

func TestPauseDisallowed(t *testing.T) {
	e := newEnv()
	bank := testBank(2)
	bank.AllowPause = false
	s, err := e.manager.StartBank(context.Background(), bank)
	if err != nil {
		t.Fatalf("StartBank: %v", err)
	}
	defer s.Stop()

	if got := s.TogglePause(); got != exam.StateActive {
		t.Errorf("pause on non-pausable bank changed state to %s", got)
	}
}

func TestPracticeMasteryDeletesBook(t *testing.T) {
	e := newEnv()
	book := &model.WrongAnswerBook{
		BankName: "测试题库",
		Category: "测试",
		Rating:   3,
		Questions: []model.GradedQuestion{
			{
				Question: model.Question{
					ID: "x", Type: model.QuestionTypeSingle, Text: "q",
					Options: []string{"A", "B"}, CorrectAnswer: model.SingleAnswer("A"),
				},
				UserAnswer: model.SingleAnswer("B"),
			},
		},
	}
	if err := e.books.Insert(context.Background(), book); err != nil {
		t.Fatal(err)
	}

	s, err := e.manager.StartPractice(context.Background(), book, 30*time.Minute)
	if err != nil {
		t.Fatalf("StartPractice: %v", err)
	}

	// Practice sessions cannot pause.
	if got := s.TogglePause(); got != exam.StateActive {
		t.Errorf("practice pause changed state to %s", got)
	}

	answerAll(t, s, model.SingleAnswer("A"))
	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if e.books.get(book.BankName) != nil {
		t.Error("mastered book should be deleted")
	}
	rec := e.history.last()
	if rec.Source != model.SourceWrongAnswerBook {
		t.Errorf("source = %s, want wrong_answer_book", rec.Source)
	}
	if rec.BankName != "测试题库"+model.PracticeNameSuffix {
		t.Errorf("bank name = %q, want practice suffix", rec.BankName)
	}
	if rec.BankID != nil {
		t.Error("practice history must not reference a bank id")
	}
}

func TestPracticeNarrowsBook(t *testing.T) {
	e := newEnv()
	book := &model.WrongAnswerBook{
		BankName: "缩小题库",
		Questions: []model.GradedQuestion{
			{
				Question: model.Question{
					ID: "a", Type: model.QuestionTypeSingle, Text: "qa",
					Options: []string{"A", "B"}, CorrectAnswer: model.SingleAnswer("A"),
				},
				UserAnswer: model.SingleAnswer("B"),
			},
			{
				Question: model.Question{
					ID: "b", Type: model.QuestionTypeSingle, Text: "qb",
					Options: []string{"A", "B"}, CorrectAnswer: model.SingleAnswer("B"),
				},
				UserAnswer: model.SingleAnswer("A"),
			},
		},
	}
	if err := e.books.Insert(context.Background(), book); err != nil {
		t.Fatal(err)
	}

	s, err := e.manager.StartPractice(context.Background(), book, 30*time.Minute)
	if err != nil {
		t.Fatalf("StartPractice: %v", err)
	}

	// Answer "A" everywhere: qa becomes right, qb stays wrong.
	answerAll(t, s, model.SingleAnswer("A"))
	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	got := e.books.get(book.BankName)
	if got == nil {
		t.Fatal("book should survive with remaining questions")
	}
	if len(got.Questions) != 1 || got.Questions[0].Text != "qb" {
		t.Errorf("remaining questions = %+v, want only qb", got.Questions)
	}
}

func TestAutoSubmitOnExpiry(t *testing.T) {
	e := newEnv()
	book := &model.WrongAnswerBook{
		BankName: "到时题库",
		Questions: []model.GradedQuestion{
			{
				Question: model.Question{
					ID: "a", Type: model.QuestionTypeSingle, Text: "q",
					Options: []string{"A", "B"}, CorrectAnswer: model.SingleAnswer("A"),
				},
				UserAnswer: model.SingleAnswer("B"),
			},
		},
	}
	if err := e.books.Insert(context.Background(), book); err != nil {
		t.Fatal(err)
	}

	s, err := e.manager.StartPractice(context.Background(), book, time.Second)
	if err != nil {
		t.Fatalf("StartPractice: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for s.State() != exam.StateSubmitted {
		select {
		case <-deadline:
			t.Fatal("session never auto-submitted after expiry")
		case <-time.After(50 * time.Millisecond):
		}
	}
	if e.history.count() != 1 {
		t.Errorf("history records = %d, want 1", e.history.count())
	}
}

func TestManagerReplacesSessionPerSource(t *testing.T) {
	e := newEnv()
	bank := testBank(2)

	s1, err := e.manager.StartBank(context.Background(), bank)
	if err != nil {
		t.Fatalf("StartBank: %v", err)
	}
	s2, err := e.manager.StartBank(context.Background(), bank)
	if err != nil {
		t.Fatalf("StartBank: %v", err)
	}
	defer s2.Stop()

	if _, ok := e.manager.Get(s1.ID); ok {
		t.Error("replaced session still resolvable")
	}
	if _, ok := e.manager.Get(s2.ID); !ok {
		t.Error("live session not resolvable")
	}
}

func TestSubmittedSessionStaysResolvable(t *testing.T) {
	e := newEnv()
	bank := testBank(2)

	s, err := e.manager.StartBank(context.Background(), bank)
	if err != nil {
		t.Fatalf("StartBank: %v", err)
	}
	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	got, ok := e.manager.Get(s.ID)
	if !ok {
		t.Fatal("submitted session should stay resolvable by id")
	}
	v := got.View()
	if v.State != exam.StateSubmitted {
		t.Errorf("state = %s, want SUBMITTED", v.State)
	}
	if v.HistoryID == nil {
		t.Error("submitted view should expose the history id")
	}
}

func TestSubscribeReceivesSubmitted(t *testing.T) {
	e := newEnv()
	s, err := e.manager.StartBank(context.Background(), testBank(2))
	if err != nil {
		t.Fatalf("StartBank: %v", err)
	}

	ch, cancel := s.Subscribe()
	defer cancel()

	historyID, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	var submitted bool
	for ev := range ch {
		if ev.Type == exam.EventSubmitted {
			submitted = true
			if ev.HistoryID != historyID {
				t.Errorf("event history id = %s, want %s", ev.HistoryID, historyID)
			}
		}
	}
	if !submitted {
		t.Error("no submitted event before channel close")
	}
}

// slowSnaps blocks every Save until released, standing in for a
// stalled Redis connection.
type slowSnaps struct {
	entered chan struct{}
	release chan struct{}
}

func (f *slowSnaps) Load(_ context.Context, _ uuid.UUID) (*exam.Snapshot, error) { return nil, nil }

func (f *slowSnaps) Save(_ context.Context, _ uuid.UUID, _ *exam.Snapshot) error {
	select {
	case f.entered <- struct{}{}:
	default:
	}
	<-f.release
	return nil
}

func (f *slowSnaps) Clear(_ context.Context, _ uuid.UUID) error { return nil }

func TestSlowSnapshotStoreDoesNotBlockReads(t *testing.T) {
	snaps := &slowSnaps{entered: make(chan struct{}, 1), release: make(chan struct{})}
	defer close(snaps.release)

	m := exam.NewManager(&fakeHistory{}, newFakeBooks(), snaps, zerolog.Nop())
	s, err := m.StartBank(context.Background(), testBank(3))
	if err != nil {
		t.Fatalf("StartBank: %v", err)
	}
	defer s.Stop()

	go func() {
		_ = s.RecordAnswer("0", model.SingleAnswer("A"))
	}()
	select {
	case <-snaps.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot write never started")
	}

	// The write is wedged in the store. Reads must still go through.
	done := make(chan struct{})
	go func() {
		v := s.View()
		if v.State != exam.StateActive {
			t.Errorf("state = %s, want ACTIVE", v.State)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("View blocked behind a slow snapshot write")
	}
}
