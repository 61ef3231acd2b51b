package exam_test

import (
	"testing"

	"github.com/tikulab/tiku-backend/internal/exam"
	"github.com/tikulab/tiku-backend/internal/model"
)

func TestGradeSingle(t *testing.T) {
	q := model.Question{
		ID:            "0",
		Type:          model.QuestionTypeSingle,
		Text:          "1+1等于几？",
		Options:       []string{"1", "2", "3", "4"},
		CorrectAnswer: model.SingleAnswer("2"),
	}

	if !exam.Grade(q, model.SingleAnswer("2")) {
		t.Error("exact match should grade correct")
	}
	if exam.Grade(q, model.SingleAnswer("3")) {
		t.Error("wrong option should grade incorrect")
	}
	if exam.Grade(q, model.SingleAnswer(" 2")) {
		t.Error("comparison must not trim whitespace")
	}
	if exam.Grade(q, model.Answer{}) {
		t.Error("unanswered should grade incorrect")
	}
}

func TestGradeJudge(t *testing.T) {
	q := model.Question{
		ID:            "0",
		Type:          model.QuestionTypeJudge,
		Text:          "地球是圆的",
		CorrectAnswer: model.SingleAnswer(model.JudgeTrue),
	}

	if !exam.Grade(q, model.SingleAnswer(model.JudgeTrue)) {
		t.Error("matching judge value should grade correct")
	}
	if exam.Grade(q, model.SingleAnswer(model.JudgeFalse)) {
		t.Error("opposite judge value should grade incorrect")
	}
}

func TestGradeMultiple(t *testing.T) {
	q := model.Question{
		ID:            "0",
		Type:          model.QuestionTypeMultiple,
		Text:          "以下哪些是偶数？",
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: model.MultipleAnswer("A", "C"),
	}

	cases := []struct {
		name string
		ans  model.Answer
		want bool
	}{
		{"same order", model.MultipleAnswer("A", "C"), true},
		{"reversed order", model.MultipleAnswer("C", "A"), true},
		{"subset", model.MultipleAnswer("A"), false},
		{"superset", model.MultipleAnswer("A", "B", "C"), false},
		{"disjoint", model.MultipleAnswer("B", "D"), false},
		{"duplicates collapse", model.MultipleAnswer("A", "C", "C"), true},
		{"empty selection", model.MultipleAnswer(), false},
		{"unanswered", model.Answer{}, false},
		{"single answer to multiple question", model.SingleAnswer("A"), false},
	}

	for _, tc := range cases {
		if got := exam.Grade(q, tc.ans); got != tc.want {
			t.Errorf("%s: Grade = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestGradeAll(t *testing.T) {
	questions := []model.Question{
		{ID: "0", Type: model.QuestionTypeSingle, Text: "q0", CorrectAnswer: model.SingleAnswer("A")},
		{ID: "1", Type: model.QuestionTypeSingle, Text: "q1", CorrectAnswer: model.SingleAnswer("B")},
		{ID: "2", Type: model.QuestionTypeJudge, Text: "q2", CorrectAnswer: model.SingleAnswer(model.JudgeTrue)},
	}
	answers := map[string]model.Answer{
		"0": model.SingleAnswer("A"),
		"2": model.SingleAnswer(model.JudgeFalse),
		// "1" never answered
	}

	graded, correct := exam.GradeAll(questions, answers)
	if correct != 1 {
		t.Fatalf("correct = %d, want 1", correct)
	}
	if len(graded) != 3 {
		t.Fatalf("graded count = %d, want 3", len(graded))
	}
	if !graded[0].IsCorrect || graded[1].IsCorrect || graded[2].IsCorrect {
		t.Errorf("per-question verdicts wrong: %v %v %v",
			graded[0].IsCorrect, graded[1].IsCorrect, graded[2].IsCorrect)
	}
	if !graded[1].UserAnswer.IsNone() {
		t.Error("unanswered question should carry an empty answer")
	}
}

func TestScore(t *testing.T) {
	cases := []struct {
		correct, total, want int
	}{
		{0, 0, 0},
		{0, 10, 0},
		{10, 10, 100},
		{7, 9, 78},  // 77.78 rounds up
		{1, 3, 33},  // 33.33 rounds down
		{2, 3, 67},  // 66.67 rounds up
		{1, 2, 50},
	}
	for _, tc := range cases {
		if got := exam.Score(tc.correct, tc.total); got != tc.want {
			t.Errorf("Score(%d, %d) = %d, want %d", tc.correct, tc.total, got, tc.want)
		}
	}
}
