// Package exam implements the exam session engine: the timed session
// state machine, grading, wrong-answer reconciliation, history recording
// and snapshot recovery. Storage collaborators are passed in as
// interfaces so the engine is testable against in-memory fakes.
package exam

import (
	"math"

	"github.com/tikulab/tiku-backend/internal/model"
)

// Grade reports whether ans is a correct response to q. It is a pure
// function with no side effects.
//
// Single and judge questions compare by exact string identity; no
// trimming or case folding. An unanswered question is never correct.
//
// Multiple-choice questions compare as sets: the selected set must have
// the same size as the correct set and contain every correct value.
// Both sides are built as sets, so duplicate selections collapse before
// the size check.
func Grade(q model.Question, ans model.Answer) bool {
	if q.Type == model.QuestionTypeMultiple {
		correct := q.CorrectAnswer.Set()
		selected := map[string]struct{}{}
		if ans.Kind == model.AnswerMultiple {
			selected = ans.Set()
		}
		if len(correct) != len(selected) {
			return false
		}
		for v := range correct {
			if _, ok := selected[v]; !ok {
				return false
			}
		}
		return true
	}

	// single / judge
	return ans.Kind == model.AnswerSingle &&
		q.CorrectAnswer.Kind == model.AnswerSingle &&
		ans.Value == q.CorrectAnswer.Value
}

// GradeAll grades every question against the recorded answers (missing
// answer means incorrect) and returns the graded copies plus the number
// of correct responses.
func GradeAll(questions []model.Question, answers map[string]model.Answer) ([]model.GradedQuestion, int) {
	graded := make([]model.GradedQuestion, len(questions))
	correct := 0
	for i, q := range questions {
		ans := answers[q.ID]
		ok := Grade(q, ans)
		if ok {
			correct++
		}
		graded[i] = model.GradedQuestion{
			Question:   q,
			UserAnswer: ans,
			IsCorrect:  ok,
		}
	}
	return graded, correct
}

// Score converts a correct count into a 0-100 score, rounded half away
// from zero. A zero total scores zero.
func Score(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
