package model

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionTypeSingle   QuestionType = "single"
	QuestionTypeMultiple QuestionType = "multiple"
	QuestionTypeJudge    QuestionType = "judge"
)

// Judge questions have no option list; the answer is one of these two labels.
const (
	JudgeTrue  = "正确"
	JudgeFalse = "错误"
)

// Question is a single question inside a bank, a history record or a
// wrong-answer book. The JSON field names follow the stored document
// format shared with the web client.
//
// ID is unique within the owning collection. Inside a running session the
// question list is a shuffled copy whose IDs are reassigned to positional
// indexes, so persisted records carry full question content rather than
// references back into the bank.
type Question struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	Text          string       `json:"question"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer Answer       `json:"correctAnswer"`
	Explanation   string       `json:"explanation,omitempty"`
}

// GradedQuestion is a Question augmented with the user's submitted answer
// and the correctness verdict. Immutable once written to history.
type GradedQuestion struct {
	Question
	UserAnswer Answer `json:"userAnswer"`
	IsCorrect  bool   `json:"isCorrect"`
}

// QuestionView is a question as exposed to an exam-taking client:
// no correct answer, no explanation.
type QuestionView struct {
	ID      string       `json:"id"`
	Type    QuestionType `json:"type"`
	Text    string       `json:"question"`
	Options []string     `json:"options,omitempty"`
}

// View strips grading material from a question.
func (q Question) View() QuestionView {
	return QuestionView{
		ID:      q.ID,
		Type:    q.Type,
		Text:    q.Text,
		Options: q.Options,
	}
}

// QuestionPayload is the request shape for a question inside bank create,
// update and import payloads.
type QuestionPayload struct {
	Type          string   `json:"type" binding:"required,oneof=single multiple judge"`
	Text          string   `json:"question" binding:"required,min=1,max=2000"`
	Options       []string `json:"options" binding:"omitempty,max=6,dive,min=1"`
	CorrectAnswer Answer   `json:"correctAnswer"`
	Explanation   string   `json:"explanation" binding:"omitempty,max=2000"`
}
