// Package xlsx converts question banks to and from the spreadsheet
// exchange format: one row per question with localized column headers,
// up to six option columns and a delimited correct-answer column.
package xlsx

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/tikulab/tiku-backend/internal/model"
	"github.com/xuri/excelize/v2"
)

// Localized column headers of the exchange format.
const (
	colType        = "题目类型"
	colText        = "题目"
	colAnswer      = "正确答案"
	colExplanation = "解析"
)

// Localized question type labels.
const (
	labelSingle   = "单选"
	labelMultiple = "多选"
	labelJudge    = "判断"
)

// Sheet names for exports and the import template.
const (
	ExportSheet   = "题库"
	TemplateSheet = "题库模板"
)

var (
	// ErrNoRows means the workbook has no data rows below the header.
	ErrNoRows = errors.New("workbook contains no question rows")
	// ErrMissingColumns means a required header column is absent.
	ErrMissingColumns = errors.New("workbook is missing required columns")
)

// optionCols are the six option headers in order: 选项A .. 选项F.
var optionCols = []string{"选项A", "选项B", "选项C", "选项D", "选项E", "选项F"}

// multiAnswerSep splits a multiple-choice correct-answer cell on ASCII
// or fullwidth commas and semicolons.
var multiAnswerSep = regexp.MustCompile(`[,，;；]`)

// Parse reads the first sheet of a workbook into a question list. A
// malformed row fails the whole import; no partial list is returned.
func Parse(r io.Reader) ([]model.Question, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoRows
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrNoRows
	}

	cols := indexHeader(rows[0])
	for _, required := range []string{colType, colText, colAnswer} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumns, required)
		}
	}

	var questions []model.Question
	for i, row := range rows[1:] {
		if rowEmpty(row) {
			continue
		}

		rowNum := i + 2 // 1-based, counting the header
		q, err := parseRow(row, cols, len(questions))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		return nil, ErrNoRows
	}
	return questions, nil
}

func parseRow(row []string, cols map[string]int, index int) (model.Question, error) {
	text := strings.TrimSpace(cell(row, cols, colText))
	if text == "" {
		return model.Question{}, errors.New("题目 is empty")
	}
	rawAnswer := strings.TrimSpace(cell(row, cols, colAnswer))
	if rawAnswer == "" {
		return model.Question{}, errors.New("正确答案 is empty")
	}

	// Labels other than 单选/多选 are treated as judge questions.
	var qtype model.QuestionType
	switch strings.TrimSpace(cell(row, cols, colType)) {
	case labelSingle:
		qtype = model.QuestionTypeSingle
	case labelMultiple:
		qtype = model.QuestionTypeMultiple
	default:
		qtype = model.QuestionTypeJudge
	}

	var options []string
	if qtype != model.QuestionTypeJudge {
		for _, name := range optionCols {
			if v := strings.TrimSpace(cell(row, cols, name)); v != "" {
				options = append(options, v)
			}
		}
	}

	var answer model.Answer
	if qtype == model.QuestionTypeMultiple {
		var values []string
		for _, part := range multiAnswerSep.Split(rawAnswer, -1) {
			if v := strings.TrimSpace(part); v != "" {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return model.Question{}, errors.New("正确答案 is empty")
		}
		answer = model.MultipleAnswer(values...)
	} else {
		answer = model.SingleAnswer(rawAnswer)
	}

	return model.Question{
		ID:            fmt.Sprintf("imported-%d", index),
		Type:          qtype,
		Text:          text,
		Options:       options,
		CorrectAnswer: answer,
		Explanation:   strings.TrimSpace(cell(row, cols, colExplanation)),
	}, nil
}

// Export writes a bank's questions into a workbook, the structural
// inverse of Parse.
func Export(bank *model.QuestionBank) (*excelize.File, error) {
	return buildWorkbook(ExportSheet, bank.Questions)
}

// Template builds the sample workbook with one row per question type.
func Template() (*excelize.File, error) {
	return buildWorkbook(TemplateSheet, []model.Question{
		{
			Type:          model.QuestionTypeSingle,
			Text:          "示例单选题：1+1等于几？",
			Options:       []string{"1", "2", "3", "4"},
			CorrectAnswer: model.SingleAnswer("2"),
			Explanation:   "1加1等于2",
		},
		{
			Type:          model.QuestionTypeMultiple,
			Text:          "示例多选题：以下哪些是偶数？",
			Options:       []string{"1", "2", "3", "4"},
			CorrectAnswer: model.MultipleAnswer("2", "4"),
			Explanation:   "2和4都是偶数",
		},
		{
			Type:          model.QuestionTypeJudge,
			Text:          "示例判断题：地球是圆的",
			CorrectAnswer: model.SingleAnswer(model.JudgeTrue),
			Explanation:   "地球是一个球体",
		},
	})
}

func buildWorkbook(sheet string, questions []model.Question) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	header := []interface{}{colType, colText}
	for _, name := range optionCols {
		header = append(header, name)
	}
	header = append(header, colAnswer, colExplanation)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, q := range questions {
		row := make([]interface{}, 0, len(header))
		row = append(row, typeLabel(q.Type), q.Text)
		for j := 0; j < len(optionCols); j++ {
			if j < len(q.Options) {
				row = append(row, q.Options[j])
			} else {
				row = append(row, "")
			}
		}
		row = append(row, answerCell(q.CorrectAnswer), q.Explanation)

		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			return nil, err
		}
	}

	// Column widths matching the established template layout.
	widths := []float64{10, 40, 20, 20, 20, 20, 20, 20, 20, 30}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func typeLabel(t model.QuestionType) string {
	switch t {
	case model.QuestionTypeSingle:
		return labelSingle
	case model.QuestionTypeMultiple:
		return labelMultiple
	default:
		return labelJudge
	}
}

func answerCell(a model.Answer) string {
	if a.Kind == model.AnswerMultiple {
		return strings.Join(a.Values, ",")
	}
	return a.Value
}

func indexHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	return cols
}

func cell(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func rowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
