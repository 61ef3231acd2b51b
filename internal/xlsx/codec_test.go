package xlsx_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/tikulab/tiku-backend/internal/model"
	"github.com/tikulab/tiku-backend/internal/xlsx"
	"github.com/xuri/excelize/v2"
)

func workbookBytes(t *testing.T, f *excelize.File) *bytes.Reader {
	t.Helper()
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestExportParseRoundTrip(t *testing.T) {
	bank := &model.QuestionBank{
		ID:   uuid.New(),
		Name: "导出题库",
		Questions: []model.Question{
			{
				ID:            "0",
				Type:          model.QuestionTypeSingle,
				Text:          "1+1等于几？",
				Options:       []string{"1", "2", "3", "4"},
				CorrectAnswer: model.SingleAnswer("2"),
				Explanation:   "1加1等于2",
			},
			{
				ID:            "1",
				Type:          model.QuestionTypeMultiple,
				Text:          "以下哪些是偶数？",
				Options:       []string{"1", "2", "3", "4"},
				CorrectAnswer: model.MultipleAnswer("2", "4"),
			},
			{
				ID:            "2",
				Type:          model.QuestionTypeJudge,
				Text:          "地球是圆的",
				CorrectAnswer: model.SingleAnswer(model.JudgeTrue),
			},
		},
	}

	f, err := xlsx.Export(bank)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	defer f.Close()

	parsed, err := xlsx.Parse(workbookBytes(t, f))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(parsed) != 3 {
		t.Fatalf("parsed %d questions, want 3", len(parsed))
	}

	if parsed[0].Type != model.QuestionTypeSingle || parsed[0].Text != "1+1等于几？" {
		t.Errorf("question 0 = %+v", parsed[0])
	}
	if parsed[0].CorrectAnswer.Value != "2" {
		t.Errorf("question 0 answer = %+v", parsed[0].CorrectAnswer)
	}
	if parsed[0].Explanation != "1加1等于2" {
		t.Errorf("question 0 explanation = %q", parsed[0].Explanation)
	}

	if parsed[1].Type != model.QuestionTypeMultiple {
		t.Errorf("question 1 type = %s", parsed[1].Type)
	}
	if got := parsed[1].CorrectAnswer.Values; len(got) != 2 || got[0] != "2" || got[1] != "4" {
		t.Errorf("question 1 answer values = %v", got)
	}
	if len(parsed[1].Options) != 4 {
		t.Errorf("question 1 options = %v", parsed[1].Options)
	}

	if parsed[2].Type != model.QuestionTypeJudge {
		t.Errorf("question 2 type = %s", parsed[2].Type)
	}
	if parsed[2].Options != nil {
		t.Errorf("judge question should have no options, got %v", parsed[2].Options)
	}
	if parsed[2].CorrectAnswer.Value != model.JudgeTrue {
		t.Errorf("question 2 answer = %+v", parsed[2].CorrectAnswer)
	}
}

func TestTemplateParses(t *testing.T) {
	f, err := xlsx.Template()
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	defer f.Close()

	parsed, err := xlsx.Parse(workbookBytes(t, f))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(parsed) != 3 {
		t.Fatalf("template has %d rows, want 3", len(parsed))
	}
	types := []model.QuestionType{
		model.QuestionTypeSingle,
		model.QuestionTypeMultiple,
		model.QuestionTypeJudge,
	}
	for i, want := range types {
		if parsed[i].Type != want {
			t.Errorf("row %d type = %s, want %s", i, parsed[i].Type, want)
		}
	}
}

func TestParseFullwidthSeparators(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	header := []interface{}{"题目类型", "题目", "选项A", "选项B", "选项C", "正确答案", "解析"}
	row := []interface{}{"多选", "多选题", "甲", "乙", "丙", "甲，乙；丙", ""}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Sheet1", "A2", &row); err != nil {
		t.Fatal(err)
	}

	parsed, err := xlsx.Parse(workbookBytes(t, f))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := parsed[0].CorrectAnswer.Values
	if len(got) != 3 || got[0] != "甲" || got[1] != "乙" || got[2] != "丙" {
		t.Errorf("answer values = %v, want 甲 乙 丙", got)
	}
}

func TestParseUnknownTypeFallsBackToJudge(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	header := []interface{}{"题目类型", "题目", "正确答案"}
	row := []interface{}{"填空", "某道题", "正确"}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Sheet1", "A2", &row); err != nil {
		t.Fatal(err)
	}

	parsed, err := xlsx.Parse(workbookBytes(t, f))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed[0].Type != model.QuestionTypeJudge {
		t.Errorf("type = %s, want judge", parsed[0].Type)
	}
}

func TestParseRejectsMalformedRows(t *testing.T) {
	cases := []struct {
		name string
		rows [][]interface{}
	}{
		{
			"empty question text",
			[][]interface{}{
				{"题目类型", "题目", "正确答案"},
				{"单选", "", "A"},
			},
		},
		{
			"empty answer",
			[][]interface{}{
				{"题目类型", "题目", "正确答案"},
				{"单选", "某道题", ""},
			},
		},
		{
			"one bad row fails the batch",
			[][]interface{}{
				{"题目类型", "题目", "正确答案"},
				{"单选", "好题", "A"},
				{"单选", "", "B"},
			},
		},
	}

	for _, tc := range cases {
		f := excelize.NewFile()
		for i, row := range tc.rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatal(err)
			}
			r := row
			if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
				t.Fatal(err)
			}
		}
		if _, err := xlsx.Parse(workbookBytes(t, f)); err == nil {
			t.Errorf("%s: Parse should fail", tc.name)
		}
		f.Close()
	}
}

func TestParseMissingColumns(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	header := []interface{}{"题目", "正确答案"} // 题目类型 missing
	row := []interface{}{"某道题", "A"}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Sheet1", "A2", &row); err != nil {
		t.Fatal(err)
	}

	if _, err := xlsx.Parse(workbookBytes(t, f)); !errors.Is(err, xlsx.ErrMissingColumns) {
		t.Errorf("err = %v, want ErrMissingColumns", err)
	}
}

func TestParseEmptyWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	header := []interface{}{"题目类型", "题目", "正确答案"}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatal(err)
	}

	if _, err := xlsx.Parse(workbookBytes(t, f)); !errors.Is(err, xlsx.ErrNoRows) {
		t.Errorf("err = %v, want ErrNoRows", err)
	}
}
