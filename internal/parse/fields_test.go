package parse

import (
	"testing"

	"github.com/pdiddy/exam-engine/pkg/types"
)

func TestExtractQuestion(t *testing.T) {
	tests := []struct {
		name        string
		seg         Segment
		wantStem    string
		wantOptions []types.Option
		wantAnswer  string
		wantType    types.QuestionType
	}{
		{
			name: "stem options and inline answer",
			seg:  Segment{Number: 1, Text: "混凝土应采用（　）。\nA.水泥\nB.砂浆\nC.石灰\nD.黏土\n答案：A\n"},
			// The full-width blank inside the brackets collapses to an
			// ordinary space.
			wantStem: "混凝土应采用（ ）。",
			wantOptions: []types.Option{
				{Letter: "A", Text: "水泥"},
				{Letter: "B", Text: "砂浆"},
				{Letter: "C", Text: "石灰"},
				{Letter: "D", Text: "黏土"},
			},
			wantAnswer: "A",
			wantType:   types.SingleChoice,
		},
		{
			name:     "type tag stripped from stem and forces multi",
			seg:      Segment{Number: 2, Text: "（多选题）下列正确的有（　）。\nA.甲\nB.乙\n"},
			wantStem: "下列正确的有（ ）。",
			wantOptions: []types.Option{
				{Letter: "A", Text: "甲"},
				{Letter: "B", Text: "乙"},
			},
			wantType: types.MultiChoice,
		},
		{
			name:     "multi letter inline answer forces multi",
			seg:      Segment{Number: 3, Text: "下列说法正确的有（　）。\nA.甲\nB.乙\nC.丙\n答案：ABC\n"},
			wantStem: "下列说法正确的有（ ）。",
			wantOptions: []types.Option{
				{Letter: "A", Text: "甲"},
				{Letter: "B", Text: "乙"},
				{Letter: "C", Text: "丙"},
			},
			wantAnswer: "ABC",
			wantType:   types.MultiChoice,
		},
		{
			name:       "background token forces case type",
			seg:        Segment{Number: 4, Text: "背景资料：某工程项目的施工情况说明。\n"},
			wantStem:   "背景资料：某工程项目的施工情况说明。",
			wantAnswer: "",
			wantType:   types.Case,
		},
		{
			name:     "option value truncated at glued answer label",
			seg:      Segment{Number: 5, Text: "题干内容。\nA.正确选项 答案：B\nB.另一项\n"},
			wantStem: "题干内容。",
			wantOptions: []types.Option{
				{Letter: "A", Text: "正确选项"},
				{Letter: "B", Text: "另一项"},
			},
			wantAnswer: "B",
			wantType:   types.SingleChoice,
		},
		{
			name:     "empty option value dropped",
			seg:      Segment{Number: 6, Text: "题干内容。\nA.\nB.有效选项\n"},
			wantStem: "题干内容。",
			wantOptions: []types.Option{
				{Letter: "B", Text: "有效选项"},
			},
			wantType: types.SingleChoice,
		},
		{
			name:     "duplicate letter updates first occurrence",
			seg:      Segment{Number: 7, Text: "题干内容。\nA.第一个值\nB.中间值\nA.第二个值\n"},
			wantStem: "题干内容。",
			wantOptions: []types.Option{
				{Letter: "A", Text: "第二个值"},
				{Letter: "B", Text: "中间值"},
			},
			wantType: types.SingleChoice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok := ExtractQuestion(tt.seg, types.TypeRanges{})
			if !ok {
				t.Fatal("question rejected")
			}
			if q.Number != tt.seg.Number {
				t.Errorf("number = %d, want %d", q.Number, tt.seg.Number)
			}
			if q.Stem != tt.wantStem {
				t.Errorf("stem = %q, want %q", q.Stem, tt.wantStem)
			}
			if q.Answer != tt.wantAnswer {
				t.Errorf("answer = %q, want %q", q.Answer, tt.wantAnswer)
			}
			if q.Type != tt.wantType {
				t.Errorf("type = %s, want %s", q.Type, tt.wantType)
			}
			if len(q.Options) != len(tt.wantOptions) {
				t.Fatalf("got %d options, want %d: %+v", len(q.Options), len(tt.wantOptions), q.Options)
			}
			for i, want := range tt.wantOptions {
				if q.Options[i] != want {
					t.Errorf("option %d = %+v, want %+v", i, q.Options[i], want)
				}
			}
		})
	}
}

func TestExtractQuestionRejectsEmptyStem(t *testing.T) {
	seg := Segment{Number: 9, Text: "\nA.选项一\nB.选项二\n"}
	if _, ok := ExtractQuestion(seg, types.TypeRanges{}); ok {
		t.Error("segment without a stem should be rejected")
	}
}

func TestExtractQuestionRangeBeatsHeuristics(t *testing.T) {
	ranges := types.TypeRanges{
		types.SingleChoice: {Start: 1, End: 20},
		types.MultiChoice:  {Start: 21, End: 30},
	}
	// Inline answer looks multi, but the declared range says single.
	seg := Segment{Number: 5, Text: "题干内容。\nA.甲\nB.乙\n答案：AB\n"}
	q, ok := ExtractQuestion(seg, ranges)
	if !ok {
		t.Fatal("question rejected")
	}
	if q.Type != types.SingleChoice {
		t.Errorf("type = %s, want %s", q.Type, types.SingleChoice)
	}
}

func TestInlineAnswerPriority(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"colon label", "题干\n答案：C\n", "C"},
		{"bracketed label", "题干\n【答案】BD\n", "BD"},
		{"correct answer label", "题干\n正确答案：D\n", "D"},
		{"trailing check mark", "题干\nACD √\n", "ACD"},
		{"colon label wins over bracketed", "题干\n答案：A\n【答案】B\n", "A"},
		{"none", "题干没有答案标记\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inlineAnswer(tt.text); got != tt.want {
				t.Errorf("inlineAnswer = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInlineAnalysisBounds(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"runs to segment end", "题干\n解析：本题考查基础知识。", "本题考查基础知识。"},
		{"stops at next question marker", "题干\n解析：只属于本题的说明。\n12.下一题题干", "只属于本题的说明。"},
		{"bracketed label", "题干\n【解析】说明文字。\n", "说明文字。"},
		{"absent", "题干没有解析\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inlineAnalysis(tt.text); got != tt.want {
				t.Errorf("inlineAnalysis = %q, want %q", got, tt.want)
			}
		})
	}
}
