// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"regexp"
	"strings"

	"github.com/pdiddy/exam-engine/pkg/types"
)

// Inline field markers inside a question segment.
var (
	// typeTagRe matches editorial type tags some collections embed in the
	// stem, e.g. "（单选题）". Stripped before stem and option extraction,
	// but still consulted for type classification.
	typeTagRe = regexp.MustCompile(`[（【](?:单选题|多选题|案例题)[）】]`)

	// optionMarkerRe matches an option label "A." / "A、" / "A．" at a line
	// start, optionally indented.
	optionMarkerRe = regexp.MustCompile(`(?m)^[ \t]*([A-E])[.、．]`)

	// optionNoiseRe marks where an option value stops being option text:
	// inline answer or analysis labels that PDF extraction glued on.
	optionNoiseRe = regexp.MustCompile(`答案[：:]|解析[：:]|【答案】|【解析】`)

	// inlineAnswerRes are the accepted inline answer spellings, most
	// specific first. The first pattern that matches anywhere in the
	// segment wins.
	inlineAnswerRes = []*regexp.Regexp{
		regexp.MustCompile(`答案[：:]\s*([A-E]+)`),
		regexp.MustCompile(`【答案】\s*([A-E]+)`),
		regexp.MustCompile(`正确答案[：:]\s*([A-E]+)`),
		regexp.MustCompile(`\n\s*([A-E]+)\s*(?:正确|√)`),
	}

	// inlineAnalysisRes are the accepted inline analysis labels. The
	// explanation runs from the label to the next question marker.
	inlineAnalysisRes = []*regexp.Regexp{
		regexp.MustCompile(`解析[：:]`),
		regexp.MustCompile(`【解析】`),
		regexp.MustCompile(`答案解析[：:]`),
	}

	// nextQuestionRe bounds an inline analysis capture.
	nextQuestionRe = regexp.MustCompile(`\n\d+[.、．]`)

	multiAnswerRe = regexp.MustCompile(`答案[：:]\s*([A-E]{2,})`)
)

// ExtractQuestion turns one segment into a question. The second return is
// false when the segment has no usable stem and should be dropped.
func ExtractQuestion(seg Segment, ranges types.TypeRanges) (types.Question, bool) {
	q := types.Question{
		Number: seg.Number,
		Type:   classifySegment(seg.Text, seg.Number, ranges),
	}

	stripped := typeTagRe.ReplaceAllString(seg.Text, "")
	q.Stem, q.Options = splitStemOptions(stripped)
	if q.Stem == "" {
		return types.Question{}, false
	}

	q.Answer = inlineAnswer(seg.Text)
	q.Analysis = inlineAnalysis(seg.Text)
	return q, true
}

// splitStemOptions slices the segment at its option markers. The stem is
// everything before the first marker; each option value runs to the next
// marker and is truncated at any glued answer/analysis label. Empty
// values are dropped. A repeated letter updates the earlier entry in
// place rather than appending a duplicate.
func splitStemOptions(text string) (string, []types.Option) {
	marks := optionMarkerRe.FindAllStringSubmatchIndex(text, -1)
	if len(marks) == 0 {
		return collapseSpace(text), nil
	}

	stem := collapseSpace(text[:marks[0][0]])

	var opts []types.Option
	index := make(map[string]int)
	for i, m := range marks {
		end := len(text)
		if i+1 < len(marks) {
			end = marks[i+1][0]
		}
		value := text[m[1]:end]
		if loc := optionNoiseRe.FindStringIndex(value); loc != nil {
			value = value[:loc[0]]
		}
		value = collapseSpace(value)
		if value == "" {
			continue
		}
		letter := text[m[2]:m[3]]
		if at, ok := index[letter]; ok {
			opts[at].Text = value
			continue
		}
		index[letter] = len(opts)
		opts = append(opts, types.Option{Letter: letter, Text: value})
	}
	return stem, opts
}

// inlineAnswer returns the answer letters embedded in the segment, or ""
// when none of the accepted spellings appears.
func inlineAnswer(text string) string {
	for _, re := range inlineAnswerRes {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// inlineAnalysis returns the explanation embedded in the segment, bounded
// by the next question marker.
func inlineAnalysis(text string) string {
	for _, re := range inlineAnalysisRes {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		rest := text[loc[1]:]
		if cut := nextQuestionRe.FindStringIndex(rest); cut != nil {
			rest = rest[:cut[0]]
		}
		return strings.TrimSpace(rest)
	}
	return ""
}

// classifySegment assigns the question type. A declared section range is
// authoritative; otherwise embedded type tags and the shape of the inline
// answer decide, defaulting to single choice.
func classifySegment(text string, number int, ranges types.TypeRanges) types.QuestionType {
	if t, ok := ranges.Classify(number); ok {
		return t
	}
	if strings.Contains(text, "（多选题）") || strings.Contains(text, "【多选题】") ||
		multiAnswerRe.MatchString(text) {
		return types.MultiChoice
	}
	if strings.Contains(text, "（案例题）") || strings.Contains(text, "【案例题】") ||
		strings.Contains(text, "背景资料") {
		return types.Case
	}
	return types.SingleChoice
}

// collapseSpace folds runs of whitespace to single spaces and trims.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
