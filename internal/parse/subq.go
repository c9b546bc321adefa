// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/exam-engine/internal/cascade"
	"github.com/pdiddy/exam-engine/pkg/types"
)

var (
	// backgroundLabelRe anchors the first background tier. The narrative
	// follows "背景资料：" and runs to the 问题 label.
	backgroundLabelRe = regexp.MustCompile(`背景资料[：:]\s*`)

	// questionLabelRe finds the 问题 label; extraction tolerates a space
	// between the two characters, a common artifact of column-aligned
	// PDFs.
	questionLabelRe = regexp.MustCompile(`问\s*题`)

	// questionLabelFullRe additionally consumes the label's trailing
	// colon and whitespace when slicing the sub-question body.
	questionLabelFullRe = regexp.MustCompile(`问\s*题[：:]?\s*`)

	// numberedLineRe spots the first sub-question line for the last
	// background tier.
	numberedLineRe = regexp.MustCompile(`^\d+[.、．]`)
)

// backgroundMinRunes is the validity bar for an extracted background; a
// shorter narrative is a mislocated slice, not a case background.
const backgroundMinRunes = 50

// subQuestionMinRunes drops sub-question fragments left by marker noise.
const subQuestionMinRunes = 5

// ExtractBackground pulls the background narrative out of a case span.
// Three tiers are tried in order: text after an explicit 背景资料 label,
// text before the first 问题 label, then leading lines up to the first
// numbered line. Every tier must clear backgroundMinRunes; the second
// return is false when none does.
func ExtractBackground(span string) (string, bool) {
	if loc := backgroundLabelRe.FindStringIndex(span); loc != nil {
		body := span[loc[1]:]
		if cut := questionLabelRe.FindStringIndex(body); cut != nil {
			body = body[:cut[0]]
		}
		if bg, ok := validBackground(body); ok {
			return bg, true
		}
	}

	if loc := questionLabelRe.FindStringIndex(span); loc != nil {
		if bg, ok := validBackground(span[:loc[0]]); ok {
			return bg, true
		}
	}

	var lead []string
	for _, line := range strings.Split(span, "\n") {
		if numberedLineRe.MatchString(strings.TrimSpace(line)) {
			break
		}
		lead = append(lead, line)
	}
	return validBackground(strings.Join(lead, "\n"))
}

func validBackground(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < backgroundMinRunes {
		return "", false
	}
	return s, true
}

// ExtractSubQuestions splits the span's 问题 body into numbered
// sub-questions, reusing the question-marker recognizers with threshold
// one. Sub-question text is whitespace-collapsed; fragments at or below
// subQuestionMinRunes are dropped. Answers and analyses are never
// populated here; case answer keys are out of extraction scope.
func ExtractSubQuestions(span string) ([]types.SubQuestion, cascade.Result) {
	body := span
	if loc := questionLabelFullRe.FindStringIndex(span); loc != nil {
		body = span[loc[1]:]
	}

	segs, res := SegmentQuestions(body, 1)
	subs := make([]types.SubQuestion, 0, len(segs))
	for _, seg := range segs {
		text := collapseSpace(seg.Text)
		if utf8.RuneCountInString(text) <= subQuestionMinRunes {
			continue
		}
		subs = append(subs, types.SubQuestion{SubNumber: seg.Number, Question: text})
	}
	return subs, res
}
