// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/exam-engine/internal/cascade"
)

// CaseSection is the isolated case-study part of a paper, with its byte
// offsets in the original document. Text is already trimmed of trailing
// answer material.
type CaseSection struct {
	Start int
	End   int
	Text  string
}

// CaseSpan is one segmented case study, marker stripped.
type CaseSpan struct {
	CaseNumber int
	Numeral    string
	Text       string
}

var (
	// caseSectionRe finds the case-section header. Some papers phrase it
	// "三、实务操作和案例分析题", others just "三、案例分析题".
	caseSectionRe = regexp.MustCompile(`(?s)三、\s*(?:实务操作和)?案例.*?题`)

	// caseAnswerTrimRe marks where case answer keys begin inside the
	// section; everything after is dropped before segmentation.
	caseAnswerTrimRe = regexp.MustCompile(`参考答案|答案.*?解析|【答案】`)
)

// Case markers, one recognizer per layout tier.
var (
	// caseLabelRe matches an explicit "案例一" / "案例（一）" label. The label
	// must be followed by a blank line or 背景 within the next 20
	// characters, which suppresses prose mentions like "案例一中".
	caseLabelRe     = regexp.MustCompile(`案例[（(]?([一二三四五六七八九十])[）)]?`)
	caseLabelNextRe = regexp.MustCompile(`^(?:\s*\n|背景)`)

	// numeralHeadingRe matches a parenthesized numeral on its own line
	// directly above a 背景资料 or 问题 label. The label itself starts the
	// span so later field extraction can anchor on it.
	numeralHeadingRe = regexp.MustCompile(`\n[（(]([一二三四五六七八九十])[）)]\s*\n(背景资料|问题)`)

	// bracketLabelRe matches the 【案例一】 spelling.
	bracketLabelRe = regexp.MustCompile(`【案例([一二三四五六七八九十])】`)

	// bareNumeralRe matches a parenthesized numeral line with nothing
	// anchoring it. Weakest tier; a following 、 or ， means the numeral
	// opens an ordinary list and the match is discarded.
	bareNumeralRe = regexp.MustCompile(`\n[（(]([一二三四五六七八九十])[）)]\s*\n`)

	// scoreListRe reads score declarations such as "（一）、（二）题各20分".
	// Group one holds the numerals, group two the per-case score.
	scoreListRe = regexp.MustCompile(`[（(]([一二三四五六七八九十、]+)[）)].*?各?\s*(\d+)\s*分`)
)

// caseMinRunes rejects spans too short to hold a background plus
// sub-questions; such spans are marker noise.
const caseMinRunes = 50

// FindCaseSection isolates the case-study section. The section runs from
// the 三、 header to the first 参考答案 after it, then is trimmed at the
// earliest embedded answer marker. The second return is false when the
// paper has no case section.
func FindCaseSection(text string) (CaseSection, bool) {
	loc := caseSectionRe.FindStringIndex(text)
	if loc == nil {
		return CaseSection{}, false
	}
	end := len(text)
	if i := strings.Index(text[loc[1]:], "参考答案"); i >= 0 {
		end = loc[1] + i
	}
	section := text[loc[0]:end]
	if cut := caseAnswerTrimRe.FindStringIndex(section); cut != nil {
		section = section[:cut[0]]
	}
	return CaseSection{Start: loc[0], End: loc[0] + len(section), Text: section}, true
}

// SegmentCases splits the section into per-case spans. The four marker
// recognizers are tried as a cascade with threshold one: the first tier
// that matches anything wins outright, so mixed layouts never interleave.
// Spans shorter than caseMinRunes are dropped as noise.
func SegmentCases(section string) ([]CaseSpan, cascade.Result) {
	res := cascade.Run(section, 1,
		labeledCaseStrategy(),
		numeralHeadingStrategy(),
		bracketLabelStrategy(),
		bareNumeralStrategy(),
	)

	spans := make([]CaseSpan, 0, len(res.Matches))
	for i, m := range res.Matches {
		end := len(section)
		if i+1 < len(res.Matches) {
			end = res.Matches[i+1].Start
		}
		body := section[m.End:end]
		if utf8.RuneCountInString(strings.TrimSpace(body)) < caseMinRunes {
			continue
		}
		number := m.Number
		if number == 0 {
			number = i + 1
		}
		spans = append(spans, CaseSpan{CaseNumber: number, Numeral: m.Value, Text: body})
	}
	return spans, res
}

func labeledCaseStrategy() cascade.Strategy {
	return cascade.Strategy{
		Name: "labeled",
		Apply: func(section string) []cascade.Match {
			var out []cascade.Match
			for _, m := range caseLabelRe.FindAllStringSubmatchIndex(section, -1) {
				window := firstNRunes(section[m[1]:], 20)
				if !caseLabelNextRe.MatchString(window) {
					continue
				}
				out = append(out, numeralMatch(section, m[0], m[1], m[2], m[3]))
			}
			return out
		},
	}
}

func numeralHeadingStrategy() cascade.Strategy {
	return cascade.Strategy{
		Name: "numeral-heading",
		Apply: func(section string) []cascade.Match {
			var out []cascade.Match
			for _, m := range numeralHeadingRe.FindAllStringSubmatchIndex(section, -1) {
				// span starts at the 背景资料/问题 label, not after it
				out = append(out, numeralMatch(section, m[0], m[4], m[2], m[3]))
			}
			return out
		},
	}
}

func bracketLabelStrategy() cascade.Strategy {
	return cascade.Strategy{
		Name: "bracketed",
		Apply: func(section string) []cascade.Match {
			var out []cascade.Match
			for _, m := range bracketLabelRe.FindAllStringSubmatchIndex(section, -1) {
				out = append(out, numeralMatch(section, m[0], m[1], m[2], m[3]))
			}
			return out
		},
	}
}

func bareNumeralStrategy() cascade.Strategy {
	return cascade.Strategy{
		Name: "bare-numeral",
		Apply: func(section string) []cascade.Match {
			var out []cascade.Match
			for _, m := range bareNumeralRe.FindAllStringSubmatchIndex(section, -1) {
				if r, _ := utf8.DecodeRuneInString(section[m[1]:]); r == '、' || r == '，' {
					continue
				}
				out = append(out, numeralMatch(section, m[0], m[1], m[2], m[3]))
			}
			return out
		},
	}
}

// numeralMatch builds a cascade match whose number comes from the
// captured numeral. Number stays zero for an unmapped numeral and the
// segmenter falls back to ordinal position.
func numeralMatch(section string, start, end, numStart, numEnd int) cascade.Match {
	numeral := section[numStart:numEnd]
	number := 0
	if r, _ := utf8.DecodeRuneInString(numeral); r != utf8.RuneError {
		if n, ok := chineseToArabic(r); ok {
			number = n
		}
	}
	return cascade.Match{Number: number, Start: start, End: end, Value: numeral}
}

// ExtractScores reads the per-case score declarations from the section.
// Every numeral in a declaration's list gets that declaration's score.
func ExtractScores(section string) map[int]int {
	scores := make(map[int]int)
	for _, m := range scoreListRe.FindAllStringSubmatch(section, -1) {
		pts, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		for _, n := range chineseNumeralsIn(m[1]) {
			scores[n] = pts
		}
	}
	return scores
}

// firstNRunes returns the first n runes of s.
func firstNRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}
