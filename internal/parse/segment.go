// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"regexp"
	"strconv"

	"github.com/pdiddy/exam-engine/internal/cascade"
)

// Question markers come in two layouts. The punctuated form "12." / "12、"
// / "12．" survives most PDF extractions; some older papers lose the
// punctuation entirely, leaving the number glued to the first CJK
// character of the stem.
var (
	punctuatedMarkerRe = regexp.MustCompile(`(?m)^(\d+)[.、．]\s*`)
	bareMarkerRe       = regexp.MustCompile(`(?m)^(\d+)[一-龥]`)
)

// Segment is one numbered span of raw question text, marker stripped.
type Segment struct {
	Number int
	Text   string
}

// punctuatedStrategy recognizes "N." style markers at line starts. The
// span content begins after the marker and its trailing whitespace.
func punctuatedStrategy() cascade.Strategy {
	return cascade.Strategy{
		Name: "punctuated",
		Apply: func(text string) []cascade.Match {
			var out []cascade.Match
			for _, m := range punctuatedMarkerRe.FindAllStringSubmatchIndex(text, -1) {
				n, err := strconv.Atoi(text[m[2]:m[3]])
				if err != nil {
					continue
				}
				out = append(out, cascade.Match{Number: n, Start: m[0], End: m[1]})
			}
			return out
		},
	}
}

// bareStrategy recognizes unpunctuated markers: a line-start number
// followed directly by a CJK character. Only the digits are consumed, so
// the stem keeps its first character.
func bareStrategy() cascade.Strategy {
	return cascade.Strategy{
		Name: "unpunctuated",
		Apply: func(text string) []cascade.Match {
			var out []cascade.Match
			for _, m := range bareMarkerRe.FindAllStringSubmatchIndex(text, -1) {
				n, err := strconv.Atoi(text[m[2]:m[3]])
				if err != nil {
					continue
				}
				out = append(out, cascade.Match{Number: n, Start: m[0], End: m[3]})
			}
			return out
		},
	}
}

// SegmentQuestions splits the choice-question body into per-number
// segments. The punctuated recognizer is tried first; if it yields fewer
// than threshold markers the bare recognizer competes on total yield.
// Each segment runs from the end of its marker to the start of the next.
func SegmentQuestions(text string, threshold int) ([]Segment, cascade.Result) {
	res := cascade.Run(text, threshold, punctuatedStrategy(), bareStrategy())
	return sliceSegments(text, res.Matches), res
}

func sliceSegments(text string, matches []cascade.Match) []Segment {
	segs := make([]Segment, 0, len(matches))
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1].Start
		}
		segs = append(segs, Segment{Number: m.Number, Text: text[m.End:end]})
	}
	return segs
}
