// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Entry is one resolved appendix record for a question number.
type Entry struct {
	Answer   string
	Analysis string
}

// Resolution describes how the appendix was located and read. It feeds
// the answers stage report.
type Resolution struct {
	// Marker is the appendix heading that located the region, "" when the
	// positional fallback was used.
	Marker string
	// Strategy is "spaced" or "labeled", "" when nothing matched.
	Strategy string
	// Matched is the number of extracted entries.
	Matched int
}

// appendixMarkerRes locate the answer appendix, most specific heading
// first. The first pattern that matches anywhere wins and the region runs
// from its match to the end of the document.
var appendixMarkerRes = []*regexp.Regexp{
	regexp.MustCompile(`参考答案及解析`),
	regexp.MustCompile(`参考答案`),
	regexp.MustCompile(`答案及解析`),
	regexp.MustCompile(`答案解析`),
	regexp.MustCompile(`一、单项选择题.*?答案`),
}

// Spaced answer grids repeat the section headers inside the appendix and
// list bare "number letters" pairs. Multi-choice grids restart numbering
// at 1, so their numbers are offset by the highest single-choice number.
var (
	spacedSingleHeaderRe = regexp.MustCompile(`一、\s*单项选择题`)
	spacedMultiHeaderRe  = regexp.MustCompile(`二、\s*多项选择题`)
	spacedSinglePairRe   = regexp.MustCompile(`(\d+)\s+([A-E])\b`)
	spacedMultiPairRe    = regexp.MustCompile(`(\d+)\s+([A-E]{2,})\b`)
)

// labeledAnswerRes are the accepted "number ... answer" spellings, in
// priority order. A number claimed by an earlier pattern is never
// overwritten by a later one.
var labeledAnswerRes = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)[.、．]\s*【答案】\s*([A-E,，]+)`),
	regexp.MustCompile(`(\d+)[.、．]\s*答案[：:]\s*([A-E,，]+)`),
	regexp.MustCompile(`(\d+)\s*参考答案[：:]\s*([A-E,，\s]+)`),
	regexp.MustCompile(`【(\d+)】\s*答案[：:]\s*([A-E,，]+)`),
	regexp.MustCompile(`(\d+)[.、．]\s*\[答案\]\s*([A-E,，]+)`),
	regexp.MustCompile(`(?m)^(\d+)[ \t]+([A-E]+)[ \t]*$`),
	regexp.MustCompile(`(\d+)[.、．]\s*([A-E]+)\s*(?:\n|【解析】)`),
}

// Numbered analysis blocks in the appendix: "12.【解析】...". Each block
// runs to the next numbered marker.
var (
	appendixAnalysisRe = regexp.MustCompile(`(\d+)[.、．]\s*【解析】`)
	numberMarkerRe     = regexp.MustCompile(`\d+[.、．]`)
)

// analysisRuneLimit caps stored explanations; appendix blocks sometimes
// run across page boundaries and swallow unrelated text.
const analysisRuneLimit = 500

// ResolveAnswers extracts number→answer entries from a paper whose
// answers live in a trailing appendix. The spaced grid layout is
// authoritative when present; otherwise labeled patterns fill the map and
// numbered analysis blocks attach to known numbers. Never fails: an
// unmatched document yields an empty map.
func ResolveAnswers(text string) (map[int]Entry, Resolution) {
	region, marker := answerRegion(text)
	res := Resolution{Marker: marker}

	if entries := spacedEntries(region); len(entries) > 0 {
		res.Strategy = "spaced"
		res.Matched = len(entries)
		return entries, res
	}

	entries := labeledEntries(region)
	attachAnalyses(region, entries)
	if len(entries) > 0 {
		res.Strategy = "labeled"
	}
	res.Matched = len(entries)
	return entries, res
}

// answerRegion returns the appendix slice and the heading that located
// it. Without a heading the last three fifths of the document are
// scanned, since answers always trail the questions.
func answerRegion(text string) (string, string) {
	for _, re := range appendixMarkerRes {
		if loc := re.FindStringIndex(text); loc != nil {
			return text[loc[0]:], re.String()
		}
	}
	cut := len(text) * 2 / 5
	for cut < len(text) && !utf8.RuneStart(text[cut]) {
		cut++
	}
	return text[cut:], ""
}

// spacedEntries reads the grid layout. Single and multi pairs are scanned
// only inside their own repeated section headers so a bare "12 A" in
// running prose cannot register.
func spacedEntries(region string) map[int]Entry {
	entries := make(map[int]Entry)

	maxSingle := 0
	if body, ok := spacedBody(region, spacedSingleHeaderRe, "二、", "三、"); ok {
		for _, m := range spacedSinglePairRe.FindAllStringSubmatch(body, -1) {
			n, _ := strconv.Atoi(m[1])
			entries[n] = Entry{Answer: m[2]}
			if n > maxSingle {
				maxSingle = n
			}
		}
	}
	if body, ok := spacedBody(region, spacedMultiHeaderRe, "三、"); ok {
		for _, m := range spacedMultiPairRe.FindAllStringSubmatch(body, -1) {
			n, _ := strconv.Atoi(m[1])
			entries[maxSingle+n] = Entry{Answer: m[2]}
		}
	}
	return entries
}

// spacedBody slices the grid body for one section: from the line after
// the header to the earliest of the stop literals.
func spacedBody(region string, header *regexp.Regexp, stops ...string) (string, bool) {
	loc := header.FindStringIndex(region)
	if loc == nil {
		return "", false
	}
	rest := region[loc[1]:]
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		return "", false
	}
	body := rest[nl+1:]
	end := len(body)
	for _, stop := range stops {
		if i := strings.Index(body, stop); i >= 0 && i < end {
			end = i
		}
	}
	return body[:end], true
}

// labeledEntries runs every labeled pattern over the region. Patterns are
// ordered by reliability; the first one to claim a number keeps it.
func labeledEntries(region string) map[int]Entry {
	entries := make(map[int]Entry)
	for _, re := range labeledAnswerRes {
		for _, m := range re.FindAllStringSubmatch(region, -1) {
			n, _ := strconv.Atoi(m[1])
			if _, claimed := entries[n]; claimed {
				continue
			}
			letters := cleanLetters(m[2])
			if letters == "" {
				continue
			}
			entries[n] = Entry{Answer: letters}
		}
	}
	return entries
}

// attachAnalyses extracts numbered 【解析】 blocks and attaches each to
// its entry. Blocks for unknown numbers are dropped.
func attachAnalyses(region string, entries map[int]Entry) {
	for _, m := range appendixAnalysisRe.FindAllStringSubmatchIndex(region, -1) {
		n, _ := strconv.Atoi(region[m[2]:m[3]])
		e, ok := entries[n]
		if !ok {
			continue
		}
		body := region[m[1]:]
		if cut := numberMarkerRe.FindStringIndex(body); cut != nil {
			body = body[:cut[0]]
		}
		e.Analysis = truncateRunes(collapseSpace(body), analysisRuneLimit)
		entries[n] = e
	}
}

// cleanLetters keeps only the answer letters A–E, dropping list commas
// and whitespace.
func cleanLetters(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 'A' && r <= 'E' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
